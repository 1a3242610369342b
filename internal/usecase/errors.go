package usecase

// Messages returned to callers. Causes are only ever logged.
const (
	InvalidImageMessage    = "Invalid Base64 image data"
	ProcessingErrorMessage = "Error processing image"
)

// InputError means the submitted image could not be decoded.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return InvalidImageMessage }

func (e *InputError) Unwrap() error { return e.Err }

// ProcessingError means the analysis service failed. No partial result survives it.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string { return ProcessingErrorMessage }

func (e *ProcessingError) Unwrap() error { return e.Err }
