// Package imagedata turns the base64 image strings posted by clients into
// decoded bitmaps.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Formats accepted from canvases and uploads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps width*height of an accepted image. Headers are checked
// against it before any pixel buffer is allocated.
const MaxPixels = 178956970

var (
	// ErrEmpty is returned when nothing is left to decode once the prefix is gone.
	ErrEmpty = errors.New("image payload is empty")
	// ErrTooLarge is returned when the image header declares more than MaxPixels.
	ErrTooLarge = errors.New("image dimensions exceed limit")
)

// Image is a decoded submission. Raw keeps the decoded bytes so transports
// can forward the original encoding instead of re-encoding the bitmap.
type Image struct {
	Bitmap image.Image
	Format string
	Raw    []byte
}

// Width of the decoded bitmap in pixels.
func (img *Image) Width() int { return img.Bitmap.Bounds().Dx() }

// Height of the decoded bitmap in pixels.
func (img *Image) Height() int { return img.Bitmap.Bounds().Dy() }

// StripDataURI drops everything up to and including the first comma.
// Strings without a comma are returned unchanged.
func StripDataURI(payload string) string {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		return payload[i+1:]
	}
	return payload
}

// Decode strips an optional data-URI prefix, base64-decodes the remainder
// and decodes the bytes as an image.
func Decode(payload string) (*Image, error) {
	encoded := strings.TrimSpace(StripDataURI(payload))
	if encoded == "" {
		return nil, ErrEmpty
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	bitmap, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return &Image{Bitmap: bitmap, Format: format, Raw: raw}, nil
}
