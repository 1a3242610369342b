package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/calc-vision/internal/analyzer"
	"github.com/example/calc-vision/internal/imagedata"
	"github.com/example/calc-vision/internal/logging"
)

const (
	successMessage = "Image processed"
	successStatus  = "success"
)

// Submission is one client request: an encoded image and the variables
// assigned so far.
type Submission struct {
	Image string
	Vars  analyzer.Vars
}

// Result is the success payload returned to the client.
type Result struct {
	Message string          `json:"message"`
	Data    []analyzer.Item `json:"data"`
	Status  string          `json:"status"`
}

// CalculationUseCase decodes submissions, delegates them to the analysis
// service and collects what it returns.
type CalculationUseCase struct {
	analyzer       analyzer.Client
	cache          ResultCache
	cacheTTL       time.Duration
	analyzeTimeout time.Duration
	logger         *zap.Logger
}

// Option customises a CalculationUseCase.
type Option func(*CalculationUseCase)

// WithResultCache enables caching of complete results. A nil cache disables it.
func WithResultCache(cache ResultCache, ttl time.Duration) Option {
	return func(uc *CalculationUseCase) {
		uc.cache = cache
		uc.cacheTTL = ttl
	}
}

// WithAnalyzeTimeout bounds every analysis call. Zero means no bound beyond
// the request context.
func WithAnalyzeTimeout(timeout time.Duration) Option {
	return func(uc *CalculationUseCase) {
		uc.analyzeTimeout = timeout
	}
}

// NewCalculationUseCase constructs a new use case instance.
func NewCalculationUseCase(client analyzer.Client, logger *zap.Logger, opts ...Option) *CalculationUseCase {
	uc := &CalculationUseCase{
		analyzer: client,
		cacheTTL: 10 * time.Minute,
		logger:   logger.Named("calculation_usecase"),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Process runs decode, analyze and collect for one submission. Every failure
// comes back as *InputError or *ProcessingError.
func (uc *CalculationUseCase) Process(ctx context.Context, sub Submission) (*Result, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.process_image", requestID)

	img, err := imagedata.Decode(sub.Image)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.decode_image", requestID, err)
		opLogger.Warn("error decoding image", zap.Error(wrapped))
		return nil, &InputError{Err: wrapped}
	}

	var key string
	if uc.cache != nil {
		key = resultCacheKey(img.Raw, sub.Vars)
		if items, ok := uc.cachedResult(ctx, key, opLogger); ok {
			opLogger.Info("analysis collected", zap.Bool("cached", true), zap.Int("count", len(items)), zap.Any("data", items))
			return newResult(items), nil
		}
	}

	items, err := uc.analyze(ctx, img, sub.Vars)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.analyze_image", requestID, err)
		opLogger.Error("error analyzing image", zap.Error(wrapped))
		return nil, &ProcessingError{Err: wrapped}
	}
	opLogger.Info("analysis collected", zap.Int("count", len(items)), zap.Any("data", items))

	if uc.cache != nil {
		uc.storeResult(ctx, key, items, opLogger)
	}
	return newResult(items), nil
}

func (uc *CalculationUseCase) analyze(ctx context.Context, img *imagedata.Image, vars analyzer.Vars) (items []analyzer.Item, err error) {
	if uc.analyzer == nil {
		return nil, errors.New("no analyzer configured")
	}
	if uc.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.analyzeTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("analyzer panic: %v", r)
		}
	}()

	seq, err := uc.analyzer.Analyze(ctx, img, vars)
	if err != nil {
		return nil, err
	}
	return analyzer.Collect(seq)
}

func (uc *CalculationUseCase) cachedResult(ctx context.Context, key string, opLogger *zap.Logger) ([]analyzer.Item, bool) {
	items, ok, err := uc.cache.Load(ctx, key)
	if err != nil {
		opLogger.Warn("failed to read result cache", zap.Error(err))
		return nil, false
	}
	return items, ok
}

func (uc *CalculationUseCase) storeResult(ctx context.Context, key string, items []analyzer.Item, opLogger *zap.Logger) {
	if err := uc.cache.Store(ctx, key, items, uc.cacheTTL); err != nil {
		opLogger.Warn("failed to cache result", zap.Error(err))
	}
}

func newResult(items []analyzer.Item) *Result {
	if items == nil {
		items = make([]analyzer.Item, 0)
	}
	return &Result{Message: successMessage, Data: items, Status: successStatus}
}

// resultCacheKey hashes the decoded image bytes together with the variables.
// json.Marshal sorts map keys, so equal inputs give equal keys.
func resultCacheKey(raw []byte, vars analyzer.Vars) string {
	h := sha1.New()
	h.Write(raw)
	h.Write([]byte{0})
	if len(vars) > 0 {
		if encoded, err := json.Marshal(vars); err == nil {
			h.Write(encoded)
		}
	}
	return fmt.Sprintf("analysis:%s", hex.EncodeToString(h.Sum(nil)))
}
