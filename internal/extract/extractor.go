package extract

import (
	"context"
	"fmt"

	"github.com/ppiankov/recourse/internal/llm"
	"github.com/ppiankov/recourse/internal/model"
	"github.com/ppiankov/recourse/internal/worker"
)

// Extractor is the field extraction engine: given a case's documents and an
// ordered target-field list it produces exactly one fill per target field,
// in target-field order. Implementations are pure with respect to caller
// state and perform no I/O beyond the optional model round trip.
type Extractor interface {
	// Name returns the backend name
	Name() string

	// Extract produces one FieldFill per target field. An empty document
	// set must yield all-missing fills, not an error.
	Extract(ctx context.Context, docs []model.Document, targetFields []string) ([]model.FieldFill, error)
}

// New creates the extraction backend selected by cfg. The generative
// backend requires a configured provider; the pattern backend never fails.
func New(cfg model.ExtractionConfig, provider llm.Provider, limiter *worker.Limiter) (Extractor, error) {
	switch cfg.Backend {
	case "", model.BackendPattern:
		return NewPatternExtractor(), nil

	case model.BackendGenerative:
		if provider == nil {
			return nil, fmt.Errorf("generative backend requires a configured llm provider")
		}
		return NewGenerativeExtractor(provider, cfg, limiter), nil

	default:
		return nil, fmt.Errorf("unknown extraction backend: %s (supported: pattern, generative)", cfg.Backend)
	}
}
