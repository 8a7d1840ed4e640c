package pipeline

import (
	"errors"
	"fmt"

	"github.com/markdave123-py/Sectora/internal/core/chunking"
	"github.com/markdave123-py/Sectora/internal/core/embedding"
	"github.com/markdave123-py/Sectora/internal/core/extract"
	"github.com/markdave123-py/Sectora/internal/core/index"
)

// Stage names recorded on failed documents. Validation covers the checks
// that run before any real work is spent on a document.
const (
	StageValidation = "validation"
	StageExtracting = "extracting"
	StageChunking   = "chunking"
	StageEmbedding  = "embedding"
	StageIndexing   = "indexing"
)

// Error kinds give callers a stable, machine-readable failure category
// independent of the wrapped error text.
const (
	KindUnknownSector     = "unknown_sector"
	KindInvalidConfig     = "invalid_config"
	KindInvalidTaskType   = "invalid_task_type"
	KindUnsupportedFormat = "unsupported_format"
	KindExtractionFailure = "extraction_failure"
	KindEmbeddingFailure  = "embedding_failure"
	KindDimensionMismatch = "dimension_mismatch"
	KindStorageFailure    = "storage_failure"
	KindInternal          = "internal"
)

// StageError records where in the pipeline a document failed and what
// category of failure it was. The wrapped error keeps the full cause chain.
type StageError struct {
	Stage string
	Kind  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) *StageError {
	return &StageError{Stage: stage, Kind: kindOf(err), Err: err}
}

// kindOf classifies an error by the component sentinel it wraps.
func kindOf(err error) string {
	switch {
	case errors.Is(err, index.ErrUnknownSector):
		return KindUnknownSector
	case errors.Is(err, chunking.ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, embedding.ErrInvalidTaskType):
		return KindInvalidTaskType
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, extract.ErrExtraction):
		return KindExtractionFailure
	case errors.Is(err, embedding.ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, embedding.ErrEmbeddingFailure):
		return KindEmbeddingFailure
	default:
		return KindInternal
	}
}
