// Package embedding turns chunk texts into fixed-dimension vectors through
// a pluggable provider, batching requests and retrying transient failures.
// Embeddings are all-or-nothing per document: any batch that exhausts its
// retries fails the whole set so no document is ever partially indexed.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markdave123-py/Sectora/internal/models"
)

var (
	// ErrDimensionMismatch means the provider returned a vector whose
	// length differs from the configured embedding dimension. This is a
	// configuration bug and is never coerced by truncation or padding.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingFailure means a provider batch call kept failing after
	// bounded retries.
	ErrEmbeddingFailure = errors.New("embedding generation failed")
)

// Provider is the raw embedding backend (Gemini in production, fakes in
// tests).
type Provider interface {
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error)

	// ModelName identifies the backing model for provenance records.
	ModelName() string
}

// RetryConfig bounds the exponential backoff applied to transient batch
// failures.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// Config tunes the generator. Zero values take defaults: dimension 768,
// batch size 100 (the provider batch cap).
type Config struct {
	Dimension int
	BatchSize int
	Retry     RetryConfig
}

// Generator batches chunk texts through the provider and validates the
// results.
type Generator struct {
	provider  Provider
	dim       int
	batchSize int
	retry     RetryConfig
}

func NewGenerator(p Provider, cfg Config) *Generator {
	if cfg.Dimension == 0 {
		cfg.Dimension = 768
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Generator{provider: p, dim: cfg.Dimension, batchSize: cfg.BatchSize, retry: cfg.Retry}
}

// Embed generates one vector per chunk, preserving chunk order end to end
// and checking every vector against the configured dimension. The task
// type is validated before any provider call.
func (g *Generator) Embed(ctx context.Context, chunks []models.Chunk, task TaskType) ([]models.Embedding, error) {
	if _, err := ParseTaskType(string(task)); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	out := make([]models.Embedding, 0, len(chunks))
	for i := 0; i < len(chunks); i += g.batchSize {
		j := i + g.batchSize
		if j > len(chunks) {
			j = len(chunks)
		}
		batch := chunks[i:j]

		texts := make([]string, len(batch))
		for k := range batch {
			texts[k] = batch[k].Text
		}

		vecs, err := g.embedBatch(ctx, texts, task)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailure, len(vecs), len(batch))
		}

		for k, vec := range vecs {
			if len(vec) != g.dim {
				return nil, fmt.Errorf("%w: got %d, configured %d", ErrDimensionMismatch, len(vec), g.dim)
			}
			out = append(out, models.Embedding{
				ChunkID:   batch[k].ID,
				Vector:    vec,
				TaskType:  string(task),
				ModelName: g.provider.ModelName(),
			})
		}
	}
	return out, nil
}

// embedBatch runs one provider call with bounded exponential backoff.
func (g *Generator) embedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	delay := g.retry.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= g.retry.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vecs, err := g.provider.EmbedBatch(ctx, texts, task)
		if err == nil {
			return vecs, nil
		}
		lastErr = err

		if attempt >= g.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * g.retry.Multiplier)
		if delay > g.retry.MaxDelay {
			delay = g.retry.MaxDelay
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %v", ErrEmbeddingFailure, g.retry.MaxRetries+1, lastErr)
}
