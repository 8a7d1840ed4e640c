// Package chunking splits normalized document text into retrieval-sized
// chunks. Four strategies are supported; all of them are deterministic, so
// chunk IDs derived from (document, strategy, level, position) are stable
// across reprocessing runs.
package chunking

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/markdave123-py/Sectora/internal/models"
)

// Strategy selects how text is split into chunks.
type Strategy string

const (
	StrategyFixedSize     Strategy = "fixed_size"
	StrategySemantic      Strategy = "semantic"
	StrategySlidingWindow Strategy = "sliding_window"
	StrategyHierarchical  Strategy = "hierarchical"
)

// ErrInvalidConfig is returned for unknown strategies and out-of-range
// size parameters. It is always raised before any text is touched.
var ErrInvalidConfig = errors.New("invalid chunking config")

// ParseStrategy validates a strategy name from an invocation payload.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFixedSize, StrategySemantic, StrategySlidingWindow, StrategyHierarchical:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
}

// Params tunes a chunking run. Zero fields take the strategy's default.
//
// ChunkSize / Overlap:        fixed_size and sliding_window, in tokens.
// MinChunkSize / MaxChunkSize: semantic and hierarchical bounds, in tokens.
// SectionTokens / DocTokens:  hierarchical section and document level caps.
type Params struct {
	ChunkSize     int `json:"chunk_size,omitempty"`
	Overlap       int `json:"overlap,omitempty"`
	MinChunkSize  int `json:"min_chunk_size,omitempty"`
	MaxChunkSize  int `json:"max_chunk_size,omitempty"`
	SectionTokens int `json:"section_tokens,omitempty"`
	DocTokens     int `json:"doc_tokens,omitempty"`
}

// DefaultParams returns the per-strategy defaults.
func DefaultParams(s Strategy) Params {
	switch s {
	case StrategyFixedSize:
		return Params{ChunkSize: 512}
	case StrategySlidingWindow:
		return Params{ChunkSize: 512, Overlap: 128}
	case StrategySemantic:
		return Params{MinChunkSize: 100, MaxChunkSize: 1000}
	case StrategyHierarchical:
		return Params{MinChunkSize: 100, MaxChunkSize: 500, SectionTokens: 2000, DocTokens: 8000}
	}
	return Params{}
}

func (p Params) withDefaults(s Strategy) Params {
	def := DefaultParams(s)
	if p.ChunkSize == 0 {
		p.ChunkSize = def.ChunkSize
	}
	if p.MinChunkSize == 0 {
		p.MinChunkSize = def.MinChunkSize
	}
	if p.MaxChunkSize == 0 {
		p.MaxChunkSize = def.MaxChunkSize
	}
	if p.SectionTokens == 0 {
		p.SectionTokens = def.SectionTokens
	}
	if p.DocTokens == 0 {
		p.DocTokens = def.DocTokens
	}
	if s == StrategySlidingWindow && p.Overlap == 0 {
		p.Overlap = def.Overlap
	}
	return p
}

func (p Params) validate(s Strategy) error {
	switch s {
	case StrategyFixedSize:
		if p.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, p.ChunkSize)
		}
	case StrategySlidingWindow:
		if p.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, p.ChunkSize)
		}
		if p.Overlap < 0 {
			return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, p.Overlap)
		}
		if p.Overlap >= p.ChunkSize {
			return fmt.Errorf("%w: overlap %d must be strictly less than chunk_size %d", ErrInvalidConfig, p.Overlap, p.ChunkSize)
		}
	case StrategySemantic:
		if p.MinChunkSize <= 0 || p.MaxChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size bounds must be positive", ErrInvalidConfig)
		}
		if p.MinChunkSize > p.MaxChunkSize {
			return fmt.Errorf("%w: min_chunk_size %d exceeds max_chunk_size %d", ErrInvalidConfig, p.MinChunkSize, p.MaxChunkSize)
		}
	case StrategyHierarchical:
		if p.MinChunkSize <= 0 || p.MaxChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size bounds must be positive", ErrInvalidConfig)
		}
		if p.MinChunkSize > p.MaxChunkSize {
			return fmt.Errorf("%w: min_chunk_size %d exceeds max_chunk_size %d", ErrInvalidConfig, p.MinChunkSize, p.MaxChunkSize)
		}
		if p.SectionTokens < p.MaxChunkSize {
			return fmt.Errorf("%w: section_tokens %d below max_chunk_size %d", ErrInvalidConfig, p.SectionTokens, p.MaxChunkSize)
		}
		if p.DocTokens < p.SectionTokens {
			return fmt.Errorf("%w: doc_tokens %d below section_tokens %d", ErrInvalidConfig, p.DocTokens, p.SectionTokens)
		}
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
	}
	return nil
}

// ValidateParams applies strategy defaults and checks the result. It never
// touches document text, so callers can reject a bad configuration before
// spending any extraction work.
func ValidateParams(s Strategy, p Params) error {
	return p.withDefaults(s).validate(s)
}

// ChunkID derives the stable chunk identifier for a position within a
// document's chunking run. Same inputs, same ID, on every run.
func ChunkID(documentID string, strategy Strategy, level, position int) string {
	name := fmt.Sprintf("sectora:%s:%s:%d:%d", documentID, strategy, level, position)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// span is the internal unit passed between splitting stages: a byte range
// of the source text plus its token count.
type span struct {
	start  int
	end    int
	tokens int
}

// Engine runs the chunking strategies over normalized text.
type Engine struct {
	tok Tokenizer
}

// NewEngine builds an engine with the given tokenizer; nil selects the
// whitespace tokenizer.
func NewEngine(tok Tokenizer) *Engine {
	if tok == nil {
		tok = WhitespaceTokenizer{}
	}
	return &Engine{tok: tok}
}

// Chunk splits text for one document. hints are the paragraph spans the
// extractor reported; strategies that don't need them ignore them. Empty
// text yields an empty sequence, not an error. Text shorter than the
// effective minimum chunk size becomes a single whole-text chunk for every
// strategy.
func (e *Engine) Chunk(documentID, sector, text string, hints []models.Span, strategy Strategy, params Params) ([]models.Chunk, error) {
	p := params.withDefaults(strategy)
	if err := p.validate(strategy); err != nil {
		return nil, err
	}

	tokens := e.tok.Tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) < p.MinChunkSize {
		whole := span{start: 0, end: len(text), tokens: len(tokens)}
		return e.assemble(documentID, sector, text, strategy, 0, []span{whole}, ""), nil
	}

	switch strategy {
	case StrategyFixedSize:
		return e.assemble(documentID, sector, text, strategy, 0, fixedSpans(text, tokens, p.ChunkSize), ""), nil
	case StrategySlidingWindow:
		return e.assemble(documentID, sector, text, strategy, 0, slidingSpans(text, tokens, p.ChunkSize, p.Overlap), ""), nil
	case StrategySemantic:
		spans := semanticSpans(text, hints, p.MinChunkSize, p.MaxChunkSize, e.tok)
		return e.assemble(documentID, sector, text, strategy, 0, spans, ""), nil
	case StrategyHierarchical:
		return e.hierarchicalChunks(documentID, sector, text, hints, p), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, strategy)
}

// assemble materializes the spans of a flat strategy into chunk records
// with contiguous positions from zero.
func (e *Engine) assemble(documentID, sector, text string, strategy Strategy, level int, spans []span, parentID string) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, models.Chunk{
			ID:            ChunkID(documentID, strategy, level, i),
			DocumentID:    documentID,
			Sector:        sector,
			Text:          text[s.start:s.end],
			Strategy:      string(strategy),
			Level:         level,
			Position:      i,
			CharStart:     s.start,
			CharEnd:       s.end,
			ParentChunkID: parentID,
			TokenCount:    s.tokens,
		})
	}
	return chunks
}
