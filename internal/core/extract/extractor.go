// Package extract converts raw document blobs into normalized text plus
// paragraph structure hints. Format support is a registry of capabilities:
// each Extractor declares the MIME types it handles, so new formats are
// additive registrations rather than branches in a type switch.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/markdave123-py/Sectora/internal/logging"
	"github.com/markdave123-py/Sectora/internal/models"
)

var (
	// ErrUnsupportedFormat means no registered extractor can handle the
	// blob's MIME type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction means a matching extractor failed to parse the blob.
	// The registry retries with the generic fallback before surfacing it.
	ErrExtraction = errors.New("text extraction failed")
)

// Extractor converts one document format into plain text.
type Extractor interface {
	// CanHandle reports whether this extractor understands the MIME type.
	CanHandle(mimeType string) bool

	// Extract reads the whole blob and returns its raw text.
	Extract(ctx context.Context, r *bytes.Reader) (string, error)
}

// Registry holds the registered format extractors plus a generic fallback
// tried when a format-specific extractor fails or nothing matches a
// recognized type.
type Registry struct {
	extractors []Extractor
	fallback   *FallbackExtractor
}

// NewRegistry builds the default registry: PDF, DOCX and plain text, with
// the docconv generic converter as fallback.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			&PDFExtractor{},
			&DocxExtractor{},
			&PlainTextExtractor{},
		},
		fallback: &FallbackExtractor{},
	}
}

// Register appends a custom extractor. Registered extractors are consulted
// in order before the default set.
func (reg *Registry) Register(ex Extractor) {
	reg.extractors = append([]Extractor{ex}, reg.extractors...)
}

// Extract resolves an extractor for the blob's MIME type, runs it, and
// normalizes the result. The returned spans are the paragraph boundaries of
// the normalized text, in order.
func (reg *Registry) Extract(ctx context.Context, data []byte, mimeType string) (string, []models.Span, error) {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = SniffMimeType(data)
	}
	mimeType = baseMimeType(mimeType)

	var raw string
	if ex := reg.lookup(mimeType); ex != nil {
		var err error
		raw, err = ex.Extract(ctx, bytes.NewReader(data))
		if err != nil {
			// Recoverable: a recognized format that failed to parse gets
			// one shot with the generic converter before the document
			// fails.
			logging.Warnf("extract: %s extraction failed (%v), retrying with fallback", mimeType, err)
			raw, err = reg.fallback.ExtractAs(ctx, bytes.NewReader(data), mimeType)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %s: %v", ErrExtraction, mimeType, err)
			}
		}
	} else if reg.fallback.CanHandle(mimeType) {
		var err error
		raw, err = reg.fallback.ExtractAs(ctx, bytes.NewReader(data), mimeType)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrExtraction, mimeType, err)
		}
	} else {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	text, paragraphs := Normalize(raw)
	return text, paragraphs, nil
}

func (reg *Registry) lookup(mimeType string) Extractor {
	for _, ex := range reg.extractors {
		if ex.CanHandle(mimeType) {
			return ex
		}
	}
	return nil
}

// DetectMimeType resolves a MIME type from the filename extension, falling
// back to content sniffing when the extension is missing or unknown.
func DetectMimeType(fileName string, data []byte) string {
	if ext := filepath.Ext(fileName); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return baseMimeType(mt)
		}
	}
	return SniffMimeType(data)
}

// SniffMimeType guesses a document type from its leading bytes. PDF and ZIP
// container (DOCX) signatures are recognized; everything else that decodes
// as text is treated as plain text.
func SniffMimeType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf"
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}

// baseMimeType strips any parameters ("text/plain; charset=utf-8").
func baseMimeType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
