package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"code.sajari.com/docconv"
)

// PDFExtractor extracts text from PDF blobs via docconv/pdftotext.
type PDFExtractor struct{}

func (e *PDFExtractor) CanHandle(mimeType string) bool {
	return mimeType == "application/pdf"
}

func (e *PDFExtractor) Extract(ctx context.Context, r *bytes.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, _, err := docconv.ConvertPDF(r)
	if err != nil {
		return "", fmt.Errorf("convert pdf: %w", err)
	}
	return text, nil
}

// DocxExtractor extracts text from DOCX blobs.
type DocxExtractor struct{}

func (e *DocxExtractor) CanHandle(mimeType string) bool {
	switch mimeType {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return true
	}
	return false
}

func (e *DocxExtractor) Extract(ctx context.Context, r *bytes.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, _, err := docconv.ConvertDocx(r)
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}
	return text, nil
}

// PlainTextExtractor passes text blobs through unchanged.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) CanHandle(mimeType string) bool {
	switch mimeType {
	case "text/plain", "text/markdown", "text/csv":
		return true
	}
	return false
}

func (e *PlainTextExtractor) Extract(ctx context.Context, r *bytes.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text blob: %w", err)
	}
	return string(data), nil
}

// FallbackExtractor hands recognized types to docconv's generic converter,
// which picks a backend from the MIME type.
type FallbackExtractor struct{}

func (e *FallbackExtractor) CanHandle(mimeType string) bool {
	switch mimeType {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text",
		"application/rtf",
		"text/html",
		"application/xml", "text/xml":
		return true
	}
	return false
}

// ExtractAs runs the generic converter with an explicit MIME hint.
func (e *FallbackExtractor) ExtractAs(ctx context.Context, r *bytes.Reader, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := docconv.Convert(r, mimeType, false)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", mimeType, err)
	}
	return res.Body, nil
}
