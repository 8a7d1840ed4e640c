package extract

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesWhitespaceAndRecordsParagraphs(t *testing.T) {
	raw := "  Hello\tworld \n\n\n Second  para\r\nline2 "

	text, spans := Normalize(raw)
	assert.Equal(t, "Hello world\n\nSecond para line2", text)
	require.Len(t, spans, 2)

	// Spans index the normalized text, not the raw input.
	assert.Equal(t, "Hello world", text[spans[0].Start:spans[0].End])
	assert.Equal(t, "Second para line2", text[spans[1].Start:spans[1].End])
}

func TestNormalizeStripsControlCharacters(t *testing.T) {
	text, spans := Normalize("abc\x00def\x07 ghi")
	assert.Equal(t, "abcdef ghi", text)
	require.Len(t, spans, 1)
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\n", "\t \r\n"} {
		text, spans := Normalize(raw)
		assert.Empty(t, text, "input %q", raw)
		assert.Empty(t, spans, "input %q", raw)
	}
}

func TestSniffMimeType(t *testing.T) {
	cases := []struct {
		data []byte
		want string
	}{
		{[]byte("%PDF-1.7\n..."), "application/pdf"},
		{[]byte("PK\x03\x04rest-of-zip"), "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{[]byte("just some words"), "text/plain"},
		{nil, "text/plain"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SniffMimeType(tc.data))
	}
}

func TestDetectMimeTypePrefersExtension(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMimeType("report.pdf", []byte("not a pdf at all")))
	// Unknown extension falls back to content sniffing.
	assert.Equal(t, "application/pdf", DetectMimeType("report.blob", []byte("%PDF-1.4")))
	assert.Equal(t, "text/plain", DetectMimeType("", []byte("hello")))
}

func TestRegistryExtractsPlainText(t *testing.T) {
	reg := NewRegistry()
	data := []byte("First  paragraph here. \n\nSecond one.")

	text, spans, err := reg.Extract(context.Background(), data, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph here.\n\nSecond one.", text)
	require.Len(t, spans, 2)
	assert.Equal(t, "Second one.", text[spans[1].Start:spans[1].End])
}

func TestRegistryStripsMimeParameters(t *testing.T) {
	reg := NewRegistry()

	text, _, err := reg.Extract(context.Background(), []byte("hello there"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestRegistrySniffsWhenMimeMissing(t *testing.T) {
	reg := NewRegistry()

	text, _, err := reg.Extract(context.Background(), []byte("sniffed as text"), "")
	require.NoError(t, err)
	assert.Equal(t, "sniffed as text", text)
}

func TestRegistryRejectsUnsupportedFormat(t *testing.T) {
	reg := NewRegistry()

	_, _, err := reg.Extract(context.Background(), []byte{0x1f, 0x8b, 0x08}, "application/gzip")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistryCustomExtractorTakesPrecedence(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubExtractor{mime: "text/plain", text: "from the stub"})

	text, _, err := reg.Extract(context.Background(), []byte("original"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "from the stub", text)
}

func TestRegistryRetriesWithFallbackWhenPrimaryFails(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubExtractor{mime: "text/html", err: errors.New("parser crashed")})

	data := []byte("<html><body><p>hello fallback</p></body></html>")
	text, _, err := reg.Extract(context.Background(), data, "text/html")
	require.NoError(t, err)
	assert.Contains(t, text, "hello fallback")
}

func TestRegistryReportsExtractionFailureWhenFallbackAlsoFails(t *testing.T) {
	reg := NewRegistry()

	// Garbage bytes make both the primary PDF extractor and the fallback
	// conversion fail.
	_, _, err := reg.Extract(context.Background(), []byte("definitely not a pdf"), "application/pdf")
	require.ErrorIs(t, err, ErrExtraction)
}

type stubExtractor struct {
	mime string
	text string
	err  error
}

func (s stubExtractor) CanHandle(mimeType string) bool { return mimeType == s.mime }

func (s stubExtractor) Extract(context.Context, *bytes.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestPlainTextExtractorMimeCoverage(t *testing.T) {
	ex := &PlainTextExtractor{}
	assert.True(t, ex.CanHandle("text/plain"))
	assert.True(t, ex.CanHandle("text/markdown"))
	assert.True(t, ex.CanHandle("text/csv"))
	assert.False(t, ex.CanHandle("application/pdf"))
}

func TestDocxExtractorMimeCoverage(t *testing.T) {
	ex := &DocxExtractor{}
	assert.True(t, ex.CanHandle("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.True(t, ex.CanHandle("application/msword"))
	assert.False(t, ex.CanHandle("text/plain"))
}
