package extract

import (
	"strings"
	"unicode"

	"github.com/markdave123-py/Sectora/internal/models"
)

// Normalize cleans raw extracted text and records paragraph boundaries.
// Whitespace runs inside a paragraph collapse to single spaces, control
// characters are stripped, and blank-line runs become single paragraph
// breaks. The returned spans index the paragraphs of the normalized text in
// order; hierarchical chunking depends on them.
func Normalize(raw string) (string, []models.Span) {
	paragraphs := splitParagraphs(raw)
	if len(paragraphs) == 0 {
		return "", nil
	}

	var b strings.Builder
	spans := make([]models.Span, 0, len(paragraphs))
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		start := b.Len()
		b.WriteString(p)
		spans = append(spans, models.Span{Start: start, End: b.Len()})
	}
	return b.String(), spans
}

// splitParagraphs breaks raw text on blank lines and collapses each
// paragraph's internal whitespace. Empty paragraphs are dropped.
func splitParagraphs(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var out []string
	var words []string
	flush := func() {
		if len(words) > 0 {
			out = append(out, strings.Join(words, " "))
			words = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = stripControl(line)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			// Blank line: paragraph boundary.
			flush()
			continue
		}
		words = append(words, fields...)
	}
	flush()
	return out
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
