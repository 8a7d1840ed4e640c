package chunking

import "unicode"

// Token marks one token's half-open [Start, End) byte range in the source
// text. Boundaries always fall on rune boundaries.
type Token struct {
	Start int
	End   int
}

// Tokenizer splits text into position-tracked tokens. The engine is
// tokenizer-agnostic; chunk sizes are counted in whatever unit the
// tokenizer produces.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// WhitespaceTokenizer treats each whitespace-delimited word as one token.
// It is the default tokenizer for all strategies.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Tokenize(text string) []Token {
	var toks []Token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, Token{Start: start, End: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, Token{Start: start, End: len(text)})
	}
	return toks
}

// CountTokens is a convenience for sizing a substring with the same
// tokenizer the engine chunks with.
func CountTokens(tok Tokenizer, text string) int {
	return len(tok.Tokenize(text))
}
