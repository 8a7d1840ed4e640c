package chunking

// slidingSpans emits size-token windows advancing by size-overlap tokens.
// The caller has already validated overlap < size. The final window is
// truncated to the remaining tokens, never padded.
func slidingSpans(text string, tokens []Token, size, overlap int) []span {
	step := size - overlap
	var out []span
	for w := 0; w < len(tokens); w += step {
		end := w + size
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, span{
			start:  tokens[w].Start,
			end:    tokens[end-1].End,
			tokens: end - w,
		})
		if end == len(tokens) {
			break
		}
	}
	return out
}
