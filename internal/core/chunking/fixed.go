package chunking

// fixedSpans cuts the token stream into consecutive size-token segments
// with no overlap. Span boundaries sit at token starts, so concatenating
// the resulting chunk texts in position order reconstructs the input
// exactly. The last segment may be shorter.
func fixedSpans(text string, tokens []Token, size int) []span {
	var out []span
	for i := 0; i < len(tokens); i += size {
		j := i + size
		start := tokens[i].Start
		if i == 0 {
			start = 0
		}
		end := len(text)
		if j < len(tokens) {
			end = tokens[j].Start
		} else {
			j = len(tokens)
		}
		out = append(out, span{start: start, end: end, tokens: j - i})
	}
	return out
}
