package chunking

import (
	"strings"

	"github.com/markdave123-py/Sectora/internal/models"
)

// semanticSpans groups text into spans of at most max tokens, splitting at
// the largest unit that fits: whole paragraphs first, sentences when a
// paragraph is oversize, raw token runs when even a sentence exceeds max.
// A group that cannot reach min before the next unit would overflow max
// borrows tokens from that unit instead of closing short, so every span
// lands within [min, max] except possibly the final one. An undersized
// trailing span folds backward into its predecessor.
func semanticSpans(text string, hints []models.Span, min, max int, tok Tokenizer) []span {
	units := semanticUnits(text, hints, max, tok)
	if len(units) == 0 {
		return nil
	}

	var groups []span
	cur := units[0]
	for i := 1; i < len(units); i++ {
		u := units[i]
		if cur.tokens+u.tokens <= max {
			cur.end = u.end
			cur.tokens += u.tokens
			continue
		}
		if cur.tokens >= min {
			groups = append(groups, cur)
			cur = u
			continue
		}
		// cur is still below min and u does not fit whole: take exactly
		// the tokens that fill cur to max and keep the remainder as the
		// next unit.
		head, tail := splitUnit(text, u, max-cur.tokens, tok)
		cur.end = head.end
		cur.tokens += head.tokens
		groups = append(groups, cur)
		cur = tail
	}
	groups = append(groups, cur)

	return mergeTrailing(groups, min)
}

// splitUnit cuts the first want tokens off a unit, returning the head and
// the remainder. The caller guarantees 0 < want < u.tokens.
func splitUnit(text string, u span, want int, tok Tokenizer) (head, tail span) {
	toks := tok.Tokenize(text[u.start:u.end])
	head = span{start: u.start, end: u.start + toks[want-1].End, tokens: want}
	tail = span{start: u.start + toks[want].Start, end: u.end, tokens: len(toks) - want}
	return head, tail
}

// mergeTrailing folds an undersized final group into its predecessor. A
// single group below min stays as the whole text's only span.
func mergeTrailing(groups []span, min int) []span {
	last := len(groups) - 1
	if last < 1 || groups[last].tokens >= min {
		return groups
	}
	groups[last-1].end = groups[last].end
	groups[last-1].tokens += groups[last].tokens
	return groups[:last]
}

// semanticUnits breaks text into the atomic units the accumulator works
// with. Every returned unit fits within max tokens.
func semanticUnits(text string, hints []models.Span, max int, tok Tokenizer) []span {
	paras := hints
	if len(paras) == 0 {
		paras = paragraphSpans(text)
	}

	var units []span
	for _, p := range paras {
		n := CountTokens(tok, text[p.Start:p.End])
		if n == 0 {
			continue
		}
		if n <= max {
			units = append(units, span{start: p.Start, end: p.End, tokens: n})
			continue
		}
		for _, s := range sentenceSpans(text, p.Start, p.End) {
			sn := CountTokens(tok, text[s.start:s.end])
			if sn == 0 {
				continue
			}
			if sn <= max {
				units = append(units, span{start: s.start, end: s.end, tokens: sn})
				continue
			}
			// A single run-on sentence longer than max: hard-split on
			// token boundaries.
			toks := tok.Tokenize(text[s.start:s.end])
			for i := 0; i < len(toks); i += max {
				j := i + max
				if j > len(toks) {
					j = len(toks)
				}
				units = append(units, span{
					start:  s.start + toks[i].Start,
					end:    s.start + toks[j-1].End,
					tokens: j - i,
				})
			}
		}
	}
	return units
}

// paragraphSpans derives paragraph boundaries by splitting on blank lines,
// for callers that didn't supply extractor hints.
func paragraphSpans(text string) []models.Span {
	var spans []models.Span
	offset := 0
	for _, part := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			start := offset + strings.Index(part, trimmed)
			spans = append(spans, models.Span{Start: start, End: start + len(trimmed)})
		}
		offset += len(part) + 2
	}
	return spans
}

// sentenceSpans splits the [start, end) region at sentence terminators
// followed by whitespace. Regions without terminators come back whole.
func sentenceSpans(text string, start, end int) []span {
	var out []span
	segStart := start
	for i := start; i < end; i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' && c != ';' {
			continue
		}
		if i+1 < end && text[i+1] != ' ' && text[i+1] != '\n' {
			continue
		}
		out = append(out, span{start: segStart, end: i + 1})
		// Skip the whitespace run to the next sentence start.
		segStart = i + 1
		for segStart < end && (text[segStart] == ' ' || text[segStart] == '\n') {
			segStart++
		}
		i = segStart - 1
	}
	if segStart < end {
		out = append(out, span{start: segStart, end: end})
	}
	return out
}
