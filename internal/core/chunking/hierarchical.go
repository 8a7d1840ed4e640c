package chunking

import (
	"github.com/markdave123-py/Sectora/internal/models"
)

// Hierarchy levels. Level 0 holds the coarse whole-document chunks used
// for pre-filtering; sections and paragraphs refine them.
const (
	LevelDocument  = 0
	LevelSection   = 1
	LevelParagraph = 2
)

// hierarchicalChunks applies semantic-style splitting at three nested
// granularities: document, section, paragraph. Each lower-level chunk
// records the ID of the chunk that contains it. The result is a flat table
// ordered by level then position; positions are contiguous within a level
// across all parents.
func (e *Engine) hierarchicalChunks(documentID, sector, text string, hints []models.Span, p Params) []models.Chunk {
	var chunks []models.Chunk

	record := func(level, position int, s span, parentID string) models.Chunk {
		c := models.Chunk{
			ID:            ChunkID(documentID, StrategyHierarchical, level, position),
			DocumentID:    documentID,
			Sector:        sector,
			Text:          text[s.start:s.end],
			Strategy:      string(StrategyHierarchical),
			Level:         level,
			Position:      position,
			CharStart:     s.start,
			CharEnd:       s.end,
			ParentChunkID: parentID,
			TokenCount:    s.tokens,
		}
		chunks = append(chunks, c)
		return c
	}

	docSpans := semanticSpans(text, hints, p.MinChunkSize, p.DocTokens, e.tok)

	type parented struct {
		s      span
		parent string
	}

	var sections []parented
	for di, ds := range docSpans {
		doc := record(LevelDocument, di, ds, "")
		for _, ss := range subSpans(text, hints, ds, p.MinChunkSize, p.SectionTokens, e.tok) {
			sections = append(sections, parented{s: ss, parent: doc.ID})
		}
	}

	var paragraphs []parented
	pos := 0
	for _, sec := range sections {
		c := record(LevelSection, pos, sec.s, sec.parent)
		pos++
		for _, ps := range subSpans(text, hints, sec.s, p.MinChunkSize, p.MaxChunkSize, e.tok) {
			paragraphs = append(paragraphs, parented{s: ps, parent: c.ID})
		}
	}

	pos = 0
	for _, par := range paragraphs {
		record(LevelParagraph, pos, par.s, par.parent)
		pos++
	}

	return chunks
}

// subSpans runs the semantic splitter inside one parent span and maps the
// results back to whole-text offsets.
func subSpans(text string, hints []models.Span, parent span, min, max int, tok Tokenizer) []span {
	sub := text[parent.start:parent.end]
	out := semanticSpans(sub, clipHints(hints, parent.start, parent.end), min, max, tok)
	for i := range out {
		out[i].start += parent.start
		out[i].end += parent.start
	}
	return out
}

// clipHints rebases paragraph hints onto a [start, end) window, dropping
// hints outside it and trimming ones that straddle the edges.
func clipHints(hints []models.Span, start, end int) []models.Span {
	var out []models.Span
	for _, h := range hints {
		if h.End <= start || h.Start >= end {
			continue
		}
		s, e := h.Start, h.End
		if s < start {
			s = start
		}
		if e > end {
			e = end
		}
		out = append(out, models.Span{Start: s - start, End: e - start})
	}
	return out
}
