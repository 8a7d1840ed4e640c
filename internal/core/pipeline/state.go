package pipeline

import (
	"fmt"

	"github.com/markdave123-py/Sectora/internal/models"
)

// next holds the single legal forward edge for every non-terminal status.
// Progress is strictly one-way; the only other legal move is into failed.
var next = map[models.DocumentStatus]models.DocumentStatus{
	models.StatusReceived:   models.StatusExtracting,
	models.StatusExtracting: models.StatusChunking,
	models.StatusChunking:   models.StatusEmbedding,
	models.StatusEmbedding:  models.StatusIndexing,
	models.StatusIndexing:   models.StatusCompleted,
}

// IsTerminal reports whether a document in this status will never move again.
func IsTerminal(s models.DocumentStatus) bool {
	return s == models.StatusCompleted || s == models.StatusFailed
}

// CanTransition reports whether moving from one status to another is legal.
// Failed is reachable from any non-terminal status; completed only through
// indexing.
func CanTransition(from, to models.DocumentStatus) bool {
	if to == models.StatusFailed {
		return !IsTerminal(from)
	}
	return next[from] == to
}

// Transition validates and returns the new status, so callers cannot skip
// stages by accident.
func Transition(from, to models.DocumentStatus) (models.DocumentStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	return to, nil
}
