// Package index routes chunk vectors into per-sector physical indexes.
// Each sector owns its own table, so an upsert for one sector can never be
// read back through another sector's handle even under a misconfigured
// query — isolation comes from partitioning, not filtering.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSector is returned for sectors outside the configured set.
// Routing is checked before any extraction or embedding work is spent.
var ErrUnknownSector = errors.New("unknown sector")

// Handle identifies one sector's physical index.
type Handle struct {
	Sector string
	Table  string
}

// Entry is one vector record destined for a sector index.
type Entry struct {
	ChunkID string
	Vector  []float32
}

// Writer is the vector-index collaborator contract. Upserting a document's
// entries also retires stale rows from that document's prior run with the
// same strategy.
type Writer interface {
	Upsert(ctx context.Context, h Handle, documentID, strategy string, entries []Entry) error
}

// Router resolves sector names to index handles. The mapping is built once
// from configuration and read-only afterwards, so concurrent pipeline
// invocations share it without locking.
type Router struct {
	handles map[string]Handle
	sectors []string
}

func NewRouter(sectors []string) *Router {
	r := &Router{handles: make(map[string]Handle, len(sectors))}
	for _, s := range sectors {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		r.handles[s] = Handle{Sector: s, Table: tableName(s)}
		r.sectors = append(r.sectors, s)
	}
	return r
}

// Route returns the index handle for a sector, or ErrUnknownSector.
func (r *Router) Route(sector string) (Handle, error) {
	h, ok := r.handles[strings.ToLower(strings.TrimSpace(sector))]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %q (configured: %s)", ErrUnknownSector, sector, strings.Join(r.sectors, ", "))
	}
	return h, nil
}

// Sectors lists the configured sector names in registration order.
func (r *Router) Sectors() []string {
	return r.sectors
}

// tableName derives the physical table for a sector. Sector names are
// sanitized to a safe SQL identifier because table names cannot be bound
// as query parameters.
func tableName(sector string) string {
	var b strings.Builder
	b.WriteString("vectors_")
	for _, r := range sector {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
