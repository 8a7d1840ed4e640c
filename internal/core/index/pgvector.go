package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
)

// PgIndex stores vectors in per-sector pgvector tables.
type PgIndex struct {
	db  *sql.DB
	dim int
}

func NewPgIndex(db *sql.DB, dim int) *PgIndex {
	return &PgIndex{db: db, dim: dim}
}

// Provision creates the vector table for every configured sector. Safe to
// run on every startup.
func (p *PgIndex) Provision(ctx context.Context, r *Router) error {
	if _, err := p.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, sector := range r.Sectors() {
		h, err := r.Route(sector)
		if err != nil {
			return err
		}
		g.Go(func() error {
			ddl := fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %[1]s (
					chunk_id    TEXT PRIMARY KEY,
					document_id TEXT NOT NULL,
					strategy    TEXT NOT NULL,
					embedding   VECTOR(%[2]d) NOT NULL,
					created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
				);
				CREATE INDEX IF NOT EXISTS %[1]s_document_idx ON %[1]s (document_id, strategy);
				CREATE INDEX IF NOT EXISTS %[1]s_embedding_idx ON %[1]s USING hnsw (embedding vector_cosine_ops);
			`, h.Table, p.dim)
			if _, err := p.db.ExecContext(gctx, ddl); err != nil {
				return fmt.Errorf("failed to provision index for sector %s: %w", h.Sector, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Upsert writes a document's entries into the sector's table and removes
// rows left over from a previous run of the same document and strategy.
// The whole operation is one transaction so readers never observe a
// half-replaced document.
func (p *PgIndex) Upsert(ctx context.Context, h Handle, documentID, strategy string, entries []Entry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (chunk_id, document_id, strategy, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			strategy    = EXCLUDED.strategy,
			embedding   = EXCLUDED.embedding
	`, h.Table)

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare index upsert: %w", err)
	}
	defer stmt.Close()

	kept := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ChunkID, documentID, strategy, pgvector.NewVector(e.Vector)); err != nil {
			return fmt.Errorf("failed to upsert vector for chunk %s: %w", e.ChunkID, err)
		}
		kept = append(kept, e.ChunkID)
	}

	// Chunk IDs are deterministic per (document, strategy, position), so a
	// re-run with fewer chunks leaves orphans unless they are swept here.
	sweep := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND strategy = $2 AND NOT (chunk_id = ANY($3))
	`, h.Table)
	if _, err := tx.ExecContext(ctx, sweep, documentID, strategy, kept); err != nil {
		return fmt.Errorf("failed to sweep stale vectors: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index transaction: %w", err)
	}
	return nil
}

var _ Writer = (*PgIndex)(nil)
