package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Sectora/internal/config"
	"github.com/markdave123-py/Sectora/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the underlying pool so the vector index layer can share it.
func (c *DatabaseClient) DB() *sql.DB {
	return c.db
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// PutDocument registers a document or restarts an existing one. A re-run of
// the same document ID resets its error fields and chunk count so stale
// failure state never survives a reprocess.
func (c *DatabaseClient) PutDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, sector, source_uri, file_name, mime_type, strategy, status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()), now())
		ON CONFLICT (id) DO UPDATE SET
			sector      = EXCLUDED.sector,
			source_uri  = EXCLUDED.source_uri,
			file_name   = EXCLUDED.file_name,
			mime_type   = EXCLUDED.mime_type,
			strategy    = EXCLUDED.strategy,
			status      = EXCLUDED.status,
			error_stage = '',
			error_kind  = '',
			chunk_count = 0,
			updated_at  = now()
	`
	var created any
	if !doc.CreatedAt.IsZero() {
		created = doc.CreatedAt
	}
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.Sector, doc.SourceURI, doc.FileName, doc.MimeType, doc.Strategy, doc.Status, created)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, sector, source_uri, file_name, mime_type, strategy, status,
		       error_stage, error_kind, chunk_count, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Sector, &d.SourceURI, &d.FileName, &d.MimeType, &d.Strategy, &d.Status,
		&d.ErrorStage, &d.ErrorKind, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsBySector(ctx context.Context, sector string) ([]models.Document, error) {
	const q = `
		SELECT id, sector, source_uri, file_name, mime_type, strategy, status,
		       error_stage, error_kind, chunk_count, created_at, updated_at
		FROM documents
		WHERE sector = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, sector)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.Sector, &d.SourceURI, &d.FileName, &d.MimeType, &d.Strategy, &d.Status,
			&d.ErrorStage, &d.ErrorKind, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) MarkDocumentFailed(ctx context.Context, id, stage, kind string) error {
	const q = `
		UPDATE documents
		SET status = $2, error_stage = $3, error_kind = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, models.StatusFailed, stage, kind)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) MarkDocumentCompleted(ctx context.Context, id string, chunkCount int) error {
	const q = `
		UPDATE documents
		SET status = $2, chunk_count = $3, error_stage = '', error_kind = '', updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, models.StatusCompleted, chunkCount)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// PutChunks replaces a document's chunk set for one strategy in a single
// transaction. Chunk IDs are deterministic, so unchanged chunks update in
// place and rows absent from the new set are swept.
func (c *DatabaseClient) PutChunks(ctx context.Context, documentID, strategy string, chunks []models.Chunk) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunks
			(id, document_id, sector, strategy, level, position, text,
			 char_start, char_end, parent_chunk_id, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))
		ON CONFLICT (id) DO UPDATE SET
			sector          = EXCLUDED.sector,
			level           = EXCLUDED.level,
			position        = EXCLUDED.position,
			text            = EXCLUDED.text,
			char_start      = EXCLUDED.char_start,
			char_end        = EXCLUDED.char_end,
			parent_chunk_id = EXCLUDED.parent_chunk_id,
			token_count     = EXCLUDED.token_count
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	kept := make([]string, 0, len(chunks))
	for i := range chunks {
		ch := &chunks[i]
		var created any
		if !ch.CreatedAt.IsZero() {
			created = ch.CreatedAt
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.Sector, ch.Strategy, ch.Level, ch.Position, ch.Text,
			ch.CharStart, ch.CharEnd, ch.ParentChunkID, ch.TokenCount, created,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
		kept = append(kept, ch.ID)
	}

	const sweep = `
		DELETE FROM chunks
		WHERE document_id = $1 AND strategy = $2 AND NOT (id = ANY($3))
	`
	if _, err := tx.ExecContext(ctx, sweep, documentID, strategy, kept); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error) {
	const q = `
		SELECT id, document_id, sector, strategy, level, position, text,
		       char_start, char_end, parent_chunk_id, token_count, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY level ASC, position ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var ch models.Chunk
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.Sector, &ch.Strategy, &ch.Level, &ch.Position, &ch.Text,
			&ch.CharStart, &ch.CharEnd, &ch.ParentChunkID, &ch.TokenCount, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

var _ MetadataStore = (*DatabaseClient)(nil)
