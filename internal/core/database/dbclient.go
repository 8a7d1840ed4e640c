package db

import (
	"context"

	"github.com/markdave123-py/Sectora/internal/models"
)

// MetadataStore defines all persistence operations the pipeline needs.
// It abstracts Postgres so higher layers never depend on a specific DB.
type MetadataStore interface {
	PutDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsBySector(ctx context.Context, sector string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status models.DocumentStatus) error
	MarkDocumentFailed(ctx context.Context, id, stage, kind string) error
	MarkDocumentCompleted(ctx context.Context, id string, chunkCount int) error

	PutChunks(ctx context.Context, documentID, strategy string, chunks []models.Chunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error)

	Close() error
}
