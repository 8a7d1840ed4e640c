package models

import (
	"time"
)

// DocumentStatus tracks a document through the ingestion pipeline.
// Transitions are one-way; failed is reachable from any non-terminal state.
type DocumentStatus string

const (
	StatusReceived   DocumentStatus = "received"
	StatusExtracting DocumentStatus = "extracting"
	StatusChunking   DocumentStatus = "chunking"
	StatusEmbedding  DocumentStatus = "embedding"
	StatusIndexing   DocumentStatus = "indexing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document represents one ingested business document.
type Document struct {
	ID         string         `db:"id" json:"document_id"`
	Sector     string         `db:"sector" json:"sector"`
	SourceURI  string         `db:"source_uri" json:"source_uri"`
	FileName   string         `db:"file_name" json:"file_name"`
	MimeType   string         `db:"mime_type" json:"mime_type"`
	Strategy   string         `db:"strategy" json:"strategy"`
	Status     DocumentStatus `db:"status" json:"status"`
	ErrorStage string         `db:"error_stage" json:"error_stage,omitempty"`
	ErrorKind  string         `db:"error_kind" json:"error_kind,omitempty"`
	ChunkCount int            `db:"chunk_count" json:"chunk_count"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Chunk is one contiguous (or overlapping) span of a document's normalized
// text. IDs are deterministic over (document_id, strategy, level, position),
// so reprocessing the same document with the same strategy overwrites the
// prior set instead of duplicating it.
type Chunk struct {
	ID            string    `db:"id" json:"id"`
	DocumentID    string    `db:"document_id" json:"document_id"`
	Sector        string    `db:"sector" json:"sector"`
	Text          string    `db:"text" json:"text"`
	Strategy      string    `db:"strategy" json:"strategy"`
	Level         int       `db:"level" json:"level"`
	Position      int       `db:"position" json:"position"`
	CharStart     int       `db:"char_start" json:"char_start"`
	CharEnd       int       `db:"char_end" json:"char_end"`
	ParentChunkID string    `db:"parent_chunk_id" json:"parent_chunk_id,omitempty"`
	TokenCount    int       `db:"token_count" json:"token_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Embedding is the vector generated for one chunk. Created once per chunk;
// regeneration replaces rather than appends.
type Embedding struct {
	ChunkID   string    `json:"chunk_id"`
	Vector    []float32 `json:"vector"`
	TaskType  string    `json:"task_type"`
	ModelName string    `json:"model_name"`
}

// Span marks a half-open [Start, End) byte range in normalized text.
// The extractor reports paragraph boundaries as ordered spans.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
