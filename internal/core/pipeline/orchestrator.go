package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/markdave123-py/Sectora/internal/core/chunking"
	db "github.com/markdave123-py/Sectora/internal/core/database"
	"github.com/markdave123-py/Sectora/internal/core/embedding"
	"github.com/markdave123-py/Sectora/internal/core/extract"
	"github.com/markdave123-py/Sectora/internal/core/index"
	objectclient "github.com/markdave123-py/Sectora/internal/core/object-client"
	"github.com/markdave123-py/Sectora/internal/logging"
	"github.com/markdave123-py/Sectora/internal/models"
)

// Request describes one document processing run.
//
// SourceURI is the object storage key of the raw upload; when empty it is
// derived from the sector, document ID and file name. Params and TaskType
// fall back to the strategy defaults and RETRIEVAL_DOCUMENT.
type Request struct {
	DocumentID string           `json:"document_id"`
	Sector     string           `json:"sector"`
	SourceURI  string           `json:"source_uri,omitempty"`
	FileName   string           `json:"file_name"`
	MimeType   string           `json:"mime_type,omitempty"`
	Strategy   string           `json:"strategy,omitempty"`
	Params     *chunking.Params `json:"params,omitempty"`
	TaskType   string           `json:"task_type,omitempty"`
}

// DocumentID derives the identifier for an uploaded blob from its sector,
// file name and content hash. Re-uploading the same file yields the same ID,
// so the new run supersedes the earlier one instead of duplicating it.
func DocumentID(sector, fileName string, content []byte) string {
	sum := sha256.Sum256(content)
	name := fmt.Sprintf("sectora:doc:%s:%s:%x", sector, fileName, sum)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Report is the terminal outcome of a run.
type Report struct {
	DocumentID string                `json:"document_id"`
	Status     models.DocumentStatus `json:"status"`
	ChunkCount int                   `json:"chunk_count"`
	ErrorStage string                `json:"error_stage,omitempty"`
	ErrorKind  string                `json:"error_kind,omitempty"`
}

// Orchestrator drives a document through extraction, chunking, embedding
// and indexing, recording every status change in the metadata store.
type Orchestrator struct {
	store    db.MetadataStore
	blobs    objectclient.ObjectClient
	registry *extract.Registry
	engine   *chunking.Engine
	gen      *embedding.Generator
	router   *index.Router
	idx      index.Writer
	tempDir  string
}

func NewOrchestrator(
	store db.MetadataStore,
	blobs objectclient.ObjectClient,
	registry *extract.Registry,
	engine *chunking.Engine,
	gen *embedding.Generator,
	router *index.Router,
	idx index.Writer,
	tempDir string,
) *Orchestrator {
	return &Orchestrator{
		store: store, blobs: blobs, registry: registry, engine: engine,
		gen: gen, router: router, idx: idx, tempDir: tempDir,
	}
}

// Run processes one document end to end. Validation happens before any
// extraction work: an unknown sector, bad strategy, bad params or bad task
// type fails the document without ever fetching its bytes.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	if req.DocumentID == "" {
		return Report{}, fmt.Errorf("document_id is required")
	}

	if req.Strategy == "" {
		req.Strategy = string(chunking.StrategyFixedSize)
	}
	if req.TaskType == "" {
		req.TaskType = string(embedding.TaskRetrievalDocument)
	}
	key := req.SourceURI
	if key == "" {
		key = objectclient.ObjectKey(req.Sector, req.DocumentID, req.FileName)
	}

	doc := &models.Document{
		ID:        req.DocumentID,
		Sector:    req.Sector,
		SourceURI: key,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		Strategy:  req.Strategy,
		Status:    models.StatusReceived,
	}
	if err := o.store.PutDocument(ctx, doc); err != nil {
		return Report{}, fmt.Errorf("register document %s: %w", req.DocumentID, err)
	}

	handle, err := o.router.Route(req.Sector)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageValidation, err))
	}
	strategy, err := chunking.ParseStrategy(req.Strategy)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageValidation, err))
	}
	var params chunking.Params
	if req.Params != nil {
		params = *req.Params
	}
	if err := chunking.ValidateParams(strategy, params); err != nil {
		return o.fail(ctx, doc, stageErr(StageValidation, err))
	}
	task, err := embedding.ParseTaskType(req.TaskType)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageValidation, err))
	}

	if err := o.advance(ctx, doc, models.StatusExtracting); err != nil {
		return o.fail(ctx, doc, stageErr(StageExtracting, err))
	}
	data, err := o.stage(ctx, key)
	if err != nil {
		return o.fail(ctx, doc, &StageError{Stage: StageExtracting, Kind: KindStorageFailure, Err: err})
	}
	text, hints, err := o.registry.Extract(ctx, data, req.MimeType)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageExtracting, err))
	}

	if err := o.advance(ctx, doc, models.StatusChunking); err != nil {
		return o.fail(ctx, doc, stageErr(StageChunking, err))
	}
	chunks, err := o.engine.Chunk(req.DocumentID, req.Sector, text, hints, strategy, params)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageChunking, err))
	}
	logging.Infow("chunked document",
		"document_id", req.DocumentID, "sector", req.Sector,
		"strategy", strategy, "chunks", len(chunks))

	if err := o.advance(ctx, doc, models.StatusEmbedding); err != nil {
		return o.fail(ctx, doc, stageErr(StageEmbedding, err))
	}
	embeddings, err := o.gen.Embed(ctx, chunks, task)
	if err != nil {
		return o.fail(ctx, doc, stageErr(StageEmbedding, err))
	}

	if err := o.advance(ctx, doc, models.StatusIndexing); err != nil {
		return o.fail(ctx, doc, stageErr(StageIndexing, err))
	}
	if err := o.store.PutChunks(ctx, req.DocumentID, string(strategy), chunks); err != nil {
		return o.fail(ctx, doc, &StageError{Stage: StageIndexing, Kind: KindStorageFailure, Err: err})
	}
	entries := make([]index.Entry, len(embeddings))
	for i, emb := range embeddings {
		entries[i] = index.Entry{ChunkID: emb.ChunkID, Vector: emb.Vector}
	}
	if err := o.idx.Upsert(ctx, handle, req.DocumentID, string(strategy), entries); err != nil {
		return o.fail(ctx, doc, &StageError{Stage: StageIndexing, Kind: KindStorageFailure, Err: err})
	}

	if err := o.store.MarkDocumentCompleted(ctx, req.DocumentID, len(chunks)); err != nil {
		return Report{}, fmt.Errorf("mark document %s completed: %w", req.DocumentID, err)
	}
	logging.Infow("document completed",
		"document_id", req.DocumentID, "sector", req.Sector, "chunks", len(chunks))

	return Report{
		DocumentID: req.DocumentID,
		Status:     models.StatusCompleted,
		ChunkCount: len(chunks),
	}, nil
}

// advance records a legal forward transition in the store before any work
// for that stage starts.
func (o *Orchestrator) advance(ctx context.Context, doc *models.Document, to models.DocumentStatus) error {
	s, err := Transition(doc.Status, to)
	if err != nil {
		return err
	}
	if err := o.store.UpdateDocumentStatus(ctx, doc.ID, s); err != nil {
		return err
	}
	doc.Status = s
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, doc *models.Document, serr *StageError) (Report, error) {
	if err := o.store.MarkDocumentFailed(ctx, doc.ID, serr.Stage, serr.Kind); err != nil {
		logging.Errorf("mark document %s failed: %v", doc.ID, err)
	}
	doc.Status = models.StatusFailed
	logging.Warnf("document %s failed at %s (%s): %v", doc.ID, serr.Stage, serr.Kind, serr.Err)
	return Report{
		DocumentID: doc.ID,
		Status:     models.StatusFailed,
		ErrorStage: serr.Stage,
		ErrorKind:  serr.Kind,
	}, serr
}

// stage streams the object through a temp file rather than buffering the
// download and the decode copy at the same time. The file is removed as
// soon as the bytes are read back.
func (o *Orchestrator) stage(ctx context.Context, key string) ([]byte, error) {
	rc, err := o.blobs.GetObjectReader(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer rc.Close()

	f, err := os.CreateTemp(o.tempDir, "sectora-doc-*")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return nil, fmt.Errorf("stage object %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close staging file: %w", err)
	}
	return os.ReadFile(name)
}
