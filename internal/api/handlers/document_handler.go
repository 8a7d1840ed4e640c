package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markdave123-py/Sectora/internal/core/chunking"
	db "github.com/markdave123-py/Sectora/internal/core/database"
	"github.com/markdave123-py/Sectora/internal/core/embedding"
	"github.com/markdave123-py/Sectora/internal/core/extract"
	"github.com/markdave123-py/Sectora/internal/core/index"
	objectclient "github.com/markdave123-py/Sectora/internal/core/object-client"
	"github.com/markdave123-py/Sectora/internal/core/pipeline"
	"github.com/markdave123-py/Sectora/internal/logging"
	"github.com/markdave123-py/Sectora/internal/models"
)

type DocumentHandler struct {
	store    db.MetadataStore
	blobs    objectclient.ObjectClient
	router   *index.Router
	ingestor pipeline.Ingestor
	orch     *pipeline.Orchestrator
}

func NewDocumentHandler(store db.MetadataStore, blobs objectclient.ObjectClient, router *index.Router, ing pipeline.Ingestor, orch *pipeline.Orchestrator) *DocumentHandler {
	return &DocumentHandler{store: store, blobs: blobs, router: router, ingestor: ing, orch: orch}
}

// UploadDocument handles file upload, registration, and background processing.
// Sector, strategy and task type are validated up front so a bad request gets
// a 400 here instead of an async pipeline failure.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(52 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	sector := r.FormValue("sector")
	if _, err := h.router.Route(sector); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	strategy := r.FormValue("strategy")
	if strategy != "" {
		if _, err := chunking.ParseStrategy(strategy); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	taskType := r.FormValue("task_type")
	if taskType != "" {
		if _, err := embedding.ParseTaskType(taskType); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read file", http.StatusBadRequest)
		return
	}

	// Sanitize filename to prevent path traversal or invalid characters
	cleanFilename := filepath.Base(header.Filename)
	docID := pipeline.DocumentID(sector, cleanFilename, data)
	key := objectclient.ObjectKey(sector, docID, cleanFilename)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = extract.DetectMimeType(cleanFilename, data)
	}

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	uri, err := h.blobs.UploadFile(uploadctx, key, data, contentType)
	if err != nil {
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	req := pipeline.Request{
		DocumentID: docID,
		Sector:     sector,
		SourceURI:  key,
		FileName:   cleanFilename,
		MimeType:   contentType,
		Strategy:   strategy,
		TaskType:   taskType,
	}

	doc := &models.Document{
		ID:        docID,
		Sector:    sector,
		SourceURI: key,
		FileName:  cleanFilename,
		MimeType:  contentType,
		Strategy:  req.Strategy,
		Status:    models.StatusReceived,
	}
	if err := h.store.PutDocument(uploadctx, doc); err != nil {
		logging.Errorf("register document %s: %v", docID, err)
		http.Error(w, fmt.Sprintf("failed to store document metadata: %v", err), http.StatusInternalServerError)
		return
	}

	h.ingestor.Enqueue(req)
	logging.Infow("document queued", "document_id", docID, "sector", sector, "uri", uri)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(doc)
}

// ProcessDocument runs the pipeline synchronously for an already-uploaded
// object and returns the terminal report.
func (h *DocumentHandler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}

	report, err := h.orch.Run(r.Context(), req)
	if err != nil {
		var serr *pipeline.StageError
		if !errors.As(err, &serr) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// The failure is recorded on the document; the report carries the
		// stage and kind so the caller does not need to poll.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(report)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.store.GetDocumentByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	if _, err := h.router.Route(sector); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	documents, err := h.store.ListDocumentsBySector(r.Context(), sector)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

func (h *DocumentHandler) GetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chunks, err := h.store.GetChunksByDocument(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chunks)
}
