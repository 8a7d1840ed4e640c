package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Sectora/internal/api/handlers"
	"github.com/markdave123-py/Sectora/internal/config"
	db "github.com/markdave123-py/Sectora/internal/core/database"
	"github.com/markdave123-py/Sectora/internal/core/index"
	objectclient "github.com/markdave123-py/Sectora/internal/core/object-client"
	"github.com/markdave123-py/Sectora/internal/core/pipeline"
	"github.com/markdave123-py/Sectora/internal/logging"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, store db.MetadataStore, blobs objectclient.ObjectClient, router *index.Router, ing pipeline.Ingestor, orch *pipeline.Orchestrator) *Server {
	docHandler := handlers.NewDocumentHandler(store, blobs, router, ing, orch)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/documents/upload", docHandler.UploadDocument)
		api.Post("/documents/process", docHandler.ProcessDocument)
		api.Get("/documents", docHandler.GetDocuments)
		api.Get("/documents/{id}", docHandler.GetDocument)
		api.Get("/documents/{id}/chunks", docHandler.GetDocumentChunks)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	logging.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Infof("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
