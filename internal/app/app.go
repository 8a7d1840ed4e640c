package app

import (
	"context"
	"time"

	"github.com/markdave123-py/Sectora/internal/config"
	"github.com/markdave123-py/Sectora/internal/core/chunking"
	db "github.com/markdave123-py/Sectora/internal/core/database"
	"github.com/markdave123-py/Sectora/internal/core/embedding"
	"github.com/markdave123-py/Sectora/internal/core/extract"
	"github.com/markdave123-py/Sectora/internal/core/index"
	objectclient "github.com/markdave123-py/Sectora/internal/core/object-client"
	"github.com/markdave123-py/Sectora/internal/core/pipeline"
	"github.com/markdave123-py/Sectora/internal/logging"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient objectclient.ObjectClient
	Provider     *embedding.GeminiProvider
	Ingestor     pipeline.Ingestor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Infof("database initialized and ready")

	router := index.NewRouter(cfg.Sectors)
	idx := index.NewPgIndex(dbClient.DB(), cfg.EmbedDim)
	if err := idx.Provision(appCtx, router); err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	logging.Infow("sector indexes provisioned", "sectors", cfg.Sectors, "dim", cfg.EmbedDim)

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	provider, err := embedding.NewGeminiProvider(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	generator := embedding.NewGenerator(provider, embedding.Config{Dimension: cfg.EmbedDim})
	registry := extract.NewRegistry()
	engine := chunking.NewEngine(nil)

	orch := pipeline.NewOrchestrator(dbClient, objClient, registry, engine, generator, router, idx, cfg.TempDir)

	ingestor := pipeline.NewDocumentIngestor(orch)
	ingestor.Start(ctx, cfg.Workers)

	server := NewServer(cfg, dbClient, objClient, router, ingestor, orch)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Provider:     provider,
		Ingestor:     ingestor,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.Provider != nil {
		_ = a.Provider.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
