package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markdave123-py/content-processor/internal/config"
	"github.com/markdave123-py/content-processor/internal/core"
	db "github.com/markdave123-py/content-processor/internal/core/database"
	"github.com/markdave123-py/content-processor/internal/core/extraction"
	"github.com/markdave123-py/content-processor/internal/core/ingestion_engine"
	"github.com/markdave123-py/content-processor/internal/core/llm"
	objectclient "github.com/markdave123-py/content-processor/internal/core/object-client"
	"github.com/markdave123-py/content-processor/internal/services"
)

type App struct {
	Store    core.DocumentStore
	Ingestor *ingestion_engine.DocumentIngestor
	Service  *services.DocumentService
	Server   *Server

	cfg     *config.Config
	logger  *slog.Logger
	closers []func() error
}

// IngestConfigFrom maps the chunking and embedding settings onto the pipeline config.
func IngestConfigFrom(cfg *config.Config) ingestion_engine.IngestConfig {
	ic := ingestion_engine.DefaultIngestConfig()
	ic.ChunkSize = cfg.ChunkSize
	ic.ChunkOverlap = cfg.ChunkOverlap
	ic.MinChunkSize = cfg.MinChunkSize
	if cfg.EmbedBatchSize > 0 {
		ic.BatchSize = cfg.EmbedBatchSize
	}
	return ic
}

// NewApp connects the store and the optional object storage and embedder, and
// wires the document service behind the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	store, err := db.NewDatabaseClient(appCtx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	logger.Info("database initialized and ready")

	ingCfg := IngestConfigFrom(cfg)
	processor, err := ingestion_engine.NewProcessor(ingCfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid chunking settings: %w", err)
	}

	var opts []services.Option
	if objectclient.Configured(cfg) {
		objClient, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, services.WithObjectStorage(objClient))
		logger.Info("object storage enabled", "bucket", cfg.BucketName)
	}

	if index, ok := store.(core.ChunkIndex); ok && cfg.AIAPIKey != "" {
		embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		a.closers = append(a.closers, embedder.Close)
		a.Ingestor = ingestion_engine.NewDocumentIngestor(store, index, embedder, ingCfg, logger)
		opts = append(opts, services.WithEmbeddings(a.Ingestor, embedder))
		logger.Info("chunk embeddings enabled", "model", cfg.EmbedModel)
	}

	a.Service = services.NewDocumentService(extraction.NewRegistry(logger), processor, store, cfg.MaxFileSize, logger, opts...)
	a.Server = NewServer(cfg, a.Service, logger)
	return a, nil
}

// Run starts the ingest workers and serves HTTP until ctx is canceled or the
// server fails, then shuts the server down and waits for the workers.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Ingestor != nil {
		a.Ingestor.Start(ctx, a.cfg.IngestWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Server.Start() }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		err = a.Server.Shutdown(shutdownCtx)
	}

	// Workers only exit on cancellation.
	cancel()
	if a.Ingestor != nil {
		a.Ingestor.Wait()
	}
	return err
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
