package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/models"
)

// processTimeout bounds the embedding of a single document.
const processTimeout = 5 * time.Minute

var _ Ingestor = (*DocumentIngestor)(nil)

// DocumentIngestor embeds the chunks of stored documents in the background:
//
// store:     source of the processed documents.
// index:     vector storage for chunk embeddings.
// embedder:  embedding provider (Gemini).
// cfg:       batch size and queue capacity.
// jobs:      in-memory queue of document IDs to process.
type DocumentIngestor struct {
	store    core.DocumentStore
	index    core.ChunkIndex
	embedder core.EmbeddingProvider
	cfg      IngestConfig
	jobs     chan string
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(store core.DocumentStore, index core.ChunkIndex, emb core.EmbeddingProvider, cfg IngestConfig, logger *slog.Logger) *DocumentIngestor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultIngestConfig().BatchSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultIngestConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentIngestor{
		store:    store,
		index:    index,
		embedder: emb,
		cfg:      cfg,
		jobs:     make(chan string, cfg.QueueSize),
		logger:   logger.With("component", "ingestor"),
	}
}

// Start launches numWorkers goroutines reading from the job queue until ctx is done.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		i.wg.Add(1)
		go func(w int) {
			defer i.wg.Done()
			for {
				select {
				case <-ctx.Done():
					i.logger.Debug("worker shutting down", "worker", w)
					return
				case docID := <-i.jobs:
					i.logger.Info("embedding document", "document_id", docID, "worker", w)
					if err := i.ProcessOne(ctx, docID); err != nil {
						i.logger.Error("embedding failed", "document_id", docID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Wait blocks until every worker started by Start has returned.
func (i *DocumentIngestor) Wait() { i.wg.Wait() }

// Enqueue schedules a document ID without blocking. It reports false when the
// queue is full and the job was dropped.
func (i *DocumentIngestor) Enqueue(docID string) bool {
	select {
	case i.jobs <- docID:
		return true
	default:
		i.logger.Warn("ingest queue full, dropping job", "document_id", docID)
		return false
	}
}

// ProcessOne embeds every chunk of one document in batches and stores the vectors.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	doc, err := i.store.FindByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", core.ErrNotFound, docID)
	}
	if len(doc.Chunks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	batches := i.streamBatches(gctx, g, doc.Chunks)
	g.Go(func() error {
		return i.embedAndPersist(gctx, docID, batches)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	i.logger.Info("document embedded", "document_id", docID, "chunks", len(doc.Chunks))
	return nil
}

// streamBatches emits the chunks in groups of cfg.BatchSize.
func (i *DocumentIngestor) streamBatches(ctx context.Context, g *errgroup.Group, chunks []models.DocumentChunk) <-chan []models.DocumentChunk {
	out := make(chan []models.DocumentChunk, 2)
	g.Go(func() error {
		defer close(out)
		for start := 0; start < len(chunks); start += i.cfg.BatchSize {
			end := min(start+i.cfg.BatchSize, len(chunks))
			select {
			case out <- chunks[start:end]:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	return out
}

// embedAndPersist consumes batches, embeds them and writes the vectors.
func (i *DocumentIngestor) embedAndPersist(ctx context.Context, docID string, in <-chan []models.DocumentChunk) error {
	for batch := range in {
		texts := make([]string, len(batch))
		for k := range batch {
			texts[k] = batch[k].Content
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(batch))
		}

		rows := make([]models.ChunkEmbedding, len(batch))
		for k := range batch {
			rows[k] = models.ChunkEmbedding{Index: batch[k].Index, Vector: vecs[k]}
		}
		if err := i.index.StoreChunkEmbeddings(ctx, docID, rows); err != nil {
			return fmt.Errorf("store embeddings: %w", err)
		}
	}
	return nil
}
