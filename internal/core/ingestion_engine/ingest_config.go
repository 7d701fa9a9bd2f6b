package ingestion_engine

import (
	"fmt"

	"github.com/markdave123-py/content-processor/internal/core/chunker"
)

// IngestConfig tunes the processing pipeline and the background embedding workers.
//
// ChunkSize:     maximum chunk length in characters (e.g., 1000).
// ChunkOverlap:  characters shared by consecutive chunks (e.g., 100).
// MinChunkSize:  candidate chunks shorter than this are dropped (e.g., 100).
// BatchSize:     how many chunks to embed/write in one batch (e.g., 16).
// QueueSize:     capacity of the in-memory job queue.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
	BatchSize    int
	QueueSize    int
}

// DefaultIngestConfig returns the service defaults.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		ChunkSize:    chunker.DefaultChunkSize,
		ChunkOverlap: chunker.DefaultChunkOverlap,
		MinChunkSize: chunker.DefaultMinChunkSize,
		BatchSize:    16,
		QueueSize:    64,
	}
}

func (c IngestConfig) newChunker() (*chunker.Chunker, error) {
	ch, err := chunker.New(
		chunker.WithChunkSize(c.ChunkSize),
		chunker.WithOverlap(c.ChunkOverlap),
		chunker.WithMinChunkSize(c.MinChunkSize),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	return ch, nil
}
