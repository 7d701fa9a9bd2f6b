package ingestion_engine

import "context"

// Ingestor runs the background work that follows a successful upload.
type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string) bool
	ProcessOne(ctx context.Context, docID string) error
}
