package core

import (
	"context"
	"io"

	"github.com/markdave123-py/content-processor/internal/models"
)

// DocumentStore defines all persistence operations the services need.
// It abstracts Postgres/SQLite/MongoDB so higher layers never depend on a specific DB.
type DocumentStore interface {
	Save(ctx context.Context, doc *models.Document) (id string, err error)
	// FindByID returns (nil, nil) when the document does not exist.
	FindByID(ctx context.Context, id string) (*models.Document, error)
	// ListByUser lists documents newest first; a nil userID lists every document.
	ListByUser(ctx context.Context, userID *string, limit, offset int) ([]models.DocumentSummary, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	// Update returns ErrNotFound when no document has the given id.
	Update(ctx context.Context, id string, upd models.DocumentUpdate) error

	Ping(ctx context.Context) error
	Close() error
}

// ChunkIndex is implemented by stores that can hold chunk embeddings.
type ChunkIndex interface {
	StoreChunkEmbeddings(ctx context.Context, documentID string, embeddings []models.ChunkEmbedding) error
	SearchDocumentChunks(ctx context.Context, documentID string, queryVec []float32, limit int) ([]models.ChunkMatch, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
	GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error)
}
