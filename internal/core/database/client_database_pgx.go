package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/models"
)

var (
	_ core.DocumentStore = (*PostgresClient)(nil)
	_ core.ChunkIndex    = (*PostgresClient)(nil)
)

// PostgresClient is the SQL store on Postgres, with pgvector chunk embeddings.
type PostgresClient struct {
	*DatabaseClient
}

// NewPostgresClient connects to Postgres and bootstraps the schema. When sslCertPath
// is set the connection verifies the server against that CA.
func NewPostgresClient(ctx context.Context, databaseURL, sslCertPath string, logger *slog.Logger) (*PostgresClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := databaseURL
	if sslCertPath != "" {
		if _, err := os.Stat(sslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
		}
		u, err := url.Parse(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", sslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	c, err := openSQL(ctx, postgresDialect, dsn, logger)
	if err != nil {
		return nil, err
	}
	return &PostgresClient{DatabaseClient: c}, nil
}

// StoreChunkEmbeddings writes the vectors of existing chunks in one transaction.
func (c *PostgresClient) StoreChunkEmbeddings(ctx context.Context, documentID string, embeddings []models.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE document_chunks
		SET embedding = $1
		WHERE document_id = $2 AND chunk_index = $3`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range embeddings {
		if _, err := stmt.ExecContext(ctx, pgvector.NewVector(e.Vector), documentID, e.Index); err != nil {
			return fmt.Errorf("store embedding for chunk %d: %w", e.Index, err)
		}
	}
	return tx.Commit()
}

// SearchDocumentChunks finds the top-k embedded chunks of a document closest to queryVec.
func (c *PostgresClient) SearchDocumentChunks(ctx context.Context, documentID string, queryVec []float32, limit int) ([]models.ChunkMatch, error) {
	const q = `
		SELECT chunk_index, content, start_position, end_position, word_count, character_count,
			embedding <-> $2 AS distance
		FROM document_chunks
		WHERE document_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, documentID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ChunkMatch{}
	for rows.Next() {
		m := models.ChunkMatch{DocumentID: documentID}
		ch := &m.Chunk
		if err := rows.Scan(
			&ch.Index, &ch.Content, &ch.StartPosition, &ch.EndPosition, &ch.WordCount, &ch.CharacterCount, &m.Distance,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
