package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/models"
)

var _ core.DocumentStore = (*DatabaseClient)(nil)

// DatabaseClient stores documents in a SQL database (Postgres or SQLite).
type DatabaseClient struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

func openSQL(ctx context.Context, d dialect, dsn string, logger *slog.Logger) (*DatabaseClient, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if d.name == sqliteDialect.name {
		// One connection: SQLite serializes writers, and :memory: databases are per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, d, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, dialect: d, logger: logger}, nil
}

// NewSQLiteClient opens (and bootstraps) a SQLite database, e.g. "file:docs.db" or ":memory:".
func NewSQLiteClient(ctx context.Context, dsn string, logger *slog.Logger) (*DatabaseClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return openSQL(ctx, sqliteDialect, dsn, logger)
}

func (c *DatabaseClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

const documentColumns = `id, user_id, title, content, summary, status, storage_key, file_type, file_size,
	word_count, character_count, estimated_reading_time, language, author, pages,
	uploaded_at, processed_at`

// Save inserts the document and its chunks in one transaction. A document without
// an ID gets a fresh UUID.
func (c *DatabaseClient) Save(ctx context.Context, doc *models.Document) (string, error) {
	if doc == nil {
		return "", errors.New("nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	q := c.dialect.rebind(`INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	md := doc.Metadata
	if _, err := tx.ExecContext(ctx, q,
		doc.ID, nullString(doc.UserID), doc.Title, doc.Content, doc.Summary, doc.Status,
		nullString(&doc.StorageKey), md.FileType, md.FileSize, md.WordCount, md.CharacterCount, md.EstimatedReadingTime,
		md.Language, nullString(md.Author), nullInt(md.Pages),
		doc.UploadedAt.UTC(), nullTime(doc.ProcessedAt),
	); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	if err := c.insertChunks(ctx, tx, doc.ID, doc.Chunks); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (c *DatabaseClient) insertChunks(ctx context.Context, tx *sql.Tx, docID string, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, c.dialect.rebind(`
		INSERT INTO document_chunks
			(document_id, chunk_index, content, start_position, end_position, word_count, character_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			docID, ch.Index, ch.Content, ch.StartPosition, ch.EndPosition, ch.WordCount, ch.CharacterCount,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", ch.Index, err)
		}
	}
	return nil
}

func (c *DatabaseClient) FindByID(ctx context.Context, id string) (*models.Document, error) {
	q := c.dialect.rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)

	var d models.Document
	err := scanDocument(c.db.QueryRowContext(ctx, q, id), &d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	chunks, err := c.chunksByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Chunks = chunks
	return &d, nil
}

func (c *DatabaseClient) chunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	rows, err := c.db.QueryContext(ctx, c.dialect.rebind(`
		SELECT chunk_index, content, start_position, end_position, word_count, character_count
		FROM document_chunks
		WHERE document_id = ?
		ORDER BY chunk_index ASC`), documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DocumentChunk{}
	for rows.Next() {
		var ch models.DocumentChunk
		if err := rows.Scan(
			&ch.Index, &ch.Content, &ch.StartPosition, &ch.EndPosition, &ch.WordCount, &ch.CharacterCount,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// ListByUser returns summaries newest first. A nil userID lists every document.
func (c *DatabaseClient) ListByUser(ctx context.Context, userID *string, limit, offset int) ([]models.DocumentSummary, error) {
	q := `
		SELECT d.id, d.user_id, d.title, d.summary, d.status, d.file_type, d.file_size,
			d.word_count, d.character_count, d.estimated_reading_time, d.language, d.author, d.pages,
			d.uploaded_at, d.processed_at,
			(SELECT COUNT(*) FROM document_chunks c WHERE c.document_id = d.id) AS chunks_count
		FROM documents d`
	args := []any{}
	if userID != nil {
		q += ` WHERE d.user_id = ?`
		args = append(args, *userID)
	}
	q += ` ORDER BY d.uploaded_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, c.dialect.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DocumentSummary{}
	for rows.Next() {
		var (
			s            models.DocumentSummary
			user, author sql.NullString
			pages        sql.NullInt64
			processed    sql.NullTime
		)
		md := &s.Metadata
		if err := rows.Scan(
			&s.ID, &user, &s.Title, &s.Summary, &s.Status, &md.FileType, &md.FileSize,
			&md.WordCount, &md.CharacterCount, &md.EstimatedReadingTime, &md.Language, &author, &pages,
			&s.UploadedAt, &processed, &s.ChunksCount,
		); err != nil {
			return nil, err
		}
		s.UserID = stringPtr(user)
		md.Author = stringPtr(author)
		md.Pages = intPtr(pages)
		s.ProcessedAt = timePtr(processed)
		s.UploadedAt = s.UploadedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteByID(ctx context.Context, id string) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, c.dialect.rebind(`DELETE FROM document_chunks WHERE document_id = ?`), id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, c.dialect.rebind(`DELETE FROM documents WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update replaces the chunks and rewrites summary, status and processed_at.
func (c *DatabaseClient) Update(ctx context.Context, id string, upd models.DocumentUpdate) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, c.dialect.rebind(`
		UPDATE documents
		SET summary = ?, status = ?, processed_at = ?
		WHERE id = ?`),
		upd.Summary, upd.Status, upd.ProcessedAt.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, c.dialect.rebind(`DELETE FROM document_chunks WHERE document_id = ?`), id); err != nil {
		return err
	}
	if err := c.insertChunks(ctx, tx, id, upd.Chunks); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, d *models.Document) error {
	var (
		user, author, key sql.NullString
		pages             sql.NullInt64
		processed         sql.NullTime
	)
	md := &d.Metadata
	if err := row.Scan(
		&d.ID, &user, &d.Title, &d.Content, &d.Summary, &d.Status, &key, &md.FileType, &md.FileSize,
		&md.WordCount, &md.CharacterCount, &md.EstimatedReadingTime, &md.Language, &author, &pages,
		&d.UploadedAt, &processed,
	); err != nil {
		return err
	}
	d.UserID = stringPtr(user)
	d.StorageKey = key.String
	md.Author = stringPtr(author)
	md.Pages = intPtr(pages)
	d.ProcessedAt = timePtr(processed)
	d.UploadedAt = d.UploadedAt.UTC()
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
