package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/markdave123-py/content-processor/internal/core"
	ingestion "github.com/markdave123-py/content-processor/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/content-processor/internal/core/object-client"
	"github.com/markdave123-py/content-processor/internal/models"
)

// Listing bounds.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// UploadRequest is one file received from a client.
type UploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte
	UserID      *string
}

// DocumentService orchestrates validate, extract, process and persist for uploads,
// plus the read, delete and reprocess operations on stored documents.
type DocumentService struct {
	validator *UploadValidator
	extractor core.DocumentExtractor
	processor *ingestion.Processor
	store     core.DocumentStore

	// Optional collaborators; nil disables the feature.
	objects  core.ObjectClient
	ingestor ingestion.Ingestor
	embedder core.EmbeddingProvider
	index    core.ChunkIndex

	logger *slog.Logger
}

// Option configures optional DocumentService collaborators.
type Option func(*DocumentService)

// WithObjectStorage archives original uploads in object storage.
func WithObjectStorage(objects core.ObjectClient) Option {
	return func(s *DocumentService) { s.objects = objects }
}

// WithEmbeddings enables background chunk embedding and chunk search.
func WithEmbeddings(ing ingestion.Ingestor, emb core.EmbeddingProvider) Option {
	return func(s *DocumentService) {
		s.ingestor = ing
		s.embedder = emb
	}
}

func NewDocumentService(
	extractor core.DocumentExtractor,
	processor *ingestion.Processor,
	store core.DocumentStore,
	maxFileSize int64,
	logger *slog.Logger,
	opts ...Option,
) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DocumentService{
		validator: NewUploadValidator(maxFileSize, extractor),
		extractor: extractor,
		processor: processor,
		store:     store,
		logger:    logger,
	}
	if idx, ok := store.(core.ChunkIndex); ok {
		s.index = idx
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process validates, extracts and processes one file without persisting it.
func (s *DocumentService) Process(ctx context.Context, req UploadRequest) (*models.Document, error) {
	contentType := ResolveContentType(req.Filename, req.ContentType)
	filename, err := s.validator.Validate(req.Filename, contentType, req.Data)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extractor.Extract(ctx, req.Data, filename, contentType)
	if err != nil {
		return nil, err
	}
	for _, skipped := range extracted.Skipped {
		s.logger.Warn("skipped unreadable unit", "filename", filename, "unit", skipped.Unit, "error", skipped.Err)
	}

	return s.processor.Process(ctx, ingestion.Input{
		Text:     extracted.Text,
		Filename: filename,
		MIMEType: contentType,
		FileSize: int64(len(req.Data)),
		UserID:   req.UserID,
		Author:   extracted.Author,
		Pages:    extracted.Pages,
	})
}

// Upload processes one file and persists the result, archiving the original bytes
// when object storage is configured. The returned document is already stored.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	doc, err := s.Process(ctx, req)
	if err != nil {
		return nil, err
	}
	filename := SanitizeFilename(req.Filename)
	contentType := doc.Metadata.FileType

	if s.objects != nil {
		key := objectclient.DocumentKey(req.UserID, doc.ID, filename)
		if _, err := s.objects.UploadFile(ctx, key, req.Data, contentType); err != nil {
			return nil, fmt.Errorf("archive upload: %w", err)
		}
		doc.StorageKey = key
	}

	if _, err := s.store.Save(ctx, doc); err != nil {
		if doc.StorageKey != "" {
			if derr := s.objects.DeleteFile(context.WithoutCancel(ctx), doc.StorageKey); derr != nil {
				s.logger.Warn("failed to remove orphaned archive", "key", doc.StorageKey, "error", derr)
			}
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("document stored", "document_id", doc.ID, "filename", filename, "chunks", len(doc.Chunks))
	s.enqueue(doc.ID)
	return doc, nil
}

func (s *DocumentService) enqueue(docID string) {
	if s.ingestor == nil || s.index == nil {
		return
	}
	if !s.ingestor.Enqueue(docID) {
		s.logger.Warn("embedding not scheduled", "document_id", docID)
	}
}

// Get returns the stored document or core.ErrNotFound.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc == nil {
		return nil, core.ErrNotFound
	}
	return doc, nil
}

// List returns document summaries newest first. A nil userID lists every document.
func (s *DocumentService) List(ctx context.Context, userID *string, limit, skip int) ([]models.DocumentSummary, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, invalid("limit must be between 1 and %d", MaxListLimit)
	}
	if skip < 0 {
		return nil, invalid("skip must not be negative")
	}
	docs, err := s.store.ListByUser(ctx, userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []models.DocumentSummary{}
	}
	return docs, nil
}

// Delete removes the document, its chunks and any archived original.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if !deleted {
		return core.ErrNotFound
	}
	if doc.StorageKey != "" && s.objects != nil {
		if err := s.objects.DeleteFile(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("failed to remove archived upload", "document_id", id, "key", doc.StorageKey, "error", err)
		}
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// OpenOriginal streams the archived upload of a document. The caller closes the
// reader. Documents stored without an archive report core.ErrNotFound.
func (s *DocumentService) OpenOriginal(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.objects == nil || doc.StorageKey == "" {
		return nil, nil, fmt.Errorf("%w: original file not archived", core.ErrNotFound)
	}
	rc, err := s.objects.GetObjectReader(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open archived upload: %w", err)
	}
	return doc, rc, nil
}

// Reprocess reruns the pipeline over the stored cleaned content and replaces the
// document's chunks, summary and processed time. The stored title stands in for
// the original filename.
func (s *DocumentService) Reprocess(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fresh, err := s.processor.Process(ctx, ingestion.Input{
		Text:     doc.Content,
		Filename: doc.Title,
		MIMEType: doc.Metadata.FileType,
		FileSize: doc.Metadata.FileSize,
		UserID:   doc.UserID,
	})
	if err != nil {
		return nil, err
	}

	upd := models.DocumentUpdate{
		Chunks:      fresh.Chunks,
		Summary:     fresh.Summary,
		ProcessedAt: *fresh.ProcessedAt,
		Status:      models.StatusCompleted,
	}
	if err := s.store.Update(ctx, id, upd); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	doc.Chunks = upd.Chunks
	doc.Summary = upd.Summary
	doc.ProcessedAt = &upd.ProcessedAt
	doc.Status = upd.Status

	s.logger.Info("document reprocessed", "document_id", id, "chunks", len(doc.Chunks))
	s.enqueue(id)
	return doc, nil
}

// SearchAvailable reports whether chunk search is configured.
func (s *DocumentService) SearchAvailable() bool {
	return s.embedder != nil && s.index != nil
}

// Search returns the chunks of one document closest to query.
func (s *DocumentService) Search(ctx context.Context, id, query string, limit int) ([]models.ChunkMatch, error) {
	if !s.SearchAvailable() {
		return nil, core.ErrSearchUnavailable
	}
	if query == "" {
		return nil, invalid("query is required")
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	matches, err := s.index.SearchDocumentChunks(ctx, id, vecs[0], limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if matches == nil {
		matches = []models.ChunkMatch{}
	}
	return matches, nil
}

// SupportedTypes lists the MIME types uploads may declare.
func (s *DocumentService) SupportedTypes() []string {
	return s.extractor.SupportedTypes()
}

// Ping checks the document store.
func (s *DocumentService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
