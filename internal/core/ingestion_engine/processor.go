package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/core/chunker"
	"github.com/markdave123-py/content-processor/internal/core/textproc"
	"github.com/markdave123-py/content-processor/internal/models"
)

// Input is everything the pipeline needs to build a document from extracted text.
type Input struct {
	Text     string
	Filename string
	MIMEType string
	FileSize int64
	UserID   *string

	// Optional values reported by the extractor.
	Author string
	Pages  int
}

// Processor turns extracted text into a fully populated document.
// It holds no per-call state and is safe for concurrent use.
type Processor struct {
	chunker *chunker.Chunker
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewProcessor(cfg IngestConfig, logger *slog.Logger) (*Processor, error) {
	ch, err := cfg.newChunker()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		chunker: ch,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}, nil
}

// Process runs clean, title, metadata, chunk and summary in order and assembles a
// completed document. Nothing is persisted. Failures are returned as
// *core.ProcessingError; a canceled ctx is honored between stages.
func (p *Processor) Process(ctx context.Context, in Input) (doc *models.Document, err error) {
	stage := "clean"
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("document processing panicked", "filename", in.Filename, "stage", stage, "panic", r)
			doc, err = nil, &core.ProcessingError{Stage: stage, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	p.logger.Info("processing document", "filename", in.Filename, "content_type", in.MIMEType)

	step := func(next string) error {
		if err := ctx.Err(); err != nil {
			return &core.ProcessingError{Stage: next, Cause: err}
		}
		stage = next
		return nil
	}

	if err := step("clean"); err != nil {
		return nil, err
	}
	cleaned := textproc.Clean(in.Text)

	if err := step("title"); err != nil {
		return nil, err
	}
	title := textproc.InferTitle(in.Filename, cleaned)

	if err := step("metadata"); err != nil {
		return nil, err
	}
	metadata := textproc.BuildMetadata(cleaned, in.MIMEType, in.FileSize)
	if in.Author != "" {
		author := in.Author
		metadata.Author = &author
	}
	if in.Pages > 0 {
		pages := in.Pages
		metadata.Pages = &pages
	}

	if err := step("chunk"); err != nil {
		return nil, err
	}
	chunks := p.chunker.Chunk(cleaned)

	if err := step("summary"); err != nil {
		return nil, err
	}
	summary := textproc.Summarize(cleaned)

	now := p.now()
	doc = &models.Document{
		ID:          p.newID(),
		Title:       title,
		Content:     cleaned,
		Summary:     summary,
		Chunks:      chunks,
		UserID:      in.UserID,
		UploadedAt:  now,
		ProcessedAt: &now,
		Metadata:    metadata,
		Status:      models.StatusCompleted,
	}

	p.logger.Info("document processed", "filename", in.Filename, "chunks", len(chunks), "words", metadata.WordCount)
	return doc, nil
}
