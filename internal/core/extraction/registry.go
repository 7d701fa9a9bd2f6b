// Package extraction converts uploaded file bytes into plain text, one strategy per
// supported MIME type.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/markdave123-py/content-processor/internal/core"
)

// Supported MIME types.
const (
	MIMEPDF      = "application/pdf"
	MIMEEPUB     = "application/epub+zip"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEODT      = "application/vnd.oasis.opendocument.text"
)

// extensionTypes maps accepted file extensions to their MIME type.
var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".epub": MIMEEPUB,
	".txt":  MIMEText,
	".md":   MIMEMarkdown,
	".docx": MIMEDocx,
	".odt":  MIMEODT,
}

// MIMEForExtension returns the MIME type for the extension of filename (case-insensitive).
func MIMEForExtension(filename string) (string, bool) {
	t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]
	return t, ok
}

// Extensions lists the accepted file extensions in lexical order.
func Extensions() []string {
	out := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extractor converts the bytes of one file format into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*core.ExtractedText, error)
}

var _ core.DocumentExtractor = (*Registry)(nil)

// Registry dispatches extraction by declared MIME type.
type Registry struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// NewRegistry returns a registry with every built-in extractor registered.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	text := NewTextExtractor()
	return &Registry{
		logger: logger,
		extractors: map[string]Extractor{
			MIMEPDF:      NewPDFExtractor(logger),
			MIMEEPUB:     NewEPUBExtractor(logger),
			MIMEText:     text,
			MIMEMarkdown: text,
			MIMEDocx:     NewDocxExtractor(),
			MIMEODT:      NewDocconvExtractor(MIMEODT, false),
		},
	}
}

// Register adds or replaces the extractor for a MIME type.
func (r *Registry) Register(mimeType string, e Extractor) {
	r.extractors[mediaType(mimeType)] = e
}

// Extract runs the extractor registered for mimeType. The result always carries
// non-blank text.
func (r *Registry) Extract(ctx context.Context, data []byte, filename, mimeType string) (*core.ExtractedText, error) {
	r.logger.Info("extracting text", "filename", filename, "content_type", mimeType)

	e, ok := r.extractors[mediaType(mimeType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, mimeType)
	}

	res, err := e.Extract(ctx, data, filename)
	if err != nil {
		r.logger.Error("text extraction failed", "filename", filename, "error", err)
		if !isTaxonomyError(err) {
			err = &core.ProcessingError{Stage: "extract", Cause: err}
		}
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	if res == nil || strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("extract %s: %w", filename, core.ErrNoExtractableText)
	}

	r.logger.Info("extracted text",
		"filename", filename,
		"characters", len([]rune(res.Text)),
		"skipped_units", len(res.Skipped),
	)
	return res, nil
}

// SupportedTypes lists the registered MIME types in lexical order.
func (r *Registry) SupportedTypes() []string {
	out := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether an extractor is registered for mimeType.
func (r *Registry) IsSupported(mimeType string) bool {
	_, ok := r.extractors[mediaType(mimeType)]
	return ok
}

// isTaxonomyError reports whether err already carries one of the typed pipeline errors.
func isTaxonomyError(err error) bool {
	for _, target := range []error{
		core.ErrUnsupportedFormat,
		core.ErrNoExtractableText,
		core.ErrUndecodableEncoding,
		core.ErrProcessingFailed,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mediaType drops parameters such as charset and lower-cases the type.
func mediaType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
