package core

import (
	"context"
	"fmt"
)

// UnitError records one sub-unit (PDF page, EPUB entry) that was skipped during extraction.
type UnitError struct {
	Unit string
	Err  error
}

func (e UnitError) Error() string { return fmt.Sprintf("%s: %v", e.Unit, e.Err) }

// ExtractedText represents the result of text extraction, with the metadata the format exposes.
type ExtractedText struct {
	Text    string
	Pages   int    // 0 when the format has no page notion
	Author  string // empty when unknown
	Skipped []UnitError
}

// DocumentExtractor defines the interface for extracting text from various document types.
type DocumentExtractor interface {
	// Extract converts raw file bytes into text. The declared mimeType selects the
	// parsing strategy; unknown types fail with ErrUnsupportedFormat.
	Extract(ctx context.Context, data []byte, filename, mimeType string) (*ExtractedText, error)

	SupportedTypes() []string
	IsSupported(mimeType string) bool
}
