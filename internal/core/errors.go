package core

import (
	"errors"
	"fmt"
)

// Pipeline and storage errors. Callers branch on them with errors.Is.
var (
	// ErrUnsupportedFormat indicates no extractor is registered for the declared MIME type.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrNoExtractableText indicates a readable container that yielded no usable text.
	ErrNoExtractableText = errors.New("no text content found in file")

	// ErrUndecodableEncoding indicates a text file that no supported encoding accepts.
	ErrUndecodableEncoding = errors.New("could not decode text file with any supported encoding")

	// ErrProcessingFailed is matched by every *ProcessingError.
	ErrProcessingFailed = errors.New("failed to process document")

	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrSearchUnavailable indicates no embedder or vector index is configured.
	ErrSearchUnavailable = errors.New("chunk search unavailable")
)

// ProcessingError wraps a failure raised while a document went through the pipeline.
// The operation is idempotent for the same input, so callers may retry.
type ProcessingError struct {
	Stage string
	Cause error
}

func (e *ProcessingError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %v", ErrProcessingFailed, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %v", ErrProcessingFailed, e.Stage, e.Cause)
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

func (e *ProcessingError) Is(target error) bool { return target == ErrProcessingFailed }
