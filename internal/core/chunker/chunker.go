// Package chunker splits cleaned document text into overlapping chunks that end on
// sentence boundaries where possible.
package chunker

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/content-processor/internal/models"
)

// Defaults match the service configuration defaults.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
	DefaultMinChunkSize = 100
)

// boundaryWindow is how far back from a candidate end the chunker looks for a sentence end.
const boundaryWindow = 100

// Chunker is stateless after construction and safe for concurrent use.
type Chunker struct {
	chunkSize    int
	overlap      int
	minChunkSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) { c.chunkSize = size }
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) { c.overlap = overlap }
}

// WithMinChunkSize sets the length below which candidate chunks are dropped.
func WithMinChunkSize(size int) Option {
	return func(c *Chunker) { c.minChunkSize = size }
}

// New creates a chunker. Sizes must be positive; overlap may exceed the chunk size,
// the cursor still advances by at least one character per step.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultChunkOverlap,
		minChunkSize: DefaultMinChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", c.chunkSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", c.overlap)
	}
	if c.minChunkSize <= 0 {
		return nil, fmt.Errorf("min chunk size must be positive, got %d", c.minChunkSize)
	}
	return c, nil
}

// Chunk splits text into chunks. Positions refer to runes of text, before the
// per-chunk trimming; chunks shorter than the minimum size after trimming are dropped
// without consuming an index. Empty text yields no chunks.
func (c *Chunker) Chunk(text string) []models.DocumentChunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	if n <= c.chunkSize {
		return []models.DocumentChunk{newChunk(0, text, 0, n)}
	}

	chunks := make([]models.DocumentChunk, 0, n/max(1, c.chunkSize-c.overlap)+1)
	index := 0
	for start := 0; start < n; {
		end := min(start+c.chunkSize, n)

		if end < n {
			windowStart := max(end-boundaryWindow, start)
			if p := lastSentenceEnd(runes[windowStart:end]); p > 0 {
				end = windowStart + p + 1
			}
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(content)) >= c.minChunkSize {
			chunks = append(chunks, newChunk(index, content, start, end))
			index++
		}

		start = max(start+1, end-c.overlap)
	}
	return chunks
}

// lastSentenceEnd returns the right-most position of '.', '!', '?' or '\n' in window, or -1.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}

func newChunk(index int, content string, start, end int) models.DocumentChunk {
	return models.DocumentChunk{
		Index:          index,
		Content:        content,
		StartPosition:  start,
		EndPosition:    end,
		WordCount:      len(strings.Fields(content)),
		CharacterCount: len([]rune(content)),
	}
}
