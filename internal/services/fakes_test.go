package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/core/extraction"
	ingestion "github.com/markdave123-py/content-processor/internal/core/ingestion_engine"
	"github.com/markdave123-py/content-processor/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memStore struct {
	mu      sync.Mutex
	docs    map[string]*models.Document
	saveErr error
}

func newMemStore() *memStore { return &memStore{docs: map[string]*models.Document{}} }

func (m *memStore) Save(_ context.Context, doc *models.Document) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return doc.ID, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID *string, limit, offset int) ([]models.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DocumentSummary
	for _, d := range m.docs {
		if userID != nil && (d.UserID == nil || *d.UserID != *userID) {
			continue
		}
		out = append(out, d.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteByID(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[id]
	delete(m.docs, id)
	return ok, nil
}

func (m *memStore) Update(_ context.Context, id string, upd models.DocumentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return core.ErrNotFound
	}
	d.Chunks = upd.Chunks
	d.Summary = upd.Summary
	at := upd.ProcessedAt
	d.ProcessedAt = &at
	d.Status = upd.Status
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

// indexedStore adds chunk search to memStore.
type indexedStore struct {
	*memStore
	queries [][]float32
}

func (s *indexedStore) StoreChunkEmbeddings(context.Context, string, []models.ChunkEmbedding) error {
	return nil
}

func (s *indexedStore) SearchDocumentChunks(_ context.Context, id string, vec []float32, limit int) ([]models.ChunkMatch, error) {
	s.queries = append(s.queries, vec)
	doc, _ := s.FindByID(context.Background(), id)
	var out []models.ChunkMatch
	for i, c := range doc.Chunks {
		if i == limit {
			break
		}
		out = append(out, models.ChunkMatch{DocumentID: id, Chunk: c, Distance: float64(i)})
	}
	return out, nil
}

type fakeObjects struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeObjects() *fakeObjects { return &fakeObjects{uploads: map[string][]byte{}} }

func (f *fakeObjects) UploadFile(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.uploads[key] = data
	return "https://bucket/" + key, nil
}

func (f *fakeObjects) DeleteFile(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) GetObjectReader(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.uploads[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeIngestor struct {
	queued []string
}

func (f *fakeIngestor) Start(context.Context, int) {}

func (f *fakeIngestor) Enqueue(docID string) bool {
	f.queued = append(f.queued, docID)
	return true
}

func (f *fakeIngestor) ProcessOne(context.Context, string) error { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

const testMaxSize = 1 << 20

func newTestService(t *testing.T, store core.DocumentStore, opts ...Option) *DocumentService {
	t.Helper()
	proc, err := ingestion.NewProcessor(ingestion.DefaultIngestConfig(), testLogger())
	require.NoError(t, err)
	return NewDocumentService(extraction.NewRegistry(testLogger()), proc, store, testMaxSize, testLogger(), opts...)
}

// sampleText is long enough to produce several chunks with the default settings.
func sampleText() string {
	var b strings.Builder
	b.WriteString("Field Notes on River Birds\n\n")
	for i := 0; i < 60; i++ {
		b.WriteString("The heron waits at the edge of the water and the river moves past it slowly. ")
	}
	return b.String()
}
