package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/models"
)

// newMongoStore connects to MONGODB_TEST_URI using a throwaway database that is
// dropped when the test ends.
func newMongoStore(t *testing.T) *MongoClient {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	c, err := NewMongoClient(ctx, uri, "content_test_"+uuid.NewString()[:8], testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.coll.Database().Drop(context.Background())
		_ = c.Close()
	})
	return c
}

func TestMongo_SaveAndFind(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()
	uploaded := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := sampleDocument("doc-1", strPtr("u1"), uploaded)

	id, err := store.Save(ctx, doc)
	require.NoError(t, err)

	got, err := store.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Chunks, got.Chunks)
	assert.True(t, uploaded.Equal(got.UploadedAt))

	missing, err := store.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMongo_ListByUserProjectsSummaries(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older := sampleDocument("older", strPtr("u1"), base)
	newer := sampleDocument("newer", strPtr("u1"), base.Add(time.Hour))
	newer.Chunks = newer.Chunks[:1]
	other := sampleDocument("other", strPtr("u2"), base.Add(2*time.Hour))
	bare := sampleDocument("bare", nil, base.Add(3*time.Hour))
	bare.Chunks = nil
	for _, d := range []*models.Document{older, newer, other, bare} {
		_, err := store.Save(ctx, d)
		require.NoError(t, err)
	}

	got, err := store.ListByUser(ctx, strPtr("u1"), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].ID)
	assert.Equal(t, 1, got[0].ChunksCount)
	assert.Equal(t, "older", got[1].ID)
	assert.Equal(t, 2, got[1].ChunksCount)
	assert.Equal(t, older.Metadata, got[1].Metadata)
	assert.Equal(t, models.StatusCompleted, got[1].Status)

	all, err := store.ListByUser(ctx, nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "other", all[0].ID)
	assert.Equal(t, "newer", all[1].ID)

	first, err := store.ListByUser(ctx, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "bare", first[0].ID)
	assert.Equal(t, 0, first[0].ChunksCount)

	none, err := store.ListByUser(ctx, strPtr("nobody"), 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMongo_UpdateAndDelete(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()
	doc := sampleDocument("doc-1", nil, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	doc.Chunks = nil
	doc.Status = models.StatusProcessing
	_, err := store.Save(ctx, doc)
	require.NoError(t, err)

	processed := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	err = store.Update(ctx, "doc-1", models.DocumentUpdate{
		Chunks:      []models.DocumentChunk{{Index: 0, Content: "Only chunk.", EndPosition: 11, WordCount: 2, CharacterCount: 11}},
		Summary:     "Only chunk.",
		ProcessedAt: processed,
		Status:      models.StatusCompleted,
	})
	require.NoError(t, err)

	got, err := store.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Chunks, 1)
	assert.Equal(t, "Only chunk.", got.Summary)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, processed.Equal(*got.ProcessedAt))

	err = store.Update(ctx, "missing", models.DocumentUpdate{Status: models.StatusCompleted, ProcessedAt: processed})
	assert.ErrorIs(t, err, core.ErrNotFound)

	deleted, err := store.DeleteByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = store.DeleteByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
