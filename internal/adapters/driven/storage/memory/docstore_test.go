package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		store := NewDocumentStore()
		doc := &domain.Document{ID: "doc-1", Title: "biology.pdf", State: domain.StateUploaded}

		require.NoError(t, store.SaveDocument(ctx, doc))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "biology.pdf", got.Title)
		assert.Equal(t, domain.StateUploaded, got.State)
	})

	t.Run("get missing", func(t *testing.T) {
		store := NewDocumentStore()
		_, err := store.GetDocument(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Title: "v1"}))
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Title: "v2"}))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Title)
	})

	t.Run("list ordered by creation time", func(t *testing.T) {
		store := NewDocumentStore()
		base := time.Now().UTC()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "b", CreatedAt: base.Add(time.Hour)}))
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a", CreatedAt: base}))

		docs, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].ID)
		assert.Equal(t, "b", docs[1].ID)
	})

	t.Run("mark indexed", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", State: domain.StateIngesting}))

		require.NoError(t, store.MarkIndexed(ctx, "doc-1", "loc-1", 12, "nomic-embed-text"))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StateIndexed, got.State)
		assert.Equal(t, "loc-1", got.IndexLocation)
		assert.Equal(t, 12, got.PassageCount)
		assert.Equal(t, "nomic-embed-text", got.EmbeddingModel)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("mark indexed clears previous failure", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
		require.NoError(t, store.MarkFailed(ctx, "doc-1", "backend down"))
		require.NoError(t, store.MarkIndexed(ctx, "doc-1", "loc-1", 3, "m"))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Empty(t, got.FailReason)
	})

	t.Run("mark failed", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", State: domain.StateIngesting}))

		require.NoError(t, store.MarkFailed(ctx, "doc-1", "nothing indexable"))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StateFailed, got.State)
		assert.Equal(t, "nothing indexable", got.FailReason)
	})

	t.Run("mark on missing document", func(t *testing.T) {
		store := NewDocumentStore()
		assert.ErrorIs(t, store.MarkIndexed(ctx, "missing", "loc", 1, "m"), domain.ErrNotFound)
		assert.ErrorIs(t, store.MarkFailed(ctx, "missing", "r"), domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))

		require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
		_, err := store.GetDocument(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
	})
}
