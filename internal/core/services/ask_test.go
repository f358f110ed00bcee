package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// seedIndexedDocument stores an indexed document whose passages embed to
// known vectors, so retrieval order is predictable.
func seedIndexedDocument(t *testing.T, docs *mockDocStore, indexes *mockIndexStore, embedder *mockEmbedder) {
	t.Helper()

	passages := []domain.Passage{
		{DocumentID: "doc-1", Index: 0, Text: "chloroplasts capture light energy"},
		{DocumentID: "doc-1", Index: 1, Text: "mitochondria release stored energy"},
		{DocumentID: "doc-1", Index: 2, Text: "the cell wall provides structure"},
	}
	embedder.vectors["chloroplasts capture light energy"] = []float32{1, 0, 0}
	embedder.vectors["mitochondria release stored energy"] = []float32{0, 1, 0}
	embedder.vectors["the cell wall provides structure"] = []float32{0, 0, 1}

	require.NoError(t, indexes.SaveIndex(context.Background(), "doc-1", &domain.DocumentIndex{
		DocumentID:     "doc-1",
		EmbeddingModel: "mock-embed",
		Passages:       passages,
		Vectors: [][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, docs.SaveDocument(context.Background(), &domain.Document{
		ID:             "doc-1",
		Title:          "biology.pdf",
		State:          domain.StateIndexed,
		PassageCount:   3,
		EmbeddingModel: "mock-embed",
		IndexLocation:  "doc-1",
	}))
}

func TestAsk(t *testing.T) {
	t.Run("answers grounded in retrieved context", func(t *testing.T) {
		docs := newMockDocStore()
		indexes := newMockIndexStore()
		embedder := newMockEmbedder()
		seedIndexedDocument(t, docs, indexes, embedder)

		embedder.vectors["what captures light?"] = []float32{1, 0, 0}
		gen := &mockGenerator{response: "Chloroplasts capture light."}
		asker := NewAsker(docs, indexes, embedder, gen, WithTopK(1))

		answer, err := asker.Ask(context.Background(), "doc-1", "what captures light?")
		require.NoError(t, err)

		assert.Equal(t, "Chloroplasts capture light.", answer.Text)
		assert.Equal(t, "chloroplasts capture light energy", answer.Context)
	})

	t.Run("general knowledge mode skips retrieval", func(t *testing.T) {
		gen := &mockGenerator{response: "General answer."}
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), gen)

		answer, err := asker.Ask(context.Background(), "", "what is osmosis?")
		require.NoError(t, err)
		assert.Equal(t, "General answer.", answer.Text)
		assert.Empty(t, answer.Context)
	})

	t.Run("empty question is invalid", func(t *testing.T) {
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), &mockGenerator{})

		_, err := asker.Ask(context.Background(), "", "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown document", func(t *testing.T) {
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), &mockGenerator{})

		_, err := asker.Ask(context.Background(), "missing", "question?")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("document still ingesting", func(t *testing.T) {
		docs := newMockDocStore()
		require.NoError(t, docs.SaveDocument(context.Background(), &domain.Document{
			ID:    "doc-1",
			State: domain.StateIngesting,
		}))
		asker := NewAsker(docs, newMockIndexStore(), newMockEmbedder(), &mockGenerator{})

		_, err := asker.Ask(context.Background(), "doc-1", "question?")
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	})

	t.Run("document failed ingestion", func(t *testing.T) {
		docs := newMockDocStore()
		require.NoError(t, docs.SaveDocument(context.Background(), &domain.Document{
			ID:         "doc-1",
			State:      domain.StateFailed,
			FailReason: "nothing indexable",
		}))
		asker := NewAsker(docs, newMockIndexStore(), newMockEmbedder(), &mockGenerator{})

		_, err := asker.Ask(context.Background(), "doc-1", "question?")
		assert.ErrorIs(t, err, domain.ErrIngestFailed)
	})

	t.Run("generator failure surfaces", func(t *testing.T) {
		gen := &mockGenerator{completeErr: errors.New("backend down")}
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), gen)

		_, err := asker.Ask(context.Background(), "", "question?")
		assert.ErrorContains(t, err, "backend down")
	})
}

func TestAskStream(t *testing.T) {
	t.Run("context arrives first then deltas then done", func(t *testing.T) {
		docs := newMockDocStore()
		indexes := newMockIndexStore()
		embedder := newMockEmbedder()
		seedIndexedDocument(t, docs, indexes, embedder)

		embedder.vectors["what captures light?"] = []float32{1, 0, 0}
		gen := &mockGenerator{response: "ok"}
		asker := NewAsker(docs, indexes, embedder, gen, WithTopK(1))

		ch, err := asker.AskStream(context.Background(), "doc-1", "what captures light?")
		require.NoError(t, err)

		var chunks []domain.AnswerChunk
		for chunk := range ch {
			chunks = append(chunks, chunk)
		}

		require.NotEmpty(t, chunks)
		assert.Equal(t, "chloroplasts capture light energy", chunks[0].Context)
		assert.Empty(t, chunks[0].Delta)

		var text strings.Builder
		for _, c := range chunks[1:] {
			text.WriteString(c.Delta)
		}
		assert.Equal(t, "ok", text.String())

		last := chunks[len(chunks)-1]
		assert.True(t, last.Done)
		for _, c := range chunks[:len(chunks)-1] {
			assert.False(t, c.Done)
			assert.Empty(t, c.Err)
		}
	})

	t.Run("no context chunk in general mode", func(t *testing.T) {
		gen := &mockGenerator{response: "hi"}
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), gen)

		ch, err := asker.AskStream(context.Background(), "", "question?")
		require.NoError(t, err)

		var chunks []domain.AnswerChunk
		for chunk := range ch {
			chunks = append(chunks, chunk)
		}
		require.NotEmpty(t, chunks)
		assert.Empty(t, chunks[0].Context)
	})

	t.Run("stream start failure surfaces", func(t *testing.T) {
		gen := &mockGenerator{streamErr: errors.New("connect refused")}
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), gen)

		_, err := asker.AskStream(context.Background(), "", "question?")
		assert.ErrorContains(t, err, "connect refused")
	})

	t.Run("cancellation closes the channel", func(t *testing.T) {
		gen := &mockGenerator{response: strings.Repeat("a", 1000)}
		asker := NewAsker(newMockDocStore(), newMockIndexStore(), newMockEmbedder(), gen)

		ctx, cancel := context.WithCancel(context.Background())
		ch, err := asker.AskStream(ctx, "", "question?")
		require.NoError(t, err)

		<-ch
		cancel()

		// The channel must close promptly even though we stop reading
		// mid-stream.
		deadline := time.After(2 * time.Second)
		for {
			select {
			case _, open := <-ch:
				if !open {
					return
				}
			case <-deadline:
				t.Fatal("stream did not close after cancellation")
			}
		}
	})
}

func TestAskerCache(t *testing.T) {
	docs := newMockDocStore()
	indexes := newMockIndexStore()
	embedder := newMockEmbedder()
	seedIndexedDocument(t, docs, indexes, embedder)

	gen := &mockGenerator{response: "answer"}
	asker := NewAsker(docs, indexes, embedder, gen)

	_, err := asker.Ask(context.Background(), "doc-1", "question?")
	require.NoError(t, err)

	// Second ask must hit the cache, not the store.
	indexes.loadErr = errors.New("store should not be touched")
	_, err = asker.Ask(context.Background(), "doc-1", "another question?")
	require.NoError(t, err)

	// After invalidation the store is consulted again.
	asker.Invalidate("doc-1")
	_, err = asker.Ask(context.Background(), "doc-1", "third question?")
	assert.ErrorContains(t, err, "store should not be touched")
}
