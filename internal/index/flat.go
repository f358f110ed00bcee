// Package index provides exact nearest-neighbour search over a
// document's passage embeddings.
//
// The flat index scans every stored vector per query: O(n*d) for n
// passages of dimension d. At per-document scale (tens to hundreds of
// passages) this beats any approximate structure; the Searcher
// interface lets one be substituted without touching callers.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Searcher answers top-k similarity queries over one document's passages.
type Searcher interface {
	// Search returns up to k passages ordered by descending cosine
	// similarity to the query vector. k is clamped to the number of
	// stored passages; an empty index returns an empty result.
	Search(query []float32, k int) []domain.Retrieved

	// Len returns the number of indexed passages.
	Len() int
}

// Ensure Flat implements the interface.
var _ Searcher = (*Flat)(nil)

// Flat is an exact brute-force cosine index over a DocumentIndex.
// It is immutable after construction and safe for concurrent readers.
type Flat struct {
	idx *domain.DocumentIndex
}

// NewFlat wraps a built DocumentIndex for searching.
func NewFlat(idx *domain.DocumentIndex) *Flat {
	return &Flat{idx: idx}
}

// Build embeds passages in order and assembles a DocumentIndex.
// Embeddings are requested in one batch; the backend must preserve
// input order. The returned index holds exactly one vector per passage.
func Build(ctx context.Context, documentID string, passages []domain.Passage, embedder driven.EmbeddingService) (*domain.DocumentIndex, error) {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embed passages: got %d vectors for %d passages", len(vectors), len(passages))
	}

	return &domain.DocumentIndex{
		DocumentID:     documentID,
		EmbeddingModel: embedder.ModelName(),
		Passages:       passages,
		Vectors:        vectors,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Search implements Searcher.
// Ties are broken by ascending passage index, which makes the ordering
// deterministic for repeated queries.
func (f *Flat) Search(query []float32, k int) []domain.Retrieved {
	n := len(f.idx.Passages)
	if n == 0 || k <= 0 {
		return []domain.Retrieved{}
	}
	if k > n {
		k = n
	}

	results := make([]domain.Retrieved, n)
	for i := range f.idx.Vectors {
		results[i] = domain.Retrieved{
			Passage:    f.idx.Passages[i],
			Similarity: Cosine(f.idx.Vectors[i], query),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Passage.Index < results[j].Passage.Index
	})

	return results[:k]
}

// Len implements Searcher.
func (f *Flat) Len() int {
	return len(f.idx.Passages)
}

// Cosine returns the cosine similarity dot(a,b) / (||a||*||b||).
// A zero-norm operand yields 0 rather than dividing by zero. Vectors of
// unequal length are compared over the shorter prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
