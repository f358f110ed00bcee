package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// --- Shared mock implementations for service testing ---

// mockDocStore implements driven.DocumentStore in memory. It records
// every state a document is saved or marked with, in order.
type mockDocStore struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	states  []domain.IngestState
	saveErr error
	markErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]domain.Document)}
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	m.states = append(m.states, doc.State)
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDocStore) MarkIndexed(_ context.Context, id, indexLocation string, passageCount int, embeddingModel string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.State = domain.StateIndexed
	doc.IndexLocation = indexLocation
	doc.PassageCount = passageCount
	doc.EmbeddingModel = embeddingModel
	doc.UpdatedAt = time.Now().UTC()
	m.docs[id] = doc
	m.states = append(m.states, doc.State)
	return nil
}

func (m *mockDocStore) MarkFailed(_ context.Context, id, reason string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.State = domain.StateFailed
	doc.FailReason = reason
	doc.UpdatedAt = time.Now().UTC()
	m.docs[id] = doc
	m.states = append(m.states, doc.State)
	return nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// mockIndexStore implements driven.IndexStore in memory.
type mockIndexStore struct {
	mu      sync.Mutex
	indexes map[string]*domain.DocumentIndex
	saveErr error
	loadErr error
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{indexes: make(map[string]*domain.DocumentIndex)}
}

func (m *mockIndexStore) SaveIndex(_ context.Context, location string, idx *domain.DocumentIndex) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[location] = idx
	return nil
}

func (m *mockIndexStore) LoadIndex(_ context.Context, location string) (*domain.DocumentIndex, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indexes[location]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return idx, nil
}

func (m *mockIndexStore) DeleteIndex(_ context.Context, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, location)
	return nil
}

// mockTestStore implements driven.MockTestStore in memory.
type mockTestStore struct {
	mu      sync.Mutex
	tests   map[string]domain.MockTest
	reports map[string][]domain.TestReport
	saveErr error
}

func newMockTestStore() *mockTestStore {
	return &mockTestStore{
		tests:   make(map[string]domain.MockTest),
		reports: make(map[string][]domain.TestReport),
	}
}

func (m *mockTestStore) SaveTest(_ context.Context, test *domain.MockTest) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[test.TestID] = *test
	return nil
}

func (m *mockTestStore) GetTest(_ context.Context, testID string) (*domain.MockTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	test, ok := m.tests[testID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &test, nil
}

func (m *mockTestStore) ListTests(_ context.Context) ([]domain.MockTest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MockTest, 0, len(m.tests))
	for _, test := range m.tests {
		out = append(out, test)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockTestStore) SaveReport(_ context.Context, report *domain.TestReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.TestID] = append(m.reports[report.TestID], *report)
	return nil
}

func (m *mockTestStore) ListReports(_ context.Context, testID string) ([]domain.TestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports[testID], nil
}

// mockEmbedder implements driven.EmbeddingService with canned vectors.
// Unknown texts get the default vector.
type mockEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	embedErr   error
	batchErr   error
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:    make(map[string][]float32),
		defaultVec: []float32{1, 0, 0},
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.defaultVec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockGenerator implements driven.Generator with a canned response.
// Stream splits the response into word-sized chunks.
type mockGenerator struct {
	response    string
	completeErr error
	streamErr   error
}

func (m *mockGenerator) Complete(_ context.Context, _ domain.GenerationRequest) (string, error) {
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.response, nil
}

func (m *mockGenerator) Stream(ctx context.Context, _ domain.GenerationRequest) (<-chan domain.GenerationChunk, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}

	out := make(chan domain.GenerationChunk)
	go func() {
		defer close(out)
		for _, r := range m.response {
			select {
			case out <- domain.GenerationChunk{Delta: string(r)}:
			case <-ctx.Done():
				return
			}
		}
		out <- domain.GenerationChunk{Done: true}
	}()
	return out, nil
}

func (m *mockGenerator) ModelName() string            { return "mock-gen" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }
