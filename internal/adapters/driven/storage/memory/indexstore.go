package memory

import (
	"context"
	"sync"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Saves replace atomically under the lock, so a load never observes a
// partially written index.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.DocumentIndex
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		indexes: make(map[string]*domain.DocumentIndex),
	}
}

// SaveIndex persists an index at the given location.
func (s *IndexStore) SaveIndex(_ context.Context, location string, index *domain.DocumentIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[location] = index
	return nil
}

// LoadIndex reads an index from the given location.
func (s *IndexStore) LoadIndex(_ context.Context, location string) (*domain.DocumentIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index, ok := s.indexes[location]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return index, nil
}

// DeleteIndex removes a persisted index.
func (s *IndexStore) DeleteIndex(_ context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, location)
	return nil
}
