package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Ensure MockTestStore implements the interface.
var _ driven.MockTestStore = (*MockTestStore)(nil)

// MockTestStore is an in-memory implementation of driven.MockTestStore.
type MockTestStore struct {
	mu      sync.RWMutex
	tests   map[string]domain.MockTest
	reports map[string][]domain.TestReport
}

// NewMockTestStore creates a new in-memory mock test store.
func NewMockTestStore() *MockTestStore {
	return &MockTestStore{
		tests:   make(map[string]domain.MockTest),
		reports: make(map[string][]domain.TestReport),
	}
}

// SaveTest stores a generated mock test.
func (s *MockTestStore) SaveTest(_ context.Context, test *domain.MockTest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[test.TestID] = *test
	return nil
}

// GetTest retrieves a mock test by ID.
func (s *MockTestStore) GetTest(_ context.Context, testID string) (*domain.MockTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	test, ok := s.tests[testID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &test, nil
}

// ListTests returns all stored mock tests, newest first.
func (s *MockTestStore) ListTests(_ context.Context) ([]domain.MockTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.MockTest, 0, len(s.tests))
	for id := range s.tests {
		result = append(result, s.tests[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].TestID < result[j].TestID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// SaveReport stores a graded submission report.
func (s *MockTestStore) SaveReport(_ context.Context, report *domain.TestReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.TestID] = append(s.reports[report.TestID], *report)
	return nil
}

// ListReports returns all reports for a test, newest first.
func (s *MockTestStore) ListReports(_ context.Context, testID string) ([]domain.TestReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]domain.TestReport, len(s.reports[testID]))
	copy(reports, s.reports[testID])
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}
