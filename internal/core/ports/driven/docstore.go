package driven

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// DocumentStore persists document metadata records.
// The store is treated as a durable key-value collection keyed by
// document ID; it never holds raw text or vectors.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all document records.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// MarkIndexed transitions a document to StateIndexed and records
	// where its index was persisted.
	MarkIndexed(ctx context.Context, id, indexLocation string, passageCount int, embeddingModel string) error

	// MarkFailed transitions a document to StateFailed with a reason.
	MarkFailed(ctx context.Context, id, reason string) error

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error
}

// IndexStore persists built document indexes.
// An index is written exactly once after a successful build and read
// on demand at query time; a partially written index must never be
// visible to loads.
type IndexStore interface {
	// SaveIndex persists an index at the given location.
	SaveIndex(ctx context.Context, location string, index *domain.DocumentIndex) error

	// LoadIndex reads an index from the given location.
	// Returns domain.ErrNotFound if nothing is stored there.
	LoadIndex(ctx context.Context, location string) (*domain.DocumentIndex, error)

	// DeleteIndex removes a persisted index.
	DeleteIndex(ctx context.Context, location string) error
}

// MockTestStore persists generated mock tests and graded submissions.
type MockTestStore interface {
	// SaveTest stores a generated mock test.
	SaveTest(ctx context.Context, test *domain.MockTest) error

	// GetTest retrieves a mock test by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetTest(ctx context.Context, testID string) (*domain.MockTest, error)

	// ListTests returns all stored mock tests, newest first.
	ListTests(ctx context.Context) ([]domain.MockTest, error)

	// SaveReport stores a graded submission report.
	SaveReport(ctx context.Context, report *domain.TestReport) error

	// ListReports returns all reports for a test, newest first.
	ListReports(ctx context.Context, testID string) ([]domain.TestReport, error)
}
