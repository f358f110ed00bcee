package driving

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// IngestService turns uploaded document text into a searchable index.
type IngestService interface {
	// Ingest chunks and embeds rawText under the given document ID and
	// returns the resulting metadata record (StateIndexed on success).
	// A second concurrent call for the same ID fails with
	// domain.ErrIngestInProgress. Empty rawText, or text where every
	// fragment is below the minimum passage length, yields StateFailed
	// with a "nothing indexable" reason rather than an error.
	Ingest(ctx context.Context, documentID, title, rawText string) (*domain.Document, error)

	// Status returns the document's metadata record.
	Status(ctx context.Context, documentID string) (*domain.Document, error)
}

// DocumentService manages uploaded documents.
type DocumentService interface {
	// List returns all document records.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document record by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document record and its persisted index.
	Delete(ctx context.Context, documentID string) error
}
