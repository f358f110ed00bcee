package services

import (
	"context"
	"fmt"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
)

// Ensure DocumentManager implements the interface.
var _ driving.DocumentService = (*DocumentManager)(nil)

// DocumentManager manages uploaded document records and their indexes.
type DocumentManager struct {
	docStore   driven.DocumentStore
	indexStore driven.IndexStore

	// onDelete is notified after a document is removed, so cached
	// indexes can be evicted. Optional.
	onDelete func(documentID string)
}

// NewDocumentManager creates a new document manager.
// onDelete may be nil.
func NewDocumentManager(docStore driven.DocumentStore, indexStore driven.IndexStore, onDelete func(documentID string)) *DocumentManager {
	return &DocumentManager{
		docStore:   docStore,
		indexStore: indexStore,
		onDelete:   onDelete,
	}
}

// List returns all document records.
func (m *DocumentManager) List(ctx context.Context) ([]domain.Document, error) {
	return m.docStore.ListDocuments(ctx)
}

// Get retrieves a document record by ID.
func (m *DocumentManager) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return m.docStore.GetDocument(ctx, documentID)
}

// Delete removes a document record and its persisted index.
// The index is removed first so a re-created document never sees a
// stale index at the same location.
func (m *DocumentManager) Delete(ctx context.Context, documentID string) error {
	doc, err := m.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if doc.IndexLocation != "" {
		if err := m.indexStore.DeleteIndex(ctx, doc.IndexLocation); err != nil {
			logger.Warn("Failed to delete index for %s: %v", documentID, err)
		}
	}

	if err := m.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if m.onDelete != nil {
		m.onDelete(documentID)
	}
	return nil
}
