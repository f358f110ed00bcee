package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyrag-labs/studyrag-cli/internal/chunker"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/index"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor turns uploaded document text into a searchable index.
// It owns the document lifecycle: Uploaded, Ingesting, then Indexed or
// Failed. Indexed and Failed are terminal; re-ingesting a document ID
// replaces its record and index.
type Ingestor struct {
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
	embedder   driven.EmbeddingService
	splitter   *chunker.Splitter

	// Single-flight tracking per document ID.
	mu     sync.Mutex
	active map[string]struct{}
}

// NewIngestor creates a new ingestor.
func NewIngestor(
	docStore driven.DocumentStore,
	indexStore driven.IndexStore,
	embedder driven.EmbeddingService,
	splitter *chunker.Splitter,
) *Ingestor {
	return &Ingestor{
		docStore:   docStore,
		indexStore: indexStore,
		embedder:   embedder,
		splitter:   splitter,
		active:     make(map[string]struct{}),
	}
}

// Ingest chunks and embeds rawText under the given document ID.
// A second concurrent call for the same ID fails with
// domain.ErrIngestInProgress. Text with nothing indexable ends in
// StateFailed without an error; only backend and storage failures
// surface as errors.
func (s *Ingestor) Ingest(ctx context.Context, documentID, title, rawText string) (*domain.Document, error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	if err := s.acquire(documentID); err != nil {
		return nil, err
	}
	defer s.release(documentID)

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        documentID,
		Title:     title,
		State:     domain.StateUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	doc.State = domain.StateIngesting
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Section("Ingest")
	logger.Info("Ingesting document %s (%s)", documentID, title)

	passages := s.splitter.Split(documentID, rawText)
	if len(passages) == 0 {
		logger.Warn("Document %s has nothing indexable", documentID)
		if err := s.docStore.MarkFailed(ctx, documentID, "nothing indexable: no passage met the minimum length"); err != nil {
			return nil, fmt.Errorf("mark failed: %w", err)
		}
		return s.docStore.GetDocument(ctx, documentID)
	}
	logger.Debug("Split into %d passages", len(passages))

	idx, err := index.Build(ctx, documentID, passages, s.embedder)
	if err != nil {
		if markErr := s.docStore.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			logger.Warn("Failed to record ingest failure for %s: %v", documentID, markErr)
		}
		return nil, fmt.Errorf("build index: %w", err)
	}

	location := documentID
	if err := s.indexStore.SaveIndex(ctx, location, idx); err != nil {
		if markErr := s.docStore.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			logger.Warn("Failed to record ingest failure for %s: %v", documentID, markErr)
		}
		return nil, fmt.Errorf("save index: %w", err)
	}

	if err := s.docStore.MarkIndexed(ctx, documentID, location, len(passages), s.embedder.ModelName()); err != nil {
		return nil, fmt.Errorf("mark indexed: %w", err)
	}

	logger.Info("Indexed document %s: %d passages", documentID, len(passages))
	return s.docStore.GetDocument(ctx, documentID)
}

// Status returns the document's metadata record.
func (s *Ingestor) Status(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// acquire claims the single-flight slot for a document ID.
func (s *Ingestor) acquire(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[documentID]; busy {
		return fmt.Errorf("%w: document %s", domain.ErrIngestInProgress, documentID)
	}
	s.active[documentID] = struct{}{}
	return nil
}

// release frees the single-flight slot for a document ID.
func (s *Ingestor) release(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, documentID)
}
