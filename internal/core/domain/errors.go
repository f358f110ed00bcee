package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Reported to the caller immediately, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotReady indicates a query arrived before the document
	// finished ingesting. Retryable by the caller after a delay.
	ErrIndexNotReady = errors.New("document index not ready")

	// ErrIngestInProgress indicates an ingestion is already running for
	// this document ID. A second concurrent request is rejected rather
	// than allowed to race.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrIngestFailed indicates the document's last ingestion failed.
	ErrIngestFailed = errors.New("ingestion failed")

	// ErrBackendUnavailable indicates the embedding or generation backend
	// is unreachable or misconfigured. Surfaced distinctly so callers can
	// show a "service unavailable" state.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and document-grounded questions are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the generation backend is not
	// configured. Question answering and exam features are disabled.
	ErrGeneratorUnavailable = errors.New("generation backend unavailable")
)
