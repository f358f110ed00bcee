package domain

import "time"

// IngestState tracks a document through the ingestion lifecycle.
// Indexed and Failed are terminal.
type IngestState string

const (
	// StateUploaded means raw text has been received but not processed.
	StateUploaded IngestState = "uploaded"

	// StateIngesting means chunking and embedding are in progress.
	StateIngesting IngestState = "ingesting"

	// StateIndexed means the document is searchable.
	StateIndexed IngestState = "indexed"

	// StateFailed means ingestion failed; FailReason holds the cause.
	StateFailed IngestState = "failed"
)

// Document represents an uploaded document's metadata record.
// The raw text and the built index are stored separately; this record
// tracks provenance and lifecycle state.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title (e.g., original filename).
	Title string

	// State is the current ingestion state.
	State IngestState

	// FailReason holds the failure cause when State is StateFailed.
	FailReason string

	// PassageCount is the number of passages extracted at ingestion.
	PassageCount int

	// EmbeddingModel identifies the model that produced the index vectors.
	// A query must be embedded with the same model.
	EmbeddingModel string

	// IndexLocation is where the built DocumentIndex is persisted.
	IndexLocation string

	// CreatedAt is when the document was first uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the record last changed state.
	UpdatedAt time.Time
}

// Passage is the unit of retrieval: one chunk of a document's text.
// Passages are immutable once created.
type Passage struct {
	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the ordinal position within the document, starting at 0.
	Index int

	// Text is the normalised passage text. Never empty.
	Text string
}

// DocumentIndex owns the passages of one document and their embedding
// vectors, aligned by position: Vectors[i] embeds Passages[i].
// It is never mutated after being built; rebuilding produces a new index.
type DocumentIndex struct {
	// DocumentID is the owning document.
	DocumentID string

	// EmbeddingModel identifies the model that produced Vectors.
	EmbeddingModel string

	// Passages are the retrievable chunks, in source order.
	Passages []Passage

	// Vectors are the passage embeddings, parallel to Passages.
	Vectors [][]float32

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}

// Retrieved is one passage matched by a similarity search.
type Retrieved struct {
	// Passage is the matched passage.
	Passage Passage

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64
}
