package driving

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// AskService answers natural-language questions, grounded in an indexed
// document when one is named, or from general knowledge when documentID
// is empty.
type AskService interface {
	// Ask returns the full generated answer together with the retrieved
	// context it was grounded in. Fails with domain.ErrIndexNotReady if
	// the document exists but has not finished ingesting.
	Ask(ctx context.Context, documentID, question string) (*domain.Answer, error)

	// AskStream streams the answer incrementally. When retrieval produced
	// context, the first chunk carries it; generated chunks follow in
	// order. The channel closes after one terminal chunk. Cancelling ctx
	// stops generation promptly.
	AskStream(ctx context.Context, documentID, question string) (<-chan domain.AnswerChunk, error)
}
