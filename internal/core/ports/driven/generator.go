package driven

import (
	"context"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// Generator is a text generation backend. Every implementation supports
// both blocking completion and incremental streaming: a natively
// streaming backend buffers for Complete, and a natively blocking
// backend wraps its answer in a single chunk followed by a final chunk
// for Stream.
//
// The generator never retries on its own; callers decide.
//
// Implementations may include:
//   - Ollama (/api/generate, NDJSON streaming)
//   - Gemini (generateContent / streamGenerateContent)
type Generator interface {
	// Complete produces the full generation for a request.
	// Transport or backend failures surface as an error wrapping
	// domain.ErrBackendUnavailable.
	Complete(ctx context.Context, req domain.GenerationRequest) (string, error)

	// Stream produces chunks in generation order on the returned channel.
	// The channel is closed after exactly one terminal chunk: Done on
	// success, or Err on failure. Cancelling ctx stops production and
	// releases the underlying connection; the channel is then closed
	// promptly even if the caller stops receiving.
	Stream(ctx context.Context, req domain.GenerationRequest) (<-chan domain.GenerationChunk, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
