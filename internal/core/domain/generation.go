package domain

// GenerationRequest describes one call to a generation backend.
// It is immutable and transient.
type GenerationRequest struct {
	// Prompt is the fully assembled prompt text.
	Prompt string

	// MaxTokens caps the generated output. Zero means backend default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// GenerationChunk is the unit of a streaming generation response.
// A stream delivers chunks in order and terminates exactly once: either
// with Done set (possibly alongside an empty Delta) or with Err set.
// No chunks follow a terminal chunk.
type GenerationChunk struct {
	// Delta is the incremental text produced since the previous chunk.
	Delta string

	// Done marks the final chunk of a successful stream.
	Done bool

	// Err carries a transport or backend failure that ended the stream.
	Err string
}

// Terminal reports whether no further chunks follow this one.
func (c GenerationChunk) Terminal() bool {
	return c.Done || c.Err != ""
}

// Answer is the result of a non-streaming ask operation.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Context is the concatenated retrieved passage text used as
	// grounding, empty in general-knowledge mode.
	Context string
}

// AnswerChunk is the unit of a streaming ask response. When retrieval
// produced context, the first chunk carries it in Context with an empty
// Delta; generated-token chunks follow in generator order.
type AnswerChunk struct {
	// Context is the retrieved passage text, set only on the first chunk.
	Context string

	// Delta is the incremental generated text.
	Delta string

	// Done marks the final chunk of a successful stream.
	Done bool

	// Err carries a failure that ended the stream.
	Err string
}
