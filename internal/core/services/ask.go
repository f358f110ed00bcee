package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driving"
	"github.com/studyrag-labs/studyrag-cli/internal/index"
	"github.com/studyrag-labs/studyrag-cli/internal/logger"
	"github.com/studyrag-labs/studyrag-cli/internal/prompt"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 3

// Ensure Asker implements the interfaces.
var (
	_ driving.AskService      = (*Asker)(nil)
	_ driven.PromptStoreAware = (*Asker)(nil)
)

// Asker answers questions grounded in an indexed document, or from
// general knowledge when no document is named.
type Asker struct {
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
	embedder   driven.EmbeddingService
	generator  driven.Generator
	assembler  *prompt.Assembler
	topK       int

	// Loaded indexes, keyed by document ID. An index is immutable once
	// built, so cached entries never go stale; Delete evictions happen
	// through Invalidate.
	cacheMu sync.RWMutex
	cache   map[string]index.Searcher
}

// AskerOption configures the asker.
type AskerOption func(*Asker)

// WithTopK sets the number of passages retrieved per question.
func WithTopK(k int) AskerOption {
	return func(a *Asker) {
		if k > 0 {
			a.topK = k
		}
	}
}

// NewAsker creates a new asker.
func NewAsker(
	docStore driven.DocumentStore,
	indexStore driven.IndexStore,
	embedder driven.EmbeddingService,
	generator driven.Generator,
	opts ...AskerOption,
) *Asker {
	a := &Asker{
		docStore:   docStore,
		indexStore: indexStore,
		embedder:   embedder,
		generator:  generator,
		assembler:  prompt.New(),
		topK:       DefaultTopK,
		cache:      make(map[string]index.Searcher),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *Asker) SetPromptStore(store driven.PromptStore) {
	a.assembler.SetPromptStore(store)
}

// Ask returns the full generated answer together with the retrieved
// context it was grounded in.
func (a *Asker) Ask(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	contextText, err := a.retrieve(ctx, documentID, question)
	if err != nil {
		return nil, err
	}

	p := a.assembler.AnswerQuestion(contextText, question)
	text, err := a.generator.Complete(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{Text: text, Context: contextText}, nil
}

// AskStream streams the answer incrementally. When retrieval produced
// context, the first chunk carries it with an empty Delta; generated
// chunks follow in order. The channel closes after one terminal chunk.
func (a *Asker) AskStream(ctx context.Context, documentID, question string) (<-chan domain.AnswerChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	contextText, err := a.retrieve(ctx, documentID, question)
	if err != nil {
		return nil, err
	}

	p := a.assembler.AnswerQuestion(contextText, question)
	gen, err := a.generator.Stream(ctx, domain.GenerationRequest{Prompt: p})
	if err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}

	out := make(chan domain.AnswerChunk)
	go func() {
		defer close(out)

		if contextText != "" {
			select {
			case out <- domain.AnswerChunk{Context: contextText}:
			case <-ctx.Done():
				a.drain(gen)
				return
			}
		}

		for chunk := range gen {
			ac := domain.AnswerChunk{Delta: chunk.Delta, Done: chunk.Done, Err: chunk.Err}
			select {
			case out <- ac:
			case <-ctx.Done():
				a.drain(gen)
				return
			}
			if chunk.Terminal() {
				return
			}
		}
	}()

	return out, nil
}

// Invalidate evicts a document's index from the cache. Called after the
// document or its index is deleted.
func (a *Asker) Invalidate(documentID string) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	delete(a.cache, documentID)
}

// retrieve embeds the question and returns the concatenated top-k
// passage text. An empty documentID means general-knowledge mode and
// returns empty context without touching the stores.
func (a *Asker) retrieve(ctx context.Context, documentID, question string) (string, error) {
	if documentID == "" {
		return "", nil
	}

	doc, err := a.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	switch doc.State {
	case domain.StateIndexed:
	case domain.StateFailed:
		return "", fmt.Errorf("%w: %s", domain.ErrIngestFailed, doc.FailReason)
	default:
		return "", fmt.Errorf("%w: document %s is %s", domain.ErrIndexNotReady, documentID, doc.State)
	}

	searcher, err := a.searcher(ctx, doc)
	if err != nil {
		return "", err
	}

	query, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results := searcher.Search(query, a.topK)
	logger.Debug("Retrieved %d passages for document %s", len(results), documentID)

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Passage.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

// searcher returns the cached index for a document, loading it on miss.
func (a *Asker) searcher(ctx context.Context, doc *domain.Document) (index.Searcher, error) {
	a.cacheMu.RLock()
	s, ok := a.cache[doc.ID]
	a.cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	idx, err := a.indexStore.LoadIndex(ctx, doc.IndexLocation)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	s = index.NewFlat(idx)
	a.cacheMu.Lock()
	a.cache[doc.ID] = s
	a.cacheMu.Unlock()
	return s, nil
}

// drain consumes remaining generator chunks so the producer can exit.
func (a *Asker) drain(gen <-chan domain.GenerationChunk) {
	for range gen {
	}
}
