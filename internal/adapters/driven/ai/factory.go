// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/embedding/openai"
	geminigen "github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/generation/gemini"
	ollamagen "github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/generation/ollama"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderGemini:
		// Gemini is a generation backend here; embeddings come from Ollama or OpenAI.
		return nil, fmt.Errorf("gemini is not supported for embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerator creates the appropriate generation backend based on settings.
// Returns nil if the provider is not configured.
func CreateGenerator(settings *domain.GenerationSettings) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaGenerator(settings), nil

	case domain.AIProviderGemini:
		return createGeminiGenerator(settings)

	case domain.AIProviderOpenAI:
		return nil, fmt.Errorf("openai is not supported for generation, use ollama or gemini")

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'studyrag config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'studyrag config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerator creates a generation backend and validates connectivity.
// Returns the generator if successful, or an error with guidance.
func CreateAndValidateGenerator(settings *domain.GenerationSettings) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	gen, err := CreateGenerator(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'studyrag config' to fix",
			domain.ErrGeneratorUnavailable, err)
	}

	if gen == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := gen.Ping(ctx); err != nil {
		gen.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'studyrag config' to fix",
			domain.ErrGeneratorUnavailable, err)
	}

	return gen, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaGenerator creates an Ollama generator.
func createOllamaGenerator(settings *domain.GenerationSettings) driven.Generator {
	return ollamagen.NewGenerator(ollamagen.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createGeminiGenerator creates a Gemini generator.
func createGeminiGenerator(settings *domain.GenerationSettings) (driven.Generator, error) {
	return geminigen.NewGenerator(geminigen.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
