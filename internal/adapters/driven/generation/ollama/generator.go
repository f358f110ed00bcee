// Package ollama provides a text generation adapter using Ollama.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/ratelimit"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s). It bounds the
	// whole request including streaming.
	Timeout time.Duration

	// RateLimit configures client-side request throttling.
	// Zero values use conservative defaults.
	RateLimit ratelimit.Config
}

// Generator produces text using the Ollama /api/generate endpoint.
// It streams natively; Complete issues a non-streaming request and
// lets the server buffer.
type Generator struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is one NDJSON object from /api/generate.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new Ollama generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: ratelimit.New(cfg.RateLimit),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Complete produces the full generation for a request.
func (g *Generator) Complete(ctx context.Context, req domain.GenerationRequest) (string, error) {
	resp, err := g.send(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrBackendUnavailable, err)
	}

	return genResp.Response, nil
}

// Stream produces chunks in generation order. The channel closes after
// exactly one terminal chunk.
func (g *Generator) Stream(ctx context.Context, req domain.GenerationRequest) (<-chan domain.GenerationChunk, error) {
	resp, err := g.send(ctx, req, true)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.GenerationChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		emit := func(c domain.GenerationChunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var genResp generateResponse
			if err := json.Unmarshal(line, &genResp); err != nil {
				emit(domain.GenerationChunk{Err: fmt.Sprintf("decode stream: %v", err)})
				return
			}

			if genResp.Done {
				emit(domain.GenerationChunk{Delta: genResp.Response, Done: true})
				return
			}

			if !emit(domain.GenerationChunk{Delta: genResp.Response}) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			emit(domain.GenerationChunk{Err: fmt.Sprintf("read stream: %v", err)})
			return
		}

		// The server ended the stream without a done marker.
		emit(domain.GenerationChunk{Err: "stream ended without completion"})
	}()

	return out, nil
}

// send issues a /api/generate request and returns the raw response.
// The caller owns the body.
func (g *Generator) send(ctx context.Context, req domain.GenerationRequest, stream bool) (*http.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := generateRequest{
		Model:  g.model,
		Prompt: req.Prompt,
		Stream: stream,
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		reqBody.Options = &options{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		g.limiter.RecordRateLimitError(0)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: ollama error (status %d)", domain.ErrBackendUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: ollama error (status %d): %s", domain.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	return resp, nil
}

// ModelName returns the name of the generation model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
