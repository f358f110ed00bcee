// Package gemini provides a text generation adapter using the Google
// Gemini API.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/ratelimit"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini generator.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public Gemini endpoint).
	BaseURL string

	// Model is the generation model to use (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 120s). It bounds the
	// whole request including streaming.
	Timeout time.Duration

	// RateLimit configures client-side request throttling.
	// Zero values use conservative defaults.
	RateLimit ratelimit.Config
}

// Generator produces text using the Gemini generateContent endpoints.
// Complete is native; Stream parses server-sent events from
// streamGenerateContent.
type Generator struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	baseURL string
	apiKey  string
	model   string
}

// generateContentRequest is the Gemini API request format.
type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generationConfig holds generation parameters.
type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateContentResponse is the Gemini API response format, shared by
// the blocking endpoint and each SSE event of the streaming endpoint.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// text concatenates the candidate parts of a response.
func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for _, p := range r.Candidates[0].Content.Parts {
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// finished reports whether the response carries a finish reason.
func (r *generateContentResponse) finished() bool {
	return len(r.Candidates) > 0 && r.Candidates[0].FinishReason != ""
}

// NewGenerator creates a new Gemini generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
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
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete produces the full generation for a request.
func (g *Generator) Complete(ctx context.Context, req domain.GenerationRequest) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)

	resp, err := g.send(ctx, url, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrBackendUnavailable, err)
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrBackendUnavailable, err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("%w: gemini error: %s", domain.ErrBackendUnavailable, genResp.Error.Message)
	}

	return genResp.text(), nil
}

// Stream produces chunks in generation order by parsing server-sent
// events. The channel closes after exactly one terminal chunk.
func (g *Generator) Stream(ctx context.Context, req domain.GenerationRequest) (<-chan domain.GenerationChunk, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.baseURL, g.model)

	resp, err := g.send(ctx, url, req)
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
			if !bytes.HasPrefix(line, []byte("data:")) {
				continue
			}
			data := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
			if len(data) == 0 {
				continue
			}

			var event generateContentResponse
			if err := json.Unmarshal(data, &event); err != nil {
				emit(domain.GenerationChunk{Err: fmt.Sprintf("decode stream: %v", err)})
				return
			}
			if event.Error != nil {
				emit(domain.GenerationChunk{Err: fmt.Sprintf("gemini error: %s", event.Error.Message)})
				return
			}

			if event.finished() {
				emit(domain.GenerationChunk{Delta: event.text(), Done: true})
				return
			}

			if !emit(domain.GenerationChunk{Delta: event.text()}) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			emit(domain.GenerationChunk{Err: fmt.Sprintf("read stream: %v", err)})
			return
		}

		// Some responses end the event stream without a finish reason.
		emit(domain.GenerationChunk{Done: true})
	}()

	return out, nil
}

// send issues a generation request and returns the raw response.
// The caller owns the body.
func (g *Generator) send(ctx context.Context, url string, req domain.GenerationRequest) (*http.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		g.limiter.RecordRateLimitError(retryAfter)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%w: gemini error (status %d)", domain.ErrBackendUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: gemini error (status %d): %s", domain.ErrBackendUnavailable, resp.StatusCode, string(body))
	}

	return resp, nil
}

// ModelName returns the name of the generation model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the service is reachable by listing models.
// This is a lightweight check that validates the API key without running inference.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("gemini: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
