package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

func TestRequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestCompleteParsesCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Equal(t, "Explain osmosis.", req.Contents[0].Parts[0].Text)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": "Osmosis is the movement "},
						{"text": "of water across a membrane."},
					},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	defer gen.Close()

	text, err := gen.Complete(context.Background(), domain.GenerationRequest{Prompt: "Explain osmosis."})
	require.NoError(t, err)
	assert.Equal(t, "Osmosis is the movement of water across a membrane.", text)
}

func TestCompleteAPIErrorWrapsBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = gen.Complete(context.Background(), domain.GenerationRequest{Prompt: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "API key not valid")
}

func sseEvent(text, finishReason string) string {
	candidate := map[string]any{
		"content": map[string]any{
			"parts": []map[string]any{{"text": text}},
		},
	}
	if finishReason != "" {
		candidate["finishReason"] = finishReason
	}
	data, _ := json.Marshal(map[string]any{"candidates": []any{candidate}})
	return "data: " + string(data) + "\n\n"
}

func TestStreamParsesServerSentEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":streamGenerateContent"))
		require.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, sseEvent("The mitochondria ", ""))
		flusher.Flush()
		fmt.Fprint(w, sseEvent("is the powerhouse.", "STOP"))
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	chunks, err := gen.Stream(context.Background(), domain.GenerationRequest{Prompt: "q"})
	require.NoError(t, err)

	var text strings.Builder
	var terminals int
	for chunk := range chunks {
		text.WriteString(chunk.Delta)
		if chunk.Terminal() {
			terminals++
			assert.True(t, chunk.Done)
		}
	}

	assert.Equal(t, "The mitochondria is the powerhouse.", text.String())
	assert.Equal(t, 1, terminals)
}

func TestStreamEndsWithoutFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseEvent("partial answer", ""))
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	chunks, err := gen.Stream(context.Background(), domain.GenerationRequest{Prompt: "q"})
	require.NoError(t, err)

	var last domain.GenerationChunk
	var deltas []string
	for chunk := range chunks {
		if chunk.Delta != "" {
			deltas = append(deltas, chunk.Delta)
		}
		last = chunk
	}

	assert.Equal(t, []string{"partial answer"}, deltas)
	assert.True(t, last.Done)
}

func TestStreamErrorEventEndsWithErrChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		data, _ := json.Marshal(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
		fmt.Fprintf(w, "data: %s\n\n", data)
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	chunks, err := gen.Stream(context.Background(), domain.GenerationRequest{Prompt: "q"})
	require.NoError(t, err)

	var last domain.GenerationChunk
	for chunk := range chunks {
		last = chunk
	}
	assert.Contains(t, last.Err, "quota exceeded")
	assert.False(t, last.Done)
}

func TestPingSendsKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	require.NoError(t, gen.Ping(context.Background()))
}
