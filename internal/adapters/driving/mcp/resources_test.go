package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "studyrag://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "missing document ID",
			uri:      "studyrag://documents/",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document list", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{
				{
					ID:             "bio-101",
					Title:          "Biology Notes",
					State:          domain.StateIndexed,
					PassageCount:   12,
					EmbeddingModel: "nomic-embed-text",
				},
			},
		}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Document: mockDocs})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://documents"},
		}
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "bio-101")
		assert.Contains(t, result.Contents[0].Text, "Biology Notes")
		assert.Contains(t, result.Contents[0].Text, "indexed")
	})

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://documents"},
		}
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDocs := &mockDocumentService{err: errors.New("store down")}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Document: mockDocs})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://documents"},
		}
		_, err = server.handleDocumentsResource(ctx, req)
		require.Error(t, err)
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document metadata", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			document: &domain.Document{
				ID:         "bio-101",
				Title:      "Biology Notes",
				State:      domain.StateFailed,
				FailReason: "nothing indexable: no passage met the minimum length",
			},
		}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Document: mockDocs})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://documents/bio-101"},
		}
		result, err := server.handleDocumentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "failed")
		assert.Contains(t, result.Contents[0].Text, "nothing indexable")
	})

	t.Run("malformed URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Document: &mockDocumentService{}})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://other/bio-101"},
		}
		_, err = server.handleDocumentResource(ctx, req)
		require.Error(t, err)
	})

	t.Run("nil document service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "studyrag://documents/bio-101"},
		}
		_, err = server.handleDocumentResource(ctx, req)
		require.Error(t, err)
	})
}
