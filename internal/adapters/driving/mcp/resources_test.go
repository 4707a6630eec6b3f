package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid URI",
			uri:      "docrag://sessions/sess-123",
			expected: "sess-123",
		},
		{
			name:     "nested path",
			uri:      "docrag://sessions/sess-123/extra",
			expected: "",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/sess-123",
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
			result := extractSessionID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil ingest service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		ingest := &mockIngestService{
			documents: []domain.IndexedDocument{
				{DocumentID: "doc-1", FileName: "README.md", Segments: 3},
			},
		}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Ingest: ingest})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"document_id": "doc-1"`)
		assert.Contains(t, result.Contents[0].Text, "README.md")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ingest := &mockIngestService{err: errors.New("storage error")}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Ingest: ingest})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sessions", func(t *testing.T) {
		chat := &mockChatService{
			sessions: []domain.ChatSession{{
				ID:        "sess-1",
				Title:     "Why does the loader crash?",
				ModelName: "llama3.2",
				UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}},
		}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("docrag://sessions"))

		require.NoError(t, err)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "sess-1"`)
		assert.Contains(t, text, "Why does the loader crash?")
		assert.Contains(t, text, "2026-01-02T03:04:05Z")
	})

	t.Run("history unavailable returns empty list", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrHistoryUnavailable}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("docrag://sessions"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		chat := &mockChatService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, err = server.handleSessionsResource(ctx, makeReadResourceRequest("docrag://sessions"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sessions")
	})
}

func TestServer_handleSessionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns messages", func(t *testing.T) {
		chat := &mockChatService{
			messages: []domain.ChatMessage{
				{Role: domain.RoleUser, Content: "explain the loader"},
				{
					Role:         domain.RoleAssistant,
					Content:      "It reads files.",
					DetectedMode: domain.ModeCodeArchitect,
					Sources:      []domain.SourceRef{{DocumentID: "doc-1", FileName: "loader.py"}},
				},
			},
		}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		result, err := server.handleSessionResource(ctx, makeReadResourceRequest("docrag://sessions/sess-7"))

		require.NoError(t, err)
		assert.Equal(t, "sess-7", chat.lastSession)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"mode": "CODE_ARCHITECT"`)
		assert.Contains(t, text, "loader.py")
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{}})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("docrag://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("unknown session returns not found", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("docrag://sessions/missing"))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "loading session")
	})

	t.Run("wraps other errors", func(t *testing.T) {
		chat := &mockChatService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("docrag://sessions/sess-1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading session")
	})
}
