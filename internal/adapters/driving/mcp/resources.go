package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docrag resources.
	uriScheme = "docrag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing indexed documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Documents in the vector index",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Static resource for listing chat sessions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Chat sessions, most recent first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	// Template for session transcripts.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session-messages",
		Description: "Messages of a chat session with detected personas and sources",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleDocumentsResource returns the indexed documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return jsonResult(req.Params.URI, []domain.IndexedDocument{})
	}

	docs, err := s.ports.Ingest.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	if docs == nil {
		docs = []domain.IndexedDocument{}
	}
	return jsonResult(req.Params.URI, docs)
}

// handleSessionsResource returns the chat sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessions, err := s.ports.Chat.Sessions(ctx)
	if errors.Is(err, domain.ErrHistoryUnavailable) {
		return jsonResult(req.Params.URI, []any{})
	}
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type sessionInfo struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Model     string `json:"model,omitempty"`
		UpdatedAt string `json:"updated_at"`
	}

	infos := make([]sessionInfo, len(sessions))
	for i, sess := range sessions {
		infos[i] = sessionInfo{
			ID:        sess.ID,
			Title:     sess.Title,
			Model:     sess.ModelName,
			UpdatedAt: sess.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleSessionResource returns the messages of one session.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	messages, err := s.ports.Chat.History(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrHistoryUnavailable) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	type messageInfo struct {
		Role    string             `json:"role"`
		Content string             `json:"content"`
		Mode    domain.Mode        `json:"mode,omitempty"`
		Sources []domain.SourceRef `json:"sources,omitempty"`
	}

	infos := make([]messageInfo, len(messages))
	for i, m := range messages {
		infos[i] = messageInfo{
			Role:    m.Role,
			Content: m.Content,
			Mode:    m.DetectedMode,
			Sources: m.Sources,
		}
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like docrag://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
