package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// AskRequest is a question to answer.
type AskRequest struct {
	// SessionID continues an existing session. Empty starts a new one.
	SessionID string

	// Query is the user's question.
	Query string

	// Limit overrides the retrieval limit when > 0.
	Limit int

	// OnToken, when set, receives the answer incrementally.
	OnToken func(string) error
}

// AskResponse is the answer to a question.
type AskResponse struct {
	SessionID string              `json:"session_id"`
	Answer    string              `json:"answer"`
	Intent    domain.IntentResult `json:"intent"`
	Sources   []domain.SourceRef  `json:"sources"`
}

// ChatService answers questions grounded in indexed documents.
type ChatService interface {
	// Ask retrieves context, routes the query to a persona and generates an answer.
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)

	// Classify retrieves context and routes the query without generating.
	Classify(ctx context.Context, query string) (*domain.IntentResult, []domain.RetrievedSegment, error)

	// Sessions returns all chat sessions, most recent first.
	Sessions(ctx context.Context) ([]domain.ChatSession, error)

	// History returns a session's messages in order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, sessionID string) error
}
