package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// HistoryStore persists chat sessions and their messages.
type HistoryStore interface {
	// SaveSession creates or updates a session.
	SaveSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions returns sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, id string) error

	// AppendMessage adds a message to its session.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// Messages returns the last limit messages of a session in
	// chronological order. limit <= 0 returns all.
	Messages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}
