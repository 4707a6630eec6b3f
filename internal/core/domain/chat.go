package domain

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange entry given to prompt composition.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SourceRef points at a segment used to ground an answer.
type SourceRef struct {
	DocumentID   string  `json:"document_id"`
	FileName     string  `json:"file_name"`
	ChunkIndex   int     `json:"chunk_index"`
	PageNumber   int     `json:"page_number,omitempty"`
	SectionTitle string  `json:"section_title,omitempty"`
	Score        float64 `json:"score"`
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID        string
	Title     string
	Provider  string
	ModelName string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is a persisted message within a session.
type ChatMessage struct {
	ID           string
	SessionID    string
	Role         string
	Content      string
	Sources      []SourceRef
	DetectedMode Mode
	CreatedAt    time.Time
}

// Turn converts the message to a prompt history turn.
func (m ChatMessage) Turn() Turn {
	return Turn{Role: m.Role, Content: m.Content}
}
