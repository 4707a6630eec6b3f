package mcp

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	response  *driving.AskResponse
	intent    *domain.IntentResult
	retrieved []domain.RetrievedSegment
	sessions  []domain.ChatSession
	messages  []domain.ChatMessage
	err       error

	lastRequest driving.AskRequest
	lastSession string
}

func (m *mockChatService) Ask(_ context.Context, req driving.AskRequest) (*driving.AskResponse, error) {
	m.lastRequest = req
	return m.response, m.err
}

func (m *mockChatService) Classify(
	_ context.Context,
	query string,
) (*domain.IntentResult, []domain.RetrievedSegment, error) {
	m.lastRequest = driving.AskRequest{Query: query}
	return m.intent, m.retrieved, m.err
}

func (m *mockChatService) Sessions(_ context.Context) ([]domain.ChatSession, error) {
	return m.sessions, m.err
}

func (m *mockChatService) History(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	m.lastSession = sessionID
	return m.messages, m.err
}

func (m *mockChatService) DeleteSession(_ context.Context, sessionID string) error {
	m.lastSession = sessionID
	return m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result    *domain.IngestResult
	documents []domain.IndexedDocument
	stats     *domain.IndexStats
	err       error

	lastName    string
	lastContent []byte
}

func (m *mockIngestService) Ingest(_ context.Context, fileName string, content []byte) (*domain.IngestResult, error) {
	m.lastName = fileName
	m.lastContent = content
	return m.result, m.err
}

func (m *mockIngestService) Preview(_ context.Context, fileName string, content []byte) (*domain.IngestResult, error) {
	m.lastName = fileName
	m.lastContent = content
	return m.result, m.err
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.IndexedDocument, error) {
	return m.documents, m.err
}

func (m *mockIngestService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

var (
	_ driving.ChatService   = (*mockChatService)(nil)
	_ driving.IngestService = (*mockIngestService)(nil)
)
