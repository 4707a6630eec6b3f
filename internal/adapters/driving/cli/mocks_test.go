package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	err       error
	ingested  []string
	previewed []string
	deleted   []string
}

func (m *mockIngestService) result(fileName string) *domain.IngestResult {
	return &domain.IngestResult{
		DocumentID: "doc-" + fileName,
		FileName:   fileName,
		Category:   domain.CategoryPlainText,
		Strategy:   "heading",
		Segments: []domain.Segment{
			{
				Content: "Introduction to the loader",
				Metadata: domain.SegmentMetadata{
					FileName:     fileName,
					ChunkIndex:   0,
					CharCount:    26,
					SectionTitle: "Intro",
				},
			},
		},
	}
}

func (m *mockIngestService) Ingest(_ context.Context, fileName string, _ []byte) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, fileName)
	return m.result(fileName), nil
}

func (m *mockIngestService) Preview(_ context.Context, fileName string, _ []byte) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.previewed = append(m.previewed, fileName)
	return m.result(fileName), nil
}

func (m *mockIngestService) ListDocuments(_ context.Context) ([]domain.IndexedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.IndexedDocument{{DocumentID: "doc-1", FileName: "readme.md", Segments: 4}}, nil
}

func (m *mockIngestService) DeleteDocument(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return m.err
}

func (m *mockIngestService) Stats(_ context.Context) (*domain.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexStats{Documents: 1, Segments: 4, Backend: "memory"}, nil
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	err     error
	request driving.AskRequest
	deleted []string
}

func (m *mockChatService) Ask(_ context.Context, req driving.AskRequest) (*driving.AskResponse, error) {
	m.request = req
	if m.err != nil {
		return nil, m.err
	}
	answer := "The loader reads files."
	if req.OnToken != nil {
		for _, tok := range strings.SplitAfter(answer, " ") {
			if err := req.OnToken(tok); err != nil {
				return nil, err
			}
		}
	}
	return &driving.AskResponse{
		SessionID: "sess-1",
		Answer:    answer,
		Intent: domain.IntentResult{
			Mode:       domain.ModeCodeArchitect,
			Label:      domain.ModeCodeArchitect.Label(),
			Icon:       domain.ModeCodeArchitect.Icon(),
			Confidence: 0.75,
			HasContext: true,
		},
		Sources: []domain.SourceRef{
			{DocumentID: "doc-1", FileName: "loader.py", SectionTitle: "load", Score: 0.82},
		},
	}, nil
}

func (m *mockChatService) Classify(
	_ context.Context,
	query string,
) (*domain.IntentResult, []domain.RetrievedSegment, error) {
	m.request = driving.AskRequest{Query: query}
	if m.err != nil {
		return nil, nil, m.err
	}
	result := &domain.IntentResult{
		Mode:       domain.ModeCodeDebugger,
		Label:      domain.ModeCodeDebugger.Label(),
		Icon:       domain.ModeCodeDebugger.Icon(),
		Confidence: 0.9,
		HasContext: true,
		Signals:    []string{"pattern:error", "context:code"},
	}
	retrieved := []domain.RetrievedSegment{
		{Score: 0.8, Metadata: domain.SegmentMetadata{FileName: "loader.py", ChunkIndex: 2, Language: "python"}},
	}
	return result, retrieved, nil
}

func (m *mockChatService) Sessions(_ context.Context) ([]domain.ChatSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ChatSession{{
		ID:        "sess-1",
		Title:     "How does the loader work?",
		UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}, nil
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "How does the loader work?"},
		{
			Role:         domain.RoleAssistant,
			Content:      "It reads files.",
			DetectedMode: domain.ModeCodeArchitect,
			Sources:      []domain.SourceRef{{FileName: "loader.py", Score: 0.8}},
		},
	}, nil
}

func (m *mockChatService) DeleteSession(_ context.Context, sessionID string) error {
	m.deleted = append(m.deleted, sessionID)
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]any
	setErr      error
	validateErr error
	pingErr     error
	vectorErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]any{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateVectorConfig() error { return m.vectorErr }

type testServices struct {
	ingest   *mockIngestService
	chat     *mockChatService
	settings *mockSettingsService
}

// setupTestServices installs mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:   &mockIngestService{},
		chat:     &mockChatService{},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{Ingest: ts.ingest, Chat: ts.chat, Settings: ts.settings})
	return ts, func() { SetServices(nil) }
}

// executeCommand runs the root command with args and returns its output.
// Flags are reset to their defaults first.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

var (
	_ driving.IngestService   = (*mockIngestService)(nil)
	_ driving.ChatService     = (*mockChatService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)
