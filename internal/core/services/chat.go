package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/intent"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/prompt"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// titleLen caps a session title derived from its first question.
const titleLen = 60

// ChatService answers questions with retrieved context and persona routing.
type ChatService struct {
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	llm        driven.LLMService
	history    driven.HistoryStore
	classifier *intent.Classifier
	composer   *prompt.Composer
	retrieval  domain.RetrievalSettings
	generate   driven.GenerateOptions
	now        func() time.Time
}

// ChatOption configures the chat service.
type ChatOption func(*ChatService)

// WithClassifier sets the intent classifier.
func WithClassifier(c *intent.Classifier) ChatOption {
	return func(s *ChatService) {
		s.classifier = c
	}
}

// WithComposer sets the prompt composer.
func WithComposer(c *prompt.Composer) ChatOption {
	return func(s *ChatService) {
		s.composer = c
	}
}

// WithRetrieval sets the retrieval limit, score floor and history depth.
func WithRetrieval(r domain.RetrievalSettings) ChatOption {
	return func(s *ChatService) {
		s.retrieval = r
	}
}

// WithGenerateOptions sets the sampling options passed to the LLM.
func WithGenerateOptions(opts driven.GenerateOptions) ChatOption {
	return func(s *ChatService) {
		s.generate = opts
	}
}

// NewChatService creates a new chat service.
// Every dependency is optional: without an embedder or index questions are
// answered without context, without history every question starts fresh,
// and without an LLM only Classify works.
func NewChatService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	history driven.HistoryStore,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		embedder:   embedder,
		index:      index,
		llm:        llm,
		history:    history,
		classifier: intent.New(),
		composer:   prompt.NewComposer(nil),
		retrieval: domain.RetrievalSettings{
			Limit:        domain.DefaultLimit,
			MinScore:     domain.DefaultMinScore,
			HistoryTurns: domain.DefaultHistoryTurns,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers a question and records the exchange in its session.
func (s *ChatService) Ask(ctx context.Context, req driving.AskRequest) (*driving.AskResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Ask")
	sessionID, pending, turns, err := s.openSession(ctx, req.SessionID, query)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.retrieval.Limit
	}
	retrieved := s.retrieve(ctx, query, limit)
	result := s.classify(query, retrieved)
	logger.Debug("routed to %s (confidence %.2f, %d signals)", result.Mode, result.Confidence, len(result.Signals))

	opts := s.generate
	opts.System = s.composer.Compose(result.Mode, prompt.FormatContext(retrieved), turns)

	var answer string
	if req.OnToken != nil {
		answer, err = s.llm.Stream(ctx, query, opts, req.OnToken)
	} else {
		answer, err = s.llm.Generate(ctx, query, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := sourceRefs(retrieved)
	if err := s.record(ctx, pending, sessionID, query, answer, result.Mode, sources); err != nil {
		return nil, err
	}

	return &driving.AskResponse{
		SessionID: sessionID,
		Answer:    answer,
		Intent:    result,
		Sources:   sources,
	}, nil
}

// Classify retrieves context and routes the query without generating.
func (s *ChatService) Classify(ctx context.Context, query string) (*domain.IntentResult, []domain.RetrievedSegment, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	retrieved := s.retrieve(ctx, query, s.retrieval.Limit)
	result := s.classify(query, retrieved)
	return &result, retrieved, nil
}

// Sessions returns all chat sessions, most recent first.
func (s *ChatService) Sessions(ctx context.Context) ([]domain.ChatSession, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	return s.history.ListSessions(ctx)
}

// History returns a session's messages in order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	if _, err := s.history.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.history.Messages(ctx, sessionID, 0)
}

// DeleteSession removes a session and its messages.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if s.history == nil {
		return domain.ErrHistoryUnavailable
	}
	return s.history.DeleteSession(ctx, sessionID)
}

// openSession resolves the session to answer in and loads its recent turns.
// An empty id starts a new session titled after the question; it is
// returned as pending and only saved once an answer exists.
func (s *ChatService) openSession(
	ctx context.Context, sessionID, query string,
) (string, *domain.ChatSession, []domain.Turn, error) {
	if sessionID == "" {
		session := &domain.ChatSession{
			ID:        uuid.NewString(),
			Title:     title(query),
			ModelName: s.llm.ModelName(),
			CreatedAt: s.now(),
		}
		return session.ID, session, nil, nil
	}
	if s.history == nil {
		return sessionID, nil, nil, nil
	}

	if _, err := s.history.GetSession(ctx, sessionID); err != nil {
		return "", nil, nil, err
	}
	messages, err := s.history.Messages(ctx, sessionID, s.retrieval.HistoryTurns)
	if err != nil {
		return "", nil, nil, fmt.Errorf("load history: %w", err)
	}
	turns := make([]domain.Turn, len(messages))
	for i, m := range messages {
		turns[i] = m.Turn()
	}
	return sessionID, nil, turns, nil
}

// retrieve returns the closest segments. Retrieval problems degrade to
// answering without context.
func (s *ChatService) retrieve(ctx context.Context, query string, limit int) []domain.RetrievedSegment {
	if s.embedder == nil || s.index == nil {
		logger.Debug("retrieval disabled: no embedder or index")
		return nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("embedding query failed, answering without context: %v", err)
		return nil
	}
	results, err := s.index.Search(ctx, vec, limit, s.retrieval.MinScore)
	if err != nil {
		logger.Warn("search failed, answering without context: %v", err)
		return nil
	}
	logger.Debug("retrieved %d segments (min score %.2f)", len(results), s.retrieval.MinScore)
	return results
}

func (s *ChatService) classify(query string, retrieved []domain.RetrievedSegment) domain.IntentResult {
	metas := make([]domain.SegmentMetadata, len(retrieved))
	for i, r := range retrieved {
		metas[i] = r.Metadata
	}
	return s.classifier.Classify(query, metas)
}

func (s *ChatService) record(
	ctx context.Context, pending *domain.ChatSession, sessionID, query, answer string,
	mode domain.Mode, sources []domain.SourceRef,
) error {
	if s.history == nil {
		return nil
	}
	if pending != nil {
		if err := s.history.SaveSession(ctx, pending); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}
	asked := s.now()
	if err := s.history.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   query,
		CreatedAt: asked,
	}); err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	if err := s.history.AppendMessage(ctx, &domain.ChatMessage{
		SessionID:    sessionID,
		Role:         domain.RoleAssistant,
		Content:      answer,
		Sources:      sources,
		DetectedMode: mode,
		CreatedAt:    s.now(),
	}); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

func sourceRefs(retrieved []domain.RetrievedSegment) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(retrieved))
	for i, r := range retrieved {
		refs[i] = domain.SourceRef{
			DocumentID:   r.Metadata.DocumentID,
			FileName:     r.Metadata.FileName,
			ChunkIndex:   r.Metadata.ChunkIndex,
			PageNumber:   r.Metadata.PageNumber,
			SectionTitle: r.Metadata.SectionTitle,
			Score:        r.Score,
		}
	}
	return refs
}

// title shortens a question to a session title.
func title(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(query) <= titleLen {
		return query
	}
	runes := []rune(query)
	return strings.TrimSpace(string(runes[:titleLen])) + "..."
}
