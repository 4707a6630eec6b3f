package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// mockEmbeddingService returns a fixed two-dimensional vector per text.
// Texts mentioning "code" point one way, everything else the other.
type mockEmbeddingService struct {
	err      error
	batchErr error
	short    bool
	calls    int
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "code") {
		return []float32{0, 1}
	}
	return []float32{1, 0}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 2 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService records the last request and returns a canned answer.
type mockLLMService struct {
	answer string
	err    error
	prompt string
	opts   driven.GenerateOptions
	stream bool
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompt, m.opts = prompt, opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLMService) Stream(
	_ context.Context, prompt string, opts driven.GenerateOptions, onToken func(string) error,
) (string, error) {
	m.prompt, m.opts, m.stream = prompt, opts, true
	if m.err != nil {
		return "", m.err
	}
	for _, word := range strings.SplitAfter(m.answer, " ") {
		if err := onToken(word); err != nil {
			return "", err
		}
	}
	return m.answer, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// failingIndex wraps an index and fails selected operations.
type failingIndex struct {
	driven.VectorIndex
	upsertErr error
	searchErr error

	mu      sync.Mutex
	deleted []string
}

func (f *failingIndex) Upsert(ctx context.Context, segments []domain.Segment, vectors [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorIndex.Upsert(ctx, segments, vectors)
}

func (f *failingIndex) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]domain.RetrievedSegment, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.VectorIndex.Search(ctx, query, limit, minScore)
}

func (f *failingIndex) DeleteDocument(ctx context.Context, documentID string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, documentID)
	f.mu.Unlock()
	return f.VectorIndex.DeleteDocument(ctx, documentID)
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embedErr  error
	llmErr    error
	vectorErr error
	embedded  *domain.EmbeddingSettings
	llm       *domain.LLMSettings
	vector    *domain.VectorSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedded = cfg
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func (m *mockAIValidator) ValidateVector(cfg *domain.VectorSettings) error {
	m.vector = cfg
	return m.vectorErr
}

var errBoom = errors.New("boom")
