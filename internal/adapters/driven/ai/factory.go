// Package ai provides factory functions for creating AI service adapters
// and the stores they work with.
package ai

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	ollamaembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/prompt"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'docrag config show' and 'docrag config set' to fix"

// InitResult contains the result of service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	HistoryStore     driven.HistoryStore
	PromptStore      driven.PromptStore // User-customisable persona templates.
	Warnings         []string           // Non-fatal issues that caused fallback.
	FellBack         bool               // True if a provider was unavailable.

	closers []io.Closer
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	for _, c := range r.closers {
		c.Close()
	}
}

// InitOptions controls Init.
type InitOptions struct {
	// Validate pings the AI providers and drops unreachable ones with a warning.
	Validate bool

	// Ephemeral keeps the index and history in memory.
	Ephemeral bool
}

// Init creates every driven adapter the application needs from settings.
// Provider problems become warnings; storage problems are errors.
func Init(settings *domain.AppSettings, opts InitOptions) (*InitResult, error) {
	result := &InitResult{}

	promptDir := ""
	if settings.DataDir != "" {
		promptDir = filepath.Join(settings.DataDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir, prompt.Defaults())
	if err != nil {
		return nil, err
	}
	result.PromptStore = prompts

	var store *sqlite.Store
	if !opts.Ephemeral && (settings.Vector.Backend == domain.VectorBackendSQLite ||
		settings.Vector.Backend == domain.VectorBackendQdrant) {
		dataDir := ""
		if settings.DataDir != "" {
			dataDir = filepath.Join(settings.DataDir, "data")
		}
		store, err = sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		result.closers = append(result.closers, store)
		result.HistoryStore = store.HistoryStore()
	} else {
		result.HistoryStore = memory.NewHistoryStore()
	}

	if opts.Ephemeral {
		result.VectorIndex = memory.NewVectorIndex()
	} else {
		index, err := CreateVectorIndex(&settings.Vector, store)
		if err != nil {
			result.Close()
			return nil, err
		}
		result.VectorIndex = index
	}

	create := func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		if opts.Validate {
			return CreateAndValidateEmbeddingService(s)
		}
		return CreateEmbeddingService(s)
	}
	if result.EmbeddingService, err = create(&settings.Embedding); err != nil {
		result.warn(err.Error())
	} else if result.EmbeddingService == nil {
		result.warn("embedding provider not configured: ingestion and retrieval are disabled")
	}

	createLLM := func(s *domain.LLMSettings) (driven.LLMService, error) {
		if opts.Validate {
			return CreateAndValidateLLMService(s)
		}
		return CreateLLMService(s)
	}
	if result.LLMService, err = createLLM(&settings.LLM); err != nil {
		result.warn(err.Error())
	} else if result.LLMService == nil {
		result.warn("LLM provider not configured: only classification is available")
	}

	return result, nil
}

func (r *InitResult) warn(msg string) {
	logger.Debug("%s", msg)
	r.Warnings = append(r.Warnings, msg)
	r.FellBack = true
}

// CreateVectorIndex creates the configured vector index. The sqlite backend
// needs an open store.
func CreateVectorIndex(settings *domain.VectorSettings, store *sqlite.Store) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		if store == nil {
			return memory.NewVectorIndex(), nil
		}
		return store.VectorIndex(), nil

	case domain.VectorBackendQdrant:
		index, err := qdrant.New(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return index, nil

	case domain.VectorBackendMemory:
		return memory.NewVectorIndex(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported vector backend: %s", domain.ErrInvalidInput, settings.Backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func rateLimit(settings *domain.EmbeddingSettings) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		BurstSize:         1,
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
		RateLimit:  rateLimit(settings),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
		RateLimit:  rateLimit(settings),
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
