package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider:          domain.AIProviderOpenAI,
				APIKey:            "test-key",
				Model:             "text-embedding-3-small",
				RequestsPerSecond: 2,
			},
		},
		{
			name:     "openai without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil:     true,
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider returns nil",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateEmbeddingService_Dimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "mxbai-embed-large",
	})
	require.NoError(t, err)
	assert.Equal(t, 1024, svc.Dimensions())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "custom-model",
	})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{"nil settings returns nil", nil, true},
		{"unconfigured settings returns nil", &domain.LLMSettings{}, true},
		{"openai without key returns nil", &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, true},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, false},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"}, false},
		{"anthropic", &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-3-5-sonnet-latest"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("unreachable service wraps sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "nomic-embed-text",
		})

		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "docrag config")
	})

	t.Run("unconfigured returns nil without error", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{})
		assert.Nil(t, svc)
		assert.NoError(t, err)
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
		Model:    "llama3.2",
	})

	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestCreateVectorIndex(t *testing.T) {
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	idx, err := CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendSQLite}, store)
	require.NoError(t, err)
	stats, err := idx.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sqlite.BackendName, stats.Backend)

	idx, err = CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.VectorIndex{}, idx)

	idx, err = CreateVectorIndex(&domain.VectorSettings{Backend: domain.VectorBackendQdrant, URL: "http://localhost:6333"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &qdrant.Index{}, idx)

	_, err = CreateVectorIndex(&domain.VectorSettings{Backend: "faiss"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInit(t *testing.T) {
	t.Run("sqlite backend with unconfigured LLM", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()

		result, err := Init(&settings, InitOptions{})
		require.NoError(t, err)
		defer result.Close()

		assert.NotNil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		assert.NotNil(t, result.HistoryStore)
		assert.NotNil(t, result.PromptStore)
		assert.True(t, result.FellBack)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "LLM provider not configured")

		stats, err := result.VectorIndex.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sqlite.BackendName, stats.Backend)

		tmpl, err := result.PromptStore.Load("persona_code_debugger")
		require.NoError(t, err)
		assert.Contains(t, tmpl, "{context_section}")
	})

	t.Run("ephemeral uses memory stores", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()
		settings.Embedding = domain.EmbeddingSettings{}

		result, err := Init(&settings, InitOptions{Ephemeral: true})
		require.NoError(t, err)
		defer result.Close()

		assert.IsType(t, &memory.VectorIndex{}, result.VectorIndex)
		assert.IsType(t, &memory.HistoryStore{}, result.HistoryStore)
		assert.Nil(t, result.EmbeddingService)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("anthropic embeddings become a warning", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}

		result, err := Init(&settings, InitOptions{Ephemeral: true})
		require.NoError(t, err)
		defer result.Close()

		assert.Nil(t, result.EmbeddingService)
		assert.Contains(t, result.Warnings[0], "anthropic does not support embeddings")
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()
		settings.Vector.Backend = "faiss"

		_, err := Init(&settings, InitOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
