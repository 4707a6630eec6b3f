package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors alongside segments in the local database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant uses a Qdrant server over its REST API.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendMemory keeps vectors in process memory.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendQdrant, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps embedding calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// URL is the Qdrant base URL.
	URL string

	// APIKey is the Qdrant API key, if any.
	APIKey string

	// Collection is the Qdrant collection name.
	Collection string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// RetrievalSettings controls similarity search for answering.
type RetrievalSettings struct {
	// Limit is the number of segments retrieved per query.
	Limit int

	// MinScore drops results below this similarity.
	MinScore float64

	// HistoryTurns is how many prior messages are given to the prompt.
	HistoryTurns int
}

// SegmentationSettings holds segmentation parameters.
type SegmentationSettings struct {
	// WindowSize is the sliding window length in characters.
	WindowSize int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// MaxTokens is the structural strategy's span ceiling.
	MaxTokens int

	// StrategyConfigs holds per-strategy overrides as generic maps,
	// keyed by strategy name.
	StrategyConfigs map[string]map[string]any
}

// StrategyConfig returns the effective config map for a strategy.
// Global values are applied first and overridden by strategy entries.
func (s SegmentationSettings) StrategyConfig(name string) map[string]any {
	cfg := map[string]any{
		"window_size": s.WindowSize,
		"overlap":     s.Overlap,
		"max_tokens":  s.MaxTokens,
	}
	for k, v := range s.StrategyConfigs[name] {
		cfg[k] = v
	}
	return cfg
}

// IngestSettings holds upload limits.
type IngestSettings struct {
	// MaxFileSizeMB rejects uploads larger than this many megabytes.
	MaxFileSizeMB int
}

// MaxBytes returns the limit in bytes.
func (i IngestSettings) MaxBytes() int64 {
	return int64(i.MaxFileSizeMB) * 1024 * 1024
}

// IntentSettings holds classifier parameters.
type IntentSettings struct {
	// Threshold is the minimum score for a mode to activate.
	Threshold int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the database and prompt overrides.
	DataDir string

	Embedding    EmbeddingSettings
	LLM          LLMSettings
	Vector       VectorSettings
	Retrieval    RetrievalSettings
	Segmentation SegmentationSettings
	Ingest       IngestSettings
	Intent       IntentSettings
}

// Default values.
const (
	DefaultWindowSize    = 1200
	DefaultOverlap       = 200
	DefaultMaxTokens     = 512
	DefaultMaxFileSizeMB = 20
	DefaultThreshold     = 4
	DefaultLimit         = 5
	DefaultMinScore      = 0.3
	DefaultHistoryTurns  = 10
	DefaultCollection    = "documents"
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; embeddings default to a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Vector: VectorSettings{
			Backend:    VectorBackendSQLite,
			Collection: DefaultCollection,
			Dimensions: 768, // nomic-embed-text default
		},
		Retrieval: RetrievalSettings{
			Limit:        DefaultLimit,
			MinScore:     DefaultMinScore,
			HistoryTurns: DefaultHistoryTurns,
		},
		Segmentation: SegmentationSettings{
			WindowSize: DefaultWindowSize,
			Overlap:    DefaultOverlap,
			MaxTokens:  DefaultMaxTokens,
		},
		Ingest: IngestSettings{MaxFileSizeMB: DefaultMaxFileSizeMB},
		Intent: IntentSettings{Threshold: DefaultThreshold},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
