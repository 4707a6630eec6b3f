package driven

import "github.com/custodia-labs/docrag/internal/core/domain"

// AIConfigValidator checks that configured providers are reachable.
// Each method returns nil when the corresponding provider is not configured.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error

	// ValidateVector only contacts remote backends.
	ValidateVector(settings *domain.VectorSettings) error
}
