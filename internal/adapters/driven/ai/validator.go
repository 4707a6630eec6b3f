package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by connecting to them.
// Unconfigured providers and local backends always pass.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout bounds each connectivity check. Non-positive values are ignored.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator using pingTimeout unless overridden.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding pings the configured embedding provider.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := v.context()
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLM pings the configured LLM provider.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := v.context()
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateVector pings the Qdrant server when it is the selected backend.
func (v *ConfigValidator) ValidateVector(settings *domain.VectorSettings) error {
	if settings == nil || settings.Backend != domain.VectorBackendQdrant {
		return nil
	}
	index, err := qdrant.New(qdrant.Config{
		URL:     settings.URL,
		APIKey:  settings.APIKey,
		Timeout: v.timeout,
	})
	if err != nil {
		return err
	}
	defer index.Close()

	ctx, cancel := v.context()
	defer cancel()
	if err := index.Ping(ctx); err != nil {
		return fmt.Errorf("%w: qdrant at %s: %v", domain.ErrVectorIndexUnavailable, settings.URL, err)
	}
	return nil
}

func (v *ConfigValidator) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), v.timeout)
}
