package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/segmenters"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides. The key "llm.api_key" is
// overridden by DOCRAG_LLM_API_KEY.
const EnvPrefix = "DOCRAG_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyVectorBackend    = "vector.backend"
	keyVectorURL        = "vector.url"
	keyVectorAPIKey     = "vector.api_key"
	keyVectorCollection = "vector.collection"
	keyVectorDims       = "vector.dimensions"
	keyRetrievalLimit   = "retrieval.limit"
	keyRetrievalScore   = "retrieval.min_score"
	keyRetrievalHistory = "retrieval.history_turns"
	keySegWindow        = "segmentation.window_size"
	keySegOverlap       = "segmentation.overlap"
	keySegMaxTokens     = "segmentation.max_tokens"
	keySegStrategies    = "segmentation.strategies"
	keyIngestMaxSize    = "ingest.max_file_size_mb"
	keyIntentThreshold  = "intent.threshold"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// Environment variables override stored values.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. A nil func disables overrides.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = lookup
}

// EnvKey returns the environment variable overriding a config key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, defaults.DataDir),
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, ""), // No default - empty is valid for cloud providers
			APIKey:            s.getString(keyEmbedAPIKey, ""),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.getString(keyLLMBaseURL, ""),
			APIKey:      s.getString(keyLLMAPIKey, ""),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Vector: domain.VectorSettings{
			Backend:    s.getBackend(defaults.Vector.Backend),
			URL:        s.getString(keyVectorURL, ""),
			APIKey:     s.getString(keyVectorAPIKey, ""),
			Collection: s.getString(keyVectorCollection, defaults.Vector.Collection),
			Dimensions: s.getInt(keyVectorDims, defaults.Vector.Dimensions),
		},
		Retrieval: domain.RetrievalSettings{
			Limit:        s.getInt(keyRetrievalLimit, defaults.Retrieval.Limit),
			MinScore:     s.getFloat(keyRetrievalScore, defaults.Retrieval.MinScore),
			HistoryTurns: s.getInt(keyRetrievalHistory, defaults.Retrieval.HistoryTurns),
		},
		Segmentation: domain.SegmentationSettings{
			WindowSize:      s.getInt(keySegWindow, defaults.Segmentation.WindowSize),
			Overlap:         s.getInt(keySegOverlap, defaults.Segmentation.Overlap),
			MaxTokens:       s.getInt(keySegMaxTokens, defaults.Segmentation.MaxTokens),
			StrategyConfigs: s.strategyConfigs(),
		},
		Ingest: domain.IngestSettings{
			MaxFileSizeMB: s.getInt(keyIngestMaxSize, defaults.Ingest.MaxFileSizeMB),
		},
		Intent: domain.IntentSettings{
			Threshold: s.getInt(keyIntentThreshold, defaults.Intent.Threshold),
		},
	}

	// The model picks the dimension unless one is configured explicitly.
	if _, set := s.lookup(keyVectorDims); !set {
		if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Vector.Dimensions = d
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyVectorBackend, string(settings.Vector.Backend)},
		{keyVectorURL, settings.Vector.URL},
		{keyVectorCollection, settings.Vector.Collection},
		{keyVectorDims, settings.Vector.Dimensions},
		{keyRetrievalLimit, settings.Retrieval.Limit},
		{keyRetrievalScore, settings.Retrieval.MinScore},
		{keyRetrievalHistory, settings.Retrieval.HistoryTurns},
		{keySegWindow, settings.Segmentation.WindowSize},
		{keySegOverlap, settings.Segmentation.Overlap},
		{keySegMaxTokens, settings.Segmentation.MaxTokens},
		{keyIngestMaxSize, settings.Ingest.MaxFileSizeMB},
		{keyIntentThreshold, settings.Intent.Threshold},
	}
	if settings.DataDir != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyDataDir, settings.DataDir})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when set so env-provided keys stay out of the file.
	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyVectorAPIKey: settings.Vector.APIKey,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	for name, cfg := range settings.Segmentation.StrategyConfigs {
		for k, v := range cfg {
			key := keySegStrategies + "." + name + "." + k
			if err := s.configStore.Set(key, v); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
	}

	return nil
}

// Set updates a single dotted configuration key. String values are
// converted to the type of the setting they name.
func (s *SettingsService) Set(key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}
	if str, ok := value.(string); ok {
		converted, err := convertValue(key, str)
		if err != nil {
			return err
		}
		value = converted
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != "" && !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Embedding.Provider == domain.AIProviderAnthropic {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.Vector.Backend.IsValid() {
		return fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, settings.Vector.Backend)
	}
	if settings.Retrieval.Limit <= 0 {
		return fmt.Errorf("%w: retrieval.limit must be positive", domain.ErrInvalidInput)
	}
	if settings.Retrieval.MinScore < 0 || settings.Retrieval.MinScore > 1 {
		return fmt.Errorf("%w: retrieval.min_score must be within [0, 1]", domain.ErrInvalidInput)
	}
	if settings.Intent.Threshold <= 0 {
		return fmt.Errorf("%w: intent.threshold must be positive", domain.ErrInvalidInput)
	}
	if settings.Ingest.MaxFileSizeMB <= 0 {
		return fmt.Errorf("%w: ingest.max_file_size_mb must be positive", domain.ErrInvalidInput)
	}

	// Building the engine validates every strategy config.
	if _, err := segmenters.NewEngine(segmenters.DefaultRegistry(), settings.Segmentation); err != nil {
		return fmt.Errorf("%w: segmentation: %v", domain.ErrInvalidInput, err)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateVectorConfig pings the vector backend when it is remote.
func (s *SettingsService) ValidateVectorConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateVector(&settings.Vector)
}

// Helper methods for reading config with defaults. The environment takes
// precedence over the store.

// lookup returns the raw value for key from the environment or the store.
func (s *SettingsService) lookup(key string) (any, bool) {
	if s.lookupEnv != nil {
		if val, ok := s.lookupEnv(EnvKey(key)); ok && val != "" {
			return val, true
		}
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.lookup(key); ok {
		if str := fmt.Sprint(val); str != "" {
			return str
		}
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	if str, isStr := val.(string); isStr {
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return f
		}
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// getBackend keeps unknown backends so Validate can report them.
func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.getString(keyVectorBackend, "")
	if val == "" {
		return defaultVal
	}
	return domain.VectorBackend(val)
}

// strategyConfigs collects segmentation.strategies.<name>.<key> entries.
func (s *SettingsService) strategyConfigs() map[string]map[string]any {
	prefix := keySegStrategies + "."
	var out map[string]map[string]any
	for _, key := range s.configStore.Keys(keySegStrategies) {
		name, field, ok := strings.Cut(strings.TrimPrefix(key, prefix), ".")
		if !ok || name == "" || field == "" {
			continue
		}
		val, _ := s.configStore.Get(key)
		if out == nil {
			out = make(map[string]map[string]any)
		}
		if out[name] == nil {
			out[name] = make(map[string]any)
		}
		out[name][field] = val
	}
	return out
}

// convertValue parses a command line value for a known key.
func convertValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case keyLLMMaxTokens, keyVectorDims, keyRetrievalLimit, keyRetrievalHistory,
		keySegWindow, keySegOverlap, keySegMaxTokens, keyIngestMaxSize, keyIntentThreshold:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case keyEmbedRPS, keyLLMTemperature, keyRetrievalScore:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("%w: invalid provider: %s", domain.ErrInvalidInput, value)
		}
		return value, nil
	case keyVectorBackend:
		if !domain.VectorBackend(value).IsValid() {
			return nil, fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, value)
		}
		return value, nil
	}

	if strings.HasPrefix(key, keySegStrategies+".") {
		if n, err := strconv.Atoi(value); err == nil {
			return n, nil
		}
	}
	return value, nil
}
