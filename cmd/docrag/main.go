// Command docrag indexes local documents and answers questions about them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/intent"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/normalisers"
	"github.com/custodia-labs/docrag/internal/normalisers/docx"
	"github.com/custodia-labs/docrag/internal/normalisers/html"
	"github.com/custodia-labs/docrag/internal/normalisers/pdf"
	"github.com/custodia-labs/docrag/internal/normalisers/plaintext"
	"github.com/custodia-labs/docrag/internal/normalisers/pptx"
	"github.com/custodia-labs/docrag/internal/normalisers/record"
	"github.com/custodia-labs/docrag/internal/normalisers/tabular"
	"github.com/custodia-labs/docrag/internal/prompt"
	"github.com/custodia-labs/docrag/internal/segmenters"
)

func main() {
	_ = godotenv.Load()

	if err := cli.Execute(setup); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup wires the driven adapters into the core services.
func setup(opts cli.Options) (*cli.Services, error) {
	store, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if settings.DataDir == "" {
		if dir, err := file.DefaultDir(); err == nil {
			settings.DataDir = dir
		}
	}

	result, err := ai.Init(settings, ai.InitOptions{Ephemeral: opts.Ephemeral})
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	engine, err := segmenters.NewEngine(segmenters.DefaultRegistry(), settings.Segmentation)
	if err != nil {
		logger.Warn("segmentation settings rejected, using defaults: %v", err)
		engine, err = segmenters.NewEngine(segmenters.DefaultRegistry(), domain.DefaultAppSettings().Segmentation)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("configuring segmentation: %w", err)
		}
	}

	ingest := services.NewIngestService(
		newNormaliserRegistry(),
		engine,
		result.EmbeddingService,
		result.VectorIndex,
		services.WithMaxBytes(settings.Ingest.MaxBytes()),
	)

	chat := services.NewChatService(
		result.EmbeddingService,
		result.VectorIndex,
		result.LLMService,
		result.HistoryStore,
		services.WithClassifier(intent.New(intent.WithThreshold(settings.Intent.Threshold))),
		services.WithComposer(prompt.NewComposer(result.PromptStore)),
		services.WithRetrieval(settings.Retrieval),
		services.WithGenerateOptions(driven.GenerateOptions{
			Temperature: settings.LLM.Temperature,
			MaxTokens:   settings.LLM.MaxTokens,
		}),
	)

	return &cli.Services{
		Ingest:   ingest,
		Chat:     chat,
		Settings: settingsService,
		Close:    result.Close,
	}, nil
}

func newNormaliserRegistry() *normalisers.Registry {
	return normalisers.NewRegistry(
		pdf.New(),
		docx.New(),
		pptx.New(),
		html.New(),
		tabular.New(),
		record.New(),
		plaintext.New(),
	)
}
