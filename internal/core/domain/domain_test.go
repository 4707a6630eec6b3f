package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_IsSupported(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{CategoryRichDocument, true},
		{CategoryTabular, true},
		{CategoryStructured, true},
		{CategoryPlainText, true},
		{CategorySourceCode, true},
		{CategoryUnknown, false},
		{Category("binary"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.IsSupported())
		})
	}
}

func TestMode_LabelsAndIcons(t *testing.T) {
	tests := []struct {
		mode  Mode
		label string
		icon  string
	}{
		{ModeGeneral, "General Assistant", "✨"},
		{ModeDocumentAnalyst, "Document Analyst", "📄"},
		{ModeCodeArchitect, "Code Architect", "💻"},
		{ModeCodeDebugger, "Code Debugger", "🐛"},
		{ModeSummarizer, "Summarizer", "📋"},
		{ModeDataAnalyst, "Data Analyst", "📊"},
		{ModeCreative, "Creative Synthesizer", "💡"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.True(t, tt.mode.IsValid())
			assert.Equal(t, tt.label, tt.mode.Label())
			assert.Equal(t, tt.icon, tt.mode.Icon())
		})
	}
	assert.Len(t, AllModes(), 7)
}

func TestSegmentMetadata_Extension(t *testing.T) {
	assert.Equal(t, "csv", SegmentMetadata{FileName: "Sales.CSV"}.Extension())
	assert.Equal(t, "", SegmentMetadata{FileName: "Makefile"}.Extension())
	assert.Equal(t, "", SegmentMetadata{FileName: "trailing."}.Extension())
}

func TestDocumentTree_PlainText(t *testing.T) {
	tree := &DocumentTree{Items: []DocItem{
		{Text: "Intro", Kind: ItemSectionHeader, Level: 1},
		{Text: "  ", Kind: ItemParagraph},
		{Text: "Body text.", Kind: ItemParagraph},
	}}

	assert.Equal(t, "Intro\n\nBody text.", tree.PlainText())

	var nilTree *DocumentTree
	assert.Equal(t, "", nilTree.PlainText())
}

func TestSegmentationSettings_StrategyConfig(t *testing.T) {
	s := SegmentationSettings{
		WindowSize: 1200,
		Overlap:    200,
		MaxTokens:  512,
		StrategyConfigs: map[string]map[string]any{
			"code": {"window_size": 800},
		},
	}

	cfg := s.StrategyConfig("code")
	assert.Equal(t, 800, cfg["window_size"])
	assert.Equal(t, 200, cfg["overlap"])

	cfg = s.StrategyConfig("window")
	assert.Equal(t, 1200, cfg["window_size"])
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1200, s.Segmentation.WindowSize)
	assert.Equal(t, 200, s.Segmentation.Overlap)
	assert.Equal(t, 512, s.Segmentation.MaxTokens)
	assert.Equal(t, 4, s.Intent.Threshold)
	assert.Equal(t, int64(20*1024*1024), s.Ingest.MaxBytes())
	assert.Equal(t, VectorBackendSQLite, s.Vector.Backend)
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
}

func TestEmbeddingSettings_AnthropicNotSupported(t *testing.T) {
	s := EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}
	assert.False(t, s.IsConfigured())
}
