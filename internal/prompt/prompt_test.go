package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// stubStore serves fixed templates.
type stubStore struct {
	prompts map[string]string
}

func (s *stubStore) Load(name string) (string, error) {
	if p, ok := s.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (s *stubStore) Reload() {}

func TestCompose_GeneralWithoutContext(t *testing.T) {
	out := Compose(domain.ModeGeneral, "", nil)

	assert.Contains(t, out, "Conversation History: (none)")
	assert.Contains(t, out, "Context from Documents: (none — answer from general knowledge)")
	assert.NotContains(t, out, "NOTICE")
	assert.NotContains(t, out, HistoryPlaceholder)
	assert.NotContains(t, out, ContextPlaceholder)
}

func TestCompose_SpecialistWithoutContextAddsNotice(t *testing.T) {
	for _, mode := range domain.AllModes() {
		if mode == domain.ModeGeneral {
			continue
		}
		t.Run(string(mode), func(t *testing.T) {
			out := Compose(mode, "", nil)
			assert.Contains(t, out, "Context from Documents: (none)"+NoContextNotice)
		})
	}
}

func TestCompose_WithContextAndHistory(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "What is in the report?"},
		{Role: domain.RoleAssistant, Content: "Quarterly numbers."},
	}

	out := Compose(domain.ModeDataAnalyst, "--- Context 1 (Source: q3.csv) ---\nRevenue: 10", history)

	assert.True(t, strings.HasPrefix(out, "You are a quantitative Data Analyst"))
	assert.Contains(t, out, "Conversation History:\nUser: What is in the report?\nAssistant: Quarterly numbers.")
	assert.Contains(t, out, "Context from Documents:\n--- Context 1 (Source: q3.csv) ---\nRevenue: 10")
	assert.NotContains(t, out, "NOTICE")
}

func TestCompose_UnknownModeUsesGeneral(t *testing.T) {
	out := Compose(domain.Mode("POET"), "", nil)

	assert.True(t, strings.HasPrefix(out, "You are a helpful, knowledgeable AI assistant."))
}

func TestComposer_StoreOverride(t *testing.T) {
	store := &stubStore{prompts: map[string]string{
		"persona_summarizer":    "Be brief.\n{history_section}\n{context_section}",
		"persona_code_debugger": "Missing placeholders.",
	}}
	c := NewComposer(store)

	out := c.Compose(domain.ModeSummarizer, "ctx", nil)
	assert.Equal(t, "Be brief.\nConversation History: (none)\nContext from Documents:\nctx", out)

	out = c.Compose(domain.ModeCodeDebugger, "ctx", nil)
	assert.True(t, strings.HasPrefix(out, "You are an expert Software Debugger"))

	out = c.Compose(domain.ModeCreative, "ctx", nil)
	assert.True(t, strings.HasPrefix(out, "You are a Creative Synthesiser"))
}

func TestComposer_SetPromptStore(t *testing.T) {
	var c Composer
	c.SetPromptStore(&stubStore{prompts: map[string]string{
		"persona_general": "G {history_section} {context_section}",
	}})

	assert.Equal(t, "G Conversation History: (none) Context from Documents: (none — answer from general knowledge)",
		c.Compose(domain.ModeGeneral, "", nil))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("{history_section}{context_section}"))
	assert.ErrorIs(t, Validate("{history_section}"), domain.ErrInvalidInput)
	assert.ErrorIs(t, Validate(""), domain.ErrInvalidInput)
}

func TestTemplates_CarryPlaceholders(t *testing.T) {
	defaults := Defaults()
	require.Len(t, defaults, len(domain.AllModes()))
	for name, tmpl := range defaults {
		assert.NoError(t, Validate(tmpl), name)
	}
	assert.Contains(t, defaults, "persona_code_architect")
}

func TestHistorySection_CapitalisesRole(t *testing.T) {
	out := HistorySection([]domain.Turn{{Role: "USER", Content: "hi"}})

	assert.Equal(t, "Conversation History:\nUser: hi", out)
}

func TestFormatContext(t *testing.T) {
	segments := []domain.RetrievedSegment{
		{
			Content: "Revenue grew.",
			Score:   0.9,
			Metadata: domain.SegmentMetadata{
				FileName:     "report.pdf",
				PageNumber:   3,
				SectionTitle: "Results",
			},
		},
		{
			Content:  "func main() {}",
			Metadata: domain.SegmentMetadata{FileName: "main.go", Language: "go"},
		},
		{Content: "orphan"},
	}

	out := FormatContext(segments)

	assert.Equal(t, `--- Context 1 (Source: report.pdf, page 3, section "Results") ---
Revenue grew.

--- Context 2 (Source: main.go, language: go) ---
func main() {}

--- Context 3 (Source: Unknown) ---
orphan`, out)
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))
}
