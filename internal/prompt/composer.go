// Package prompt composes the system prompt for an answer mode.
//
// Each mode has a persona template with history and context placeholders.
// Templates can be overridden through a PromptStore.
package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Section texts.
const (
	historyHeader     = "Conversation History:"
	noHistory         = "Conversation History: (none)"
	contextHeader     = "Context from Documents:"
	noContextGeneral  = "Context from Documents: (none — answer from general knowledge)"
	noContextSpecific = "Context from Documents: (none)"
)

// Ensure Composer implements the optional interface.
var _ driven.PromptStoreAware = (*Composer)(nil)

// Composer builds system prompts. The zero value uses built-in templates.
type Composer struct {
	store driven.PromptStore
}

// NewComposer creates a composer. A nil store uses built-in templates.
func NewComposer(store driven.PromptStore) *Composer {
	return &Composer{store: store}
}

// SetPromptStore sets the store consulted for template overrides.
func (c *Composer) SetPromptStore(store driven.PromptStore) {
	c.store = store
}

// TemplateName returns the prompt store name for a mode's template.
func TemplateName(mode domain.Mode) string {
	return driven.PersonaPromptPrefix + strings.ToLower(string(mode))
}

// Compose fills the mode's template with the history and context sections.
// An empty contextText means retrieval found nothing.
func (c *Composer) Compose(mode domain.Mode, contextText string, history []domain.Turn) string {
	r := strings.NewReplacer(
		HistoryPlaceholder, HistorySection(history),
		ContextPlaceholder, ContextSection(mode, contextText),
	)
	return r.Replace(c.template(mode))
}

// template returns the store override when it carries both placeholders,
// otherwise the built-in template.
func (c *Composer) template(mode domain.Mode) string {
	if c.store == nil {
		return Template(mode)
	}
	t, err := c.store.Load(TemplateName(mode))
	if err != nil {
		logger.Debug("prompt override %s unavailable: %v", TemplateName(mode), err)
		return Template(mode)
	}
	if err := Validate(t); err != nil {
		logger.Warn("ignoring prompt override %s: %v", TemplateName(mode), err)
		return Template(mode)
	}
	return t
}

// Validate checks a template carries both placeholders.
func Validate(template string) error {
	for _, ph := range []string{HistoryPlaceholder, ContextPlaceholder} {
		if !strings.Contains(template, ph) {
			return fmt.Errorf("%w: template is missing %s", domain.ErrInvalidInput, ph)
		}
	}
	return nil
}

// HistorySection renders prior turns as "Role: content" lines.
func HistorySection(history []domain.Turn) string {
	if len(history) == 0 {
		return noHistory
	}
	lines := make([]string, 0, len(history)+1)
	lines = append(lines, historyHeader)
	for _, turn := range history {
		lines = append(lines, capitalise(turn.Role)+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// ContextSection renders the retrieved context. Specialist modes get the
// no-context notice when there is nothing to show.
func ContextSection(mode domain.Mode, contextText string) string {
	switch {
	case strings.TrimSpace(contextText) != "":
		return contextHeader + "\n" + contextText
	case mode == domain.ModeGeneral:
		return noContextGeneral
	default:
		return noContextSpecific + NoContextNotice
	}
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

var defaultComposer = &Composer{}

// Compose builds a prompt with the built-in templates.
func Compose(mode domain.Mode, contextText string, history []domain.Turn) string {
	return defaultComposer.Compose(mode, contextText, history)
}
