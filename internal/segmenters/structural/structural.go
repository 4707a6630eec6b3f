// Package structural segments rich documents along their heading tree.
package structural

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/assemble"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

// Name is the strategy name used in configuration.
const Name = "structural"

// DefaultMaxTokens is the default token ceiling for a merged span.
const DefaultMaxTokens = 512

// Ensure Strategy implements the interface.
var _ driven.SegmentationStrategy = (*Strategy)(nil)

// Strategy merges adjacent items under the same heading into spans.
type Strategy struct {
	window    *window.Strategy
	maxTokens int
}

// Option configures the structural strategy.
type Option func(*Strategy)

// WithMaxTokens sets the token ceiling for a merged span.
func WithMaxTokens(n int) Option {
	return func(s *Strategy) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// New creates a structural strategy. Items too large for the token
// ceiling are split with w.
func New(w *window.Strategy, opts ...Option) *Strategy {
	s := &Strategy{window: w, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// MaxTokens returns the token ceiling.
func (s *Strategy) MaxTokens() int {
	return s.maxTokens
}

// Segment walks the document tree. It fails when the source has no tree
// or the tree has no items.
func (s *Strategy) Segment(ctx context.Context, src driven.SegmentSource) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Tree == nil || len(src.Tree.Items) == 0 {
		return nil, fmt.Errorf("%w: %s has no document structure", domain.ErrSegmentationFailed, src.FileName)
	}

	w := &walker{
		strategy: s,
		asm:      assemble.New(src.DocumentID, src.FileName, s.window.Counter()),
	}
	for _, item := range src.Tree.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.visit(item)
	}
	w.flush()

	return w.asm.Segments(), nil
}

type heading struct {
	level int
	text  string
}

// walker holds the state of one tree walk. Headings are buffered in the
// pending span so they lead the content that follows them.
type walker struct {
	strategy *Strategy
	asm      *assemble.Assembler
	stack    []heading
	pending  []domain.DocItem
}

func (w *walker) visit(item domain.DocItem) {
	item.Text = strings.TrimSpace(item.Text)
	if item.Text == "" {
		return
	}

	if item.Kind.IsHeading() {
		if hasContent(w.pending) {
			w.flush()
		}
		w.push(item)
		w.pending = append(w.pending, item)
		return
	}

	if w.fits(append(w.pending, item)) {
		w.pending = append(w.pending, item)
		return
	}
	if hasContent(w.pending) {
		w.flush()
	}
	if w.fits(append(w.pending, item)) {
		w.pending = append(w.pending, item)
		return
	}

	// A single item over the ceiling, led by any buffered headings.
	items := append(w.pending, item)
	w.pending = nil
	w.strategy.window.Append(w.asm, joinItems(items), w.extra(items))
}

// push records a heading, closing any open heading at the same or a
// deeper level.
func (w *walker) push(item domain.DocItem) {
	level := item.Level
	if level <= 0 && item.Kind == domain.ItemSectionHeader {
		level = 1
	}
	for len(w.stack) > 0 && w.stack[len(w.stack)-1].level >= level {
		w.stack = w.stack[:len(w.stack)-1]
	}
	w.stack = append(w.stack, heading{level: level, text: item.Text})
}

func (w *walker) flush() {
	if len(w.pending) == 0 {
		return
	}
	w.asm.Add(joinItems(w.pending), w.extra(w.pending))
	w.pending = nil
}

func (w *walker) fits(items []domain.DocItem) bool {
	return w.strategy.window.Counter().Count(joinItems(items)) <= w.strategy.maxTokens
}

func (w *walker) extra(items []domain.DocItem) assemble.Extra {
	extra := assemble.Extra{
		ElementType: string(ElementType(items)),
		PageNumber:  FirstPage(items),
	}
	if len(w.stack) > 0 {
		extra.SectionTitle = w.stack[len(w.stack)-1].text
	}
	return extra
}

// ElementType returns the most frequent non-heading kind in items. The
// kind seen first wins ties. Spans made only of headings report the
// first heading kind.
func ElementType(items []domain.DocItem) domain.ItemKind {
	counts := make(map[domain.ItemKind]int)
	var order []domain.ItemKind
	for _, item := range items {
		if item.Kind.IsHeading() {
			continue
		}
		if counts[item.Kind] == 0 {
			order = append(order, item.Kind)
		}
		counts[item.Kind]++
	}

	if len(order) == 0 {
		if len(items) == 0 {
			return ""
		}
		return items[0].Kind
	}

	best := order[0]
	for _, kind := range order[1:] {
		if counts[kind] > counts[best] {
			best = kind
		}
	}
	return best
}

// FirstPage returns the first known page number in items, or 0.
func FirstPage(items []domain.DocItem) int {
	for _, item := range items {
		if item.Page > 0 {
			return item.Page
		}
	}
	return 0
}

func hasContent(items []domain.DocItem) bool {
	for _, item := range items {
		if !item.Kind.IsHeading() {
			return true
		}
	}
	return false
}

func joinItems(items []domain.DocItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Text
	}
	return strings.Join(parts, "\n\n")
}
