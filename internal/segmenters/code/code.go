// Package code segments source files at top level definitions.
//
// A definition starts at a line matching its language's boundary pattern
// and includes the decorators, annotations and comments directly above
// it. Anything before the first definition is the preamble.
package code

import (
	"context"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/assemble"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

// Name is the strategy name used in configuration.
const Name = "code"

// Ensure Strategy implements the interface.
var _ driven.SegmentationStrategy = (*Strategy)(nil)

// Strategy splits source code into definitions.
type Strategy struct {
	window *window.Strategy
}

// New creates a code strategy that window splits oversized definitions.
func New(w *window.Strategy) *Strategy {
	return &Strategy{window: w}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Segment splits source code. Every segment carries the source language.
// It never fails.
func (s *Strategy) Segment(ctx context.Context, src driven.SegmentSource) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language := src.Language
	if language == "" {
		language = domain.DefaultLanguage
	}
	extra := assemble.Extra{Language: language}

	asm := assemble.New(src.DocumentID, src.FileName, s.window.Counter())
	for _, def := range Definitions(src.Text, language) {
		if s.window.Fits(def) {
			asm.Add(def, extra)
			continue
		}
		s.window.Append(asm, def, extra)
	}
	return asm.Segments(), nil
}

// Definitions splits text into the preamble and one span per top level
// definition. Languages without a boundary table yield the whole text.
// Blank lines around each span are removed and empty spans are dropped.
func Definitions(text, language string) []string {
	lines := strings.Split(text, "\n")

	bounds := []int{0}
	if lang, ok := Lookup(language); ok {
		for i, line := range lines {
			if i == 0 || !lang.Boundary.MatchString(line) {
				continue
			}
			start := attachStart(lines, i, bounds[len(bounds)-1], lang.Attach)
			if start > bounds[len(bounds)-1] {
				bounds = append(bounds, start)
			}
		}
	}
	bounds = append(bounds, len(lines))

	defs := make([]string, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		if def := trimBlankLines(lines[bounds[i]:bounds[i+1]]); def != "" {
			defs = append(defs, def)
		}
	}
	return defs
}

// attachStart walks up from the boundary line at i over attached lines,
// never past floor.
func attachStart(lines []string, i, floor int, attach []string) int {
	start := i
	for start-1 > floor && isAttached(lines[start-1], attach) {
		start--
	}
	return start
}

func isAttached(line string, attach []string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, prefix := range attach {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// trimBlankLines joins lines after dropping whitespace-only lines at both
// ends. Indentation of the first kept line is preserved.
func trimBlankLines(lines []string) string {
	first, last := 0, len(lines)
	for first < last && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	for last > first && strings.TrimSpace(lines[last-1]) == "" {
		last--
	}
	if first == last {
		return ""
	}
	return strings.TrimRight(strings.Join(lines[first:last], "\n"), " \t\r")
}
