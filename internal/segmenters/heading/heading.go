// Package heading segments plain text at Markdown style headings.
//
// Each heading starts a new section that keeps the heading line with its
// body. Sections that fit one window become one segment; larger sections
// are window split and every piece inherits the section title.
package heading

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/assemble"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

// Name is the strategy name used in configuration.
const Name = "heading"

// headingRe matches a heading marker at a line start.
var headingRe = regexp.MustCompile(`(?m)^#{1,6} `)

// Ensure Strategy implements the interface.
var _ driven.SegmentationStrategy = (*Strategy)(nil)

// Strategy splits text into heading sections.
type Strategy struct {
	window *window.Strategy
}

// New creates a heading strategy that window splits oversized sections.
func New(w *window.Strategy) *Strategy {
	return &Strategy{window: w}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Segment splits the text into sections. With no headings the whole text
// is a single section. It never fails.
func (s *Strategy) Segment(ctx context.Context, src driven.SegmentSource) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asm := assemble.New(src.DocumentID, src.FileName, s.window.Counter())
	for _, section := range Sections(src.Text) {
		extra := assemble.Extra{SectionTitle: Title(section)}
		if s.window.Fits(section) {
			asm.Add(section, extra)
			continue
		}
		s.window.Append(asm, section, extra)
	}
	return asm.Segments(), nil
}

// Sections splits text before every heading line. Sections are trimmed
// and empty ones are discarded.
func Sections(text string) []string {
	bounds := []int{0}
	for _, loc := range headingRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			bounds = append(bounds, loc[0])
		}
	}
	bounds = append(bounds, len(text))

	sections := make([]string, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		if section := strings.TrimSpace(text[bounds[i]:bounds[i+1]]); section != "" {
			sections = append(sections, section)
		}
	}
	return sections
}

// Title returns the heading text of a section whose first line is a
// heading, without the marker. Otherwise it returns "".
func Title(section string) string {
	first, _, _ := strings.Cut(section, "\n")
	if !headingRe.MatchString(first) {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(first, "#"))
}
