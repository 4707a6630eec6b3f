// Package window provides the fixed-size sliding window segmentation
// strategy. It is the default for tabular and structured content and the
// universal fallback for every other strategy.
package window

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/assemble"
)

// Name is the strategy name used in configuration.
const Name = "window"

// DefaultSize is the default window length in characters.
const DefaultSize = 1200

// DefaultOverlap is the default number of characters shared by
// consecutive windows.
const DefaultOverlap = 200

// Ensure Strategy implements the interface.
var _ driven.SegmentationStrategy = (*Strategy)(nil)

// Strategy splits text into overlapping fixed-size windows.
type Strategy struct {
	size    int
	overlap int
	counter assemble.TokenCounter
}

// Option configures the window strategy.
type Option func(*Strategy)

// WithSize sets the window length in characters.
func WithSize(size int) Option {
	return func(s *Strategy) {
		s.size = size
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(s *Strategy) {
		s.overlap = overlap
	}
}

// WithTokenCounter sets the token estimator recorded in segment metadata.
func WithTokenCounter(c assemble.TokenCounter) Option {
	return func(s *Strategy) {
		s.counter = c
	}
}

// New creates a window strategy. The window must be longer than the
// overlap and the overlap must not be negative.
func New(opts ...Option) (*Strategy, error) {
	s := &Strategy{
		size:    DefaultSize,
		overlap: DefaultOverlap,
		counter: assemble.WordCounter{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.size <= 0 || s.overlap < 0 || s.size <= s.overlap {
		return nil, fmt.Errorf("%w: window size %d must exceed overlap %d",
			domain.ErrInvalidInput, s.size, s.overlap)
	}
	return s, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// Size returns the window length in characters.
func (s *Strategy) Size() int {
	return s.size
}

// Overlap returns the overlap in characters.
func (s *Strategy) Overlap() int {
	return s.overlap
}

// Counter returns the token estimator.
func (s *Strategy) Counter() assemble.TokenCounter {
	return s.counter
}

// Segment splits the whole text. Source code keeps its language tag. It
// never fails.
func (s *Strategy) Segment(ctx context.Context, src driven.SegmentSource) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var extra assemble.Extra
	if src.Category == domain.CategorySourceCode {
		extra.Language = src.Language
	}

	asm := assemble.New(src.DocumentID, src.FileName, s.counter)
	s.Append(asm, src.Text, extra)
	return asm.Segments(), nil
}

// Append splits text and adds every window to the assembler with the
// given metadata. Used by other strategies for oversized spans.
func (s *Strategy) Append(asm *assemble.Assembler, text string, extra assemble.Extra) {
	for _, w := range Split(text, s.size, s.overlap) {
		asm.Add(w, extra)
	}
}

// Fits reports whether text fits in a single window.
func (s *Strategy) Fits(text string) bool {
	return utf8.RuneCountInString(text) <= s.size
}

// Split returns windows of size characters starting every size-overlap
// characters. The last window may be shorter. Windows that are empty
// after trimming are dropped, and the walk stops at the first window that
// reaches the end of the text.
func Split(text string, size, overlap int) []string {
	if text == "" || size <= 0 || overlap < 0 || size <= overlap {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	stride := size - overlap

	windows := make([]string, 0, n/stride+1)
	for start := 0; start < n; start += stride {
		end := start + size
		if end > n {
			end = n
		}
		if w := string(runes[start:end]); strings.TrimSpace(w) != "" {
			windows = append(windows, w)
		}
		if end == n {
			break
		}
	}
	return windows
}
