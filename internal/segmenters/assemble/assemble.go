// Package assemble wraps text spans into segments with provenance metadata.
package assemble

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// TokenCounter estimates the token count of a span.
type TokenCounter interface {
	Count(text string) int
}

// WordCounter estimates tokens as whitespace separated words.
type WordCounter struct{}

// Count returns the number of words in text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// Extra carries the optional metadata a strategy attaches to a span.
type Extra struct {
	Language     string
	SectionTitle string
	ElementType  string
	PageNumber   int
}

// Assemble builds the segment for one span. It returns false when the
// span is empty after trimming; such spans never become segments.
func Assemble(span, fileName, documentID string, ordinal int, extra Extra, counter TokenCounter) (domain.Segment, bool) {
	if strings.TrimSpace(span) == "" {
		return domain.Segment{}, false
	}
	if counter == nil {
		counter = WordCounter{}
	}
	return domain.Segment{
		ID:      uuid.New().String(),
		Content: span,
		Metadata: domain.SegmentMetadata{
			DocumentID:   documentID,
			FileName:     fileName,
			ChunkIndex:   ordinal,
			CharCount:    utf8.RuneCountInString(span),
			TokenCount:   counter.Count(span),
			Language:     extra.Language,
			SectionTitle: extra.SectionTitle,
			ElementType:  extra.ElementType,
			PageNumber:   extra.PageNumber,
		},
	}, true
}

// Assembler accumulates the segments of one document. It owns the ordinal
// so chunk indices stay contiguous from 0 whichever strategies add spans.
type Assembler struct {
	documentID string
	fileName   string
	counter    TokenCounter
	segments   []domain.Segment
}

// New creates an assembler for one document.
func New(documentID, fileName string, counter TokenCounter) *Assembler {
	if counter == nil {
		counter = WordCounter{}
	}
	return &Assembler{documentID: documentID, fileName: fileName, counter: counter}
}

// Add assembles a span at the next ordinal. Empty spans are skipped and
// do not consume an ordinal.
func (a *Assembler) Add(span string, extra Extra) bool {
	seg, ok := Assemble(span, a.fileName, a.documentID, len(a.segments), extra, a.counter)
	if ok {
		a.segments = append(a.segments, seg)
	}
	return ok
}

// Next returns the ordinal the next segment will receive.
func (a *Assembler) Next() int {
	return len(a.segments)
}

// Segments returns the accumulated segments in order.
func (a *Assembler) Segments() []domain.Segment {
	return a.segments
}

// Counter returns the token counter in use.
func (a *Assembler) Counter() TokenCounter {
	return a.counter
}
