package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// FormatContext renders retrieved segments as labelled context blocks
// separated by blank lines.
func FormatContext(segments []domain.RetrievedSegment) string {
	blocks := make([]string, 0, len(segments))
	for i, seg := range segments {
		blocks = append(blocks, fmt.Sprintf("--- Context %d (%s) ---\n%s", i+1, label(seg.Metadata), seg.Content))
	}
	return strings.Join(blocks, "\n\n")
}

func label(meta domain.SegmentMetadata) string {
	source := meta.FileName
	if source == "" {
		source = "Unknown"
	}
	parts := []string{"Source: " + source}
	if meta.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("page %d", meta.PageNumber))
	}
	if meta.SectionTitle != "" {
		parts = append(parts, `section "`+meta.SectionTitle+`"`)
	}
	if meta.Language != "" {
		parts = append(parts, "language: "+meta.Language)
	}
	return strings.Join(parts, ", ")
}
