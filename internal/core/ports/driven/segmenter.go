package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SegmentSource is the extracted content of one document.
type SegmentSource struct {
	DocumentID string
	FileName   string
	Category   domain.Category

	// Language is set for source code.
	Language string

	// Text is the flat extracted text. Always set.
	Text string

	// Tree is the structural view of rich documents.
	Tree *domain.DocumentTree
}

// SegmentResult is the output of segmenting one document.
type SegmentResult struct {
	// Segments are ordered with contiguous chunk indices from 0.
	Segments []domain.Segment

	// Strategy is the name of the strategy that produced Segments.
	Strategy string

	// FellBack is true when the primary strategy failed and the
	// sliding window produced the segments instead.
	FellBack bool

	// Reason describes the primary strategy's failure when FellBack is set.
	Reason string
}

// SegmentationStrategy turns a source into segments.
type SegmentationStrategy interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Segment splits the source. An error means the caller should degrade.
	Segment(ctx context.Context, src SegmentSource) ([]domain.Segment, error)
}

// Segmenter selects a strategy per category and applies fallbacks.
type Segmenter interface {
	Segment(ctx context.Context, src SegmentSource) (*SegmentResult, error)
}
