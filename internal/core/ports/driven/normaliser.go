package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Normaliser extracts text from raw uploads of one or more categories.
type Normaliser interface {
	// SupportedCategories returns the content categories this normaliser handles.
	SupportedCategories() []domain.Category

	// SupportedExtensions narrows support to specific extensions.
	// Empty slice means every extension of the supported categories.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the document's text, and its structure when the
	// format has one.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Segmentation is handled by the Segmenter.
type NormaliseResult struct {
	// Text is the flat extracted text.
	Text string

	// Tree is the structural view. Only set for rich documents.
	Tree *domain.DocumentTree
}
