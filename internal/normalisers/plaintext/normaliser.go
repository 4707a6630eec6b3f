// Package plaintext extracts text from prose and source code files.
package plaintext

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and source code documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryPlainText, domain.CategorySourceCode}
}

// SupportedExtensions returns nil: every plain text and code extension.
func (n *Normaliser) SupportedExtensions() []string {
	return nil
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the raw bytes. It never fails on content; invalid
// byte sequences are dropped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	return &driven.NormaliseResult{Text: normalisers.DecodeText(raw.Content)}, nil
}
