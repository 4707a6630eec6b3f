package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest priority normaliser
// that supports their category and extension.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise transforms a raw document using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	n := r.find(raw.Category, raw.Extension)
	if n == nil {
		return nil, fmt.Errorf("%s (%s): %w", raw.FileName, raw.Category, domain.ErrUnsupportedType)
	}
	return n.Normalise(ctx, raw)
}

// SupportedCategories returns all categories that can be normalised.
func (r *Registry) SupportedCategories() []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[domain.Category]bool)
	var out []domain.Category
	for _, n := range r.normalisers {
		for _, c := range n.SupportedCategories() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func (r *Registry) find(category domain.Category, ext string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		if !contains(n.SupportedCategories(), category) {
			continue
		}
		exts := n.SupportedExtensions()
		if len(exts) == 0 || contains(exts, ext) {
			return n
		}
	}
	return nil
}

func contains[T comparable](items []T, want T) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
