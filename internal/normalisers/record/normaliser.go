// Package record flattens hierarchical records into "path: value" lines.
//
// Paths use dots for keys and brackets for indices, e.g.
// "server.ports[0]: 8080". JSON and YAML keep document key order;
// TOML keys are sorted because its decoded tables are unordered.
package record

import (
	"context"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles JSON, YAML and TOML files.
type Normaliser struct{}

// New creates a new record normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryStructured}
}

// SupportedExtensions returns nil: every structured extension.
func (n *Normaliser) SupportedExtensions() []string {
	return nil
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise flattens the record. When the content cannot be parsed the raw
// bytes are decoded as text instead; it never fails on content.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var (
		lines []string
		err   error
	)
	switch raw.Extension {
	case ".yaml", ".yml":
		lines, err = flattenYAML(raw.Content)
	case ".toml":
		lines, err = flattenTOML(raw.Content)
	default:
		lines, err = flattenJSON(raw.Content)
	}
	if err != nil {
		logger.Warn("record parse of %s failed, using raw text: %v", raw.FileName, err)
		return &driven.NormaliseResult{Text: normalisers.DecodeText(raw.Content)}, nil
	}
	return &driven.NormaliseResult{Text: strings.Join(lines, "\n")}, nil
}

// joinKey appends a key to a path.
func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// line renders a leaf. Root scalars have no path.
func line(path, value string) string {
	if path == "" {
		return value
	}
	return path + ": " + value
}
