package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

type stubNormaliser struct {
	name       string
	categories []domain.Category
	extensions []string
	priority   int
}

func (s *stubNormaliser) SupportedCategories() []domain.Category { return s.categories }
func (s *stubNormaliser) SupportedExtensions() []string         { return s.extensions }
func (s *stubNormaliser) Priority() int                         { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Text: s.name}, nil
}

func TestRegistry_SelectsByPriority(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{name: "fallback", categories: []domain.Category{domain.CategoryPlainText}, priority: 5},
		&stubNormaliser{name: "specific", categories: []domain.Category{domain.CategoryPlainText}, priority: 60},
	)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{Category: domain.CategoryPlainText, Extension: ".txt"})

	require.NoError(t, err)
	assert.Equal(t, "specific", result.Text)
}

func TestRegistry_SelectsByExtension(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{name: "pdf", categories: []domain.Category{domain.CategoryRichDocument}, extensions: []string{".pdf"}, priority: 60},
		&stubNormaliser{name: "html", categories: []domain.Category{domain.CategoryRichDocument}, extensions: []string{".html", ".htm"}, priority: 60},
	)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{Category: domain.CategoryRichDocument, Extension: ".htm"})

	require.NoError(t, err)
	assert.Equal(t, "html", result.Text)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{name: "text", categories: []domain.Category{domain.CategoryPlainText}, priority: 5})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{FileName: "a.csv", Category: domain.CategoryTabular})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NilDocument(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedCategories(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{categories: []domain.Category{domain.CategoryPlainText, domain.CategorySourceCode}, priority: 5},
		&stubNormaliser{categories: []domain.Category{domain.CategoryPlainText}, priority: 6},
	)

	assert.ElementsMatch(t,
		[]domain.Category{domain.CategoryPlainText, domain.CategorySourceCode},
		r.SupportedCategories())
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain", []byte("hello"), "hello"},
		{"bom stripped", []byte("\xEF\xBB\xBFhello"), "hello"},
		{"invalid bytes dropped", []byte("caf\xff\xfee"), "cafe"},
		{"crlf normalised", []byte("a\r\nb"), "a\nb"},
		{"utf8 kept", []byte("naïve"), "naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeText(tt.input))
		})
	}
}
