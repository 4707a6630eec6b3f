package segmenters

import (
	"errors"
	"testing"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/segmenters/structural"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{
		"int":     7,
		"int64":   int64(8),
		"float64": float64(9),
		"zero":    0,
		"string":  "10",
	}

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"int", 7, true},
		{"int64", 8, true},
		{"float64", 9, true},
		{"zero", 0, true},
		{"string", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		got, ok := getIntFromConfig(cfg, tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("getIntFromConfig(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildWindow_FromConfig(t *testing.T) {
	s, err := buildWindow(map[string]any{"window_size": int64(500), "overlap": float64(50)})
	if err != nil {
		t.Fatalf("buildWindow failed: %v", err)
	}
	w := s.(*window.Strategy)
	if w.Size() != 500 || w.Overlap() != 50 {
		t.Errorf("got size %d overlap %d, want 500 and 50", w.Size(), w.Overlap())
	}
}

func TestBuildWindow_ZeroOverlap(t *testing.T) {
	s, err := buildWindow(map[string]any{"overlap": 0})
	if err != nil {
		t.Fatalf("buildWindow failed: %v", err)
	}
	if got := s.(*window.Strategy).Overlap(); got != 0 {
		t.Errorf("expected overlap 0, got %d", got)
	}
}

func TestBuildWindow_NilConfigUsesDefaults(t *testing.T) {
	s, err := buildWindow(nil)
	if err != nil {
		t.Fatalf("buildWindow failed: %v", err)
	}
	w := s.(*window.Strategy)
	if w.Size() != window.DefaultSize || w.Overlap() != window.DefaultOverlap {
		t.Errorf("expected defaults, got %d/%d", w.Size(), w.Overlap())
	}
}

func TestBuild_RejectsOverlapNotBelowSize(t *testing.T) {
	for _, build := range []BuilderFunc{buildWindow, buildHeading, buildCode, buildStructural} {
		_, err := build(map[string]any{"window_size": 100, "overlap": 100})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	}
}

func TestBuildStructural_MaxTokens(t *testing.T) {
	s, err := buildStructural(map[string]any{"max_tokens": 128})
	if err != nil {
		t.Fatalf("buildStructural failed: %v", err)
	}
	if got := s.(*structural.Strategy).MaxTokens(); got != 128 {
		t.Errorf("expected 128, got %d", got)
	}
}
