package segmenters

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/code"
	"github.com/custodia-labs/docrag/internal/segmenters/heading"
	"github.com/custodia-labs/docrag/internal/segmenters/structural"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

// Config keys read by the default builders.
const (
	KeyWindowSize = "window_size"
	KeyOverlap    = "overlap"
	KeyMaxTokens  = "max_tokens"
)

// RegisterDefaults registers all built-in strategies with the registry.
// Call this during application initialisation to enable standard strategies.
func RegisterDefaults(r *Registry) {
	r.Register(window.Name, buildWindow)
	r.Register(heading.Name, buildHeading)
	r.Register(code.Name, buildCode)
	r.Register(structural.Name, buildStructural)
}

// DefaultRegistry returns a registry with the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildWindow creates a window strategy from generic config.
// Supported config keys:
//   - window_size (int): Characters per window (default: 1200)
//   - overlap (int): Overlapping characters between windows (default: 200)
func buildWindow(cfg map[string]any) (driven.SegmentationStrategy, error) {
	return newWindow(cfg)
}

// buildHeading creates a heading strategy. Oversized sections are split
// with a window built from the same config.
func buildHeading(cfg map[string]any) (driven.SegmentationStrategy, error) {
	w, err := newWindow(cfg)
	if err != nil {
		return nil, err
	}
	return heading.New(w), nil
}

// buildCode creates a code strategy. Oversized definitions are split
// with a window built from the same config.
func buildCode(cfg map[string]any) (driven.SegmentationStrategy, error) {
	w, err := newWindow(cfg)
	if err != nil {
		return nil, err
	}
	return code.New(w), nil
}

// buildStructural creates a structural strategy.
// Supported config keys, in addition to the window keys:
//   - max_tokens (int): Token ceiling for merged spans (default: 512)
func buildStructural(cfg map[string]any) (driven.SegmentationStrategy, error) {
	w, err := newWindow(cfg)
	if err != nil {
		return nil, err
	}

	var opts []structural.Option
	if n, ok := getIntFromConfig(cfg, KeyMaxTokens); ok {
		opts = append(opts, structural.WithMaxTokens(n))
	}
	return structural.New(w, opts...), nil
}

func newWindow(cfg map[string]any) (*window.Strategy, error) {
	var opts []window.Option
	if size, ok := getIntFromConfig(cfg, KeyWindowSize); ok && size > 0 {
		opts = append(opts, window.WithSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, KeyOverlap); ok {
		opts = append(opts, window.WithOverlap(overlap))
	}
	return window.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
