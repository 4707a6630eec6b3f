// Package segmenters turns extracted document content into retrieval
// segments. The Engine picks a strategy per content category and falls
// back to the sliding window when the chosen strategy fails.
package segmenters

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/segmenters/code"
	"github.com/custodia-labs/docrag/internal/segmenters/heading"
	"github.com/custodia-labs/docrag/internal/segmenters/structural"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

// Ensure Engine implements the interface.
var _ driven.Segmenter = (*Engine)(nil)

// defaultRoutes maps each category to its strategy name. Categories not
// listed use the fallback window.
var defaultRoutes = map[domain.Category]string{
	domain.CategoryRichDocument: structural.Name,
	domain.CategoryPlainText:    heading.Name,
	domain.CategorySourceCode:   code.Name,
	domain.CategoryTabular:      window.Name,
	domain.CategoryStructured:   window.Name,
}

// Engine routes documents to segmentation strategies.
type Engine struct {
	routes   map[domain.Category]driven.SegmentationStrategy
	fallback driven.SegmentationStrategy
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithRoute overrides the strategy used for a category.
func WithRoute(category domain.Category, s driven.SegmentationStrategy) EngineOption {
	return func(e *Engine) {
		e.routes[category] = s
	}
}

// NewEngine builds every routed strategy from the registry using the
// effective per-strategy config. Misconfiguration is rejected here.
func NewEngine(r *Registry, settings domain.SegmentationSettings, opts ...EngineOption) (*Engine, error) {
	e := &Engine{routes: make(map[domain.Category]driven.SegmentationStrategy)}

	built := make(map[string]driven.SegmentationStrategy)
	build := func(name string) (driven.SegmentationStrategy, error) {
		if s, ok := built[name]; ok {
			return s, nil
		}
		s, err := r.Build(name, settings.StrategyConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build %s strategy: %w", name, err)
		}
		built[name] = s
		return s, nil
	}

	fallback, err := build(window.Name)
	if err != nil {
		return nil, err
	}
	e.fallback = fallback

	for category, name := range defaultRoutes {
		s, err := build(name)
		if err != nil {
			return nil, err
		}
		e.routes[category] = s
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StrategyFor returns the strategy name used for a category.
func (e *Engine) StrategyFor(category domain.Category) string {
	if s, ok := e.routes[category]; ok {
		return s.Name()
	}
	return e.fallback.Name()
}

// Segment splits a document with its category's strategy. A strategy
// error is logged and the flat text is re-segmented with the window.
func (e *Engine) Segment(ctx context.Context, src driven.SegmentSource) (*driven.SegmentResult, error) {
	strategy, ok := e.routes[src.Category]
	if !ok {
		strategy = e.fallback
	}

	segments, err := strategy.Segment(ctx, src)
	if err == nil {
		logger.Debug("segmented %s with %s: %d segments", src.FileName, strategy.Name(), len(segments))
		return &driven.SegmentResult{Segments: segments, Strategy: strategy.Name()}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	logger.Warn("%s strategy failed for %s, falling back to %s: %v",
		strategy.Name(), src.FileName, e.fallback.Name(), err)

	flat := src
	if flat.Text == "" {
		flat.Text = src.Tree.PlainText()
	}
	segments, fbErr := e.fallback.Segment(ctx, flat)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSegmentationFailed, src.FileName, fbErr)
	}
	return &driven.SegmentResult{
		Segments: segments,
		Strategy: e.fallback.Name(),
		FellBack: true,
		Reason:   err.Error(),
	}, nil
}
