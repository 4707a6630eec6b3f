// Package intent classifies a query into an answer mode.
//
// Classification is a pure in-memory scoring pass over three layers:
// metadata of the retrieved segments, weighted pattern banks matched
// against the query, and a context aware fallback.
package intent

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DefaultThreshold is the minimum score for a mode to activate.
const DefaultThreshold = domain.DefaultThreshold

// signalPatternLen caps the pattern text quoted in a signal.
const signalPatternLen = 40

// Classifier scores queries against the pattern banks.
// It is safe for concurrent use.
type Classifier struct {
	threshold int
}

// Option configures the classifier.
type Option func(*Classifier)

// WithThreshold sets the activation threshold. Values below 1 are ignored.
func WithThreshold(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// New creates a classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the activation threshold.
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Classify scores a query against the metadata of the retrieved segments.
// The same inputs always give the same result.
func (c *Classifier) Classify(query string, metas []domain.SegmentMetadata) domain.IntentResult {
	hasContext := len(metas) > 0
	scores := make(map[domain.Mode]int, len(priority))
	signals := make([]string, 0)

	for _, meta := range metas {
		if lang := strings.TrimSpace(meta.Language); lang != "" {
			scores[domain.ModeCodeArchitect] += 5
			scores[domain.ModeCodeDebugger] += 3
			signals = append(signals, "code language: "+lang)
		}
		if ext := meta.Extension(); tabularExtensions[ext] {
			scores[domain.ModeDataAnalyst] += 6
			signals = append(signals, "tabular file: ."+ext)
		}
		if strings.Contains(strings.ToLower(meta.ElementType), "table") {
			scores[domain.ModeDataAnalyst] += 3
			signals = append(signals, "table element in chunk")
		}
	}

	for _, b := range banks {
		for _, pat := range b.patterns {
			if !pat.matches(query) {
				continue
			}
			scores[b.mode] += pat.weight
			signals = append(signals, fmt.Sprintf("%s: +%d (%s)", b.mode, pat.weight, truncate(pat.source)))
		}
	}

	mode, score, activated := c.selectMode(scores)
	confidence := 0.1
	switch {
	case activated:
		confidence = math.Min(1, 0.5+float64(score)/20)
	case hasContext:
		confidence = 0.2
	}

	return domain.IntentResult{
		Mode:       mode,
		Label:      mode.Label(),
		Icon:       mode.Icon(),
		Confidence: confidence,
		HasContext: hasContext,
		Signals:    signals,
	}
}

// selectMode returns the highest priority mode at or over the threshold.
func (c *Classifier) selectMode(scores map[domain.Mode]int) (domain.Mode, int, bool) {
	for _, mode := range priority {
		if scores[mode] >= c.threshold {
			return mode, scores[mode], true
		}
	}
	return domain.ModeGeneral, 0, false
}

func truncate(s string) string {
	if len(s) <= signalPatternLen {
		return s
	}
	return s[:signalPatternLen]
}

var defaultClassifier = New()

// Classify scores a query with the default threshold.
func Classify(query string, metas []domain.SegmentMetadata) domain.IntentResult {
	return defaultClassifier.Classify(query, metas)
}
