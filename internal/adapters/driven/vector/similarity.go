// Package vector holds the similarity helpers shared by the in-process
// vector index implementations.
package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Cosine returns the cosine similarity of two vectors.
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank sorts results best first, drops those below minScore and keeps at
// most limit. limit <= 0 keeps everything that passes the score filter.
// Equal scores keep document order.
func Rank(results []domain.RetrievedSegment, limit int, minScore float64) []domain.RetrievedSegment {
	kept := results[:0]
	for _, r := range results {
		if r.Score >= minScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if kept[i].Metadata.DocumentID != kept[j].Metadata.DocumentID {
			return kept[i].Metadata.DocumentID < kept[j].Metadata.DocumentID
		}
		return kept[i].Metadata.ChunkIndex < kept[j].Metadata.ChunkIndex
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// Validate checks that every segment has a vector and every vector has
// the same dimension.
func Validate(segments []domain.Segment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return fmt.Errorf("%w: %d segments but %d vectors", domain.ErrInvalidInput, len(segments), len(vectors))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector for segment %d", domain.ErrInvalidInput, i)
		}
		if len(v) != len(vectors[0]) {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", domain.ErrInvalidInput, i, len(v), len(vectors[0]))
		}
	}
	return nil
}
