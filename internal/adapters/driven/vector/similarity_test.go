package vector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func retrieved(doc string, idx int, score float64) domain.RetrievedSegment {
	return domain.RetrievedSegment{
		Score:    score,
		Metadata: domain.SegmentMetadata{DocumentID: doc, ChunkIndex: idx},
	}
}

func TestRank(t *testing.T) {
	results := []domain.RetrievedSegment{
		retrieved("a", 0, 0.2),
		retrieved("a", 1, 0.9),
		retrieved("b", 0, 0.5),
		retrieved("a", 2, 0.5),
		retrieved("b", 1, 0.7),
	}

	got := Rank(results, 3, 0.3)

	assert.Len(t, got, 3)
	assert.Equal(t, 0.9, got[0].Score)
	assert.Equal(t, 0.7, got[1].Score)
	assert.Equal(t, "a", got[2].Metadata.DocumentID)
	assert.Equal(t, 2, got[2].Metadata.ChunkIndex)
}

func TestRank_NoLimit(t *testing.T) {
	results := []domain.RetrievedSegment{retrieved("a", 0, 0.1), retrieved("a", 1, 0.4)}

	got := Rank(results, 0, 0)

	assert.Len(t, got, 2)
	assert.Equal(t, 0.4, got[0].Score)
}

func TestValidate(t *testing.T) {
	segs := []domain.Segment{{ID: "1"}, {ID: "2"}}

	assert.NoError(t, Validate(segs, [][]float32{{1, 0}, {0, 1}}))

	err := Validate(segs, [][]float32{{1, 0}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = Validate(segs, [][]float32{{1, 0}, {1}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = Validate(segs, [][]float32{{1, 0}, {}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
