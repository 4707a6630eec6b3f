package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func seg(id, doc, file string, idx int, content string) domain.Segment {
	return domain.Segment{
		ID:      id,
		Content: content,
		Metadata: domain.SegmentMetadata{
			DocumentID: doc,
			FileName:   file,
			ChunkIndex: idx,
		},
	}
}

func TestVectorIndex_UpsertAndSearch(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.Segment{
		seg("s1", "d1", "a.txt", 0, "north"),
		seg("s2", "d1", "a.txt", 1, "north east"),
		seg("s3", "d2", "b.txt", 0, "south"),
	}, [][]float32{{0, 1}, {1, 1}, {0, -1}}))

	results, err := idx.Search(ctx, []float32{0, 1}, 5, 0.3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "north", results[0].Content)
	assert.Equal(t, "north east", results[1].Content)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)

	results, err = idx.Search(ctx, []float32{0, 1}, 1, -1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestVectorIndex_UpsertCopiesVectors(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	vec := []float32{1, 0}
	require.NoError(t, idx.Upsert(ctx, []domain.Segment{seg("s1", "d1", "a.txt", 0, "x")}, [][]float32{vec}))
	vec[0], vec[1] = 0, 1

	results, err := idx.Search(ctx, []float32{1, 0}, 5, 0.9)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestVectorIndex_UpsertInvalidBatch(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []domain.Segment{seg("s1", "d1", "a.txt", 0, "x")}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Segments)
}

func TestVectorIndex_ListDeleteStats(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.Segment{
		seg("s1", "d1", "z.md", 0, "a"),
		seg("s2", "d1", "z.md", 1, "b"),
		seg("s3", "d2", "a.go", 0, "c"),
	}, [][]float32{{1}, {1}, {1}}))

	docs, err := idx.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.IndexedDocument{
		{DocumentID: "d2", FileName: "a.go", Segments: 1},
		{DocumentID: "d1", FileName: "z.md", Segments: 2},
	}, docs)

	require.NoError(t, idx.DeleteDocument(ctx, "d1"))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.IndexStats{Documents: 1, Segments: 1, Backend: BackendName}, stats)
	assert.NoError(t, idx.Close())
}

func TestVectorIndex_SearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVectorIndex().Search(ctx, []float32{1}, 5, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
