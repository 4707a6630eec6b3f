package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// VectorIndex stores segments with their embeddings and answers
// similarity queries.
type VectorIndex interface {
	// Upsert writes segments keyed by segment ID. vectors[i] belongs to
	// segments[i]. The write is a single batch.
	Upsert(ctx context.Context, segments []domain.Segment, vectors [][]float32) error

	// Search returns up to limit segments with similarity >= minScore,
	// best first.
	Search(ctx context.Context, query []float32, limit int, minScore float64) ([]domain.RetrievedSegment, error)

	// ListDocuments returns one entry per indexed document.
	ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error)

	// DeleteDocument removes every segment of a document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Stats returns index totals.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Close releases resources.
	Close() error
}
