package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// IngestService turns uploaded files into indexed segments.
type IngestService interface {
	// Ingest classifies, extracts, segments, embeds and indexes a file.
	// Either every segment is indexed or none is.
	Ingest(ctx context.Context, fileName string, content []byte) (*domain.IngestResult, error)

	// Preview runs classification, extraction and segmentation only.
	Preview(ctx context.Context, fileName string, content []byte) (*domain.IngestResult, error)

	// ListDocuments returns the documents in the index.
	ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error)

	// DeleteDocument removes a document's segments from the index.
	DeleteDocument(ctx context.Context, documentID string) error

	// Stats returns index totals.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
