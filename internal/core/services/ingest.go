package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/formats"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// sniffLen is the number of leading bytes given to content sniffing.
const sniffLen = 262

// IngestService classifies, extracts, segments and indexes uploads.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	segmenter   driven.Segmenter
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	maxBytes    int64
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithMaxBytes rejects uploads larger than n bytes. Zero disables the check.
func WithMaxBytes(n int64) IngestOption {
	return func(s *IngestService) {
		s.maxBytes = n
	}
}

// NewIngestService creates a new ingest service.
// The embedder and index are optional; without them only Preview works.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	segmenter driven.Segmenter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		normalisers: normalisers,
		segmenter:   segmenter,
		embedder:    embedder,
		index:       index,
		maxBytes:    domain.IngestSettings{MaxFileSizeMB: domain.DefaultMaxFileSizeMB}.MaxBytes(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest indexes a file. Either every segment is written or none is.
func (s *IngestService) Ingest(ctx context.Context, fileName string, content []byte) (*domain.IngestResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Ingest")
	result, err := s.prepare(ctx, fileName, content)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(result.Segments))
	for i, seg := range result.Segments {
		texts[i] = seg.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed %s: %v", domain.ErrIndexingFailed, result.FileName, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embed %s: got %d vectors for %d segments",
			domain.ErrIndexingFailed, result.FileName, len(vectors), len(texts))
	}

	if err := s.index.Upsert(ctx, result.Segments, vectors); err != nil {
		// Remote backends may have applied part of the batch.
		if delErr := s.index.DeleteDocument(context.WithoutCancel(ctx), result.DocumentID); delErr != nil {
			logger.Warn("cleanup of %s failed: %v", result.DocumentID, delErr)
		}
		return nil, fmt.Errorf("%w: index %s: %v", domain.ErrIndexingFailed, result.FileName, err)
	}

	logger.Info("indexed %s as %s: %d segments (%s)",
		result.FileName, result.DocumentID, len(result.Segments), result.Strategy)
	return result, nil
}

// Preview segments a file without embedding or indexing it.
func (s *IngestService) Preview(ctx context.Context, fileName string, content []byte) (*domain.IngestResult, error) {
	return s.prepare(ctx, fileName, content)
}

func (s *IngestService) prepare(ctx context.Context, fileName string, content []byte) (*domain.IngestResult, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrFileTooLarge, fileName, len(content), s.maxBytes)
	}

	class := formats.ClassifyContent(fileName, content[:min(len(content), sniffLen)])
	if !class.Category.IsSupported() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, fileName)
	}
	logger.Debug("classified %s as %s (%s)", fileName, class.Category, class.Language)

	raw := &domain.RawDocument{
		DocumentID: uuid.NewString(),
		FileName:   fileName,
		Extension:  class.Extension,
		Category:   class.Category,
		Language:   class.Language,
		Content:    content,
	}
	norm, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", fileName, err)
	}

	src := driven.SegmentSource{
		DocumentID: raw.DocumentID,
		FileName:   fileName,
		Category:   class.Category,
		Text:       norm.Text,
		Tree:       norm.Tree,
	}
	// Only source code carries a language into segment metadata.
	if class.Category == domain.CategorySourceCode {
		src.Language = class.Language
	}

	seg, err := s.segmenter.Segment(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", fileName, err)
	}
	if len(seg.Segments) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, fileName)
	}

	return &domain.IngestResult{
		DocumentID: raw.DocumentID,
		FileName:   fileName,
		Category:   class.Category,
		Language:   class.Language,
		Strategy:   seg.Strategy,
		FellBack:   seg.FellBack,
		Reason:     seg.Reason,
		Segments:   seg.Segments,
	}, nil
}

// ListDocuments returns the documents in the index.
func (s *IngestService) ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	return s.index.ListDocuments(ctx)
}

// DeleteDocument removes a document's segments.
// Returns domain.ErrNotFound when the document is not indexed.
func (s *IngestService) DeleteDocument(ctx context.Context, documentID string) error {
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	docs, err := s.index.ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if d.DocumentID == documentID {
			return s.index.DeleteDocument(ctx, documentID)
		}
	}
	return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

// Stats returns index totals.
func (s *IngestService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	return s.index.Stats(ctx)
}
