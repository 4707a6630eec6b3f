package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vector"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// BackendName is reported in index statistics.
const BackendName = "memory"

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	segment domain.Segment
	vector  []float32
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Contents are lost when the process exits.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{entries: make(map[string]entry)}
}

// Upsert stores segments keyed by ID. Nothing is written when the batch
// is invalid.
func (v *VectorIndex) Upsert(_ context.Context, segments []domain.Segment, vectors [][]float32) error {
	if err := vector.Validate(segments, vectors); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, seg := range segments {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		v.entries[seg.ID] = entry{segment: seg, vector: vec}
	}
	return nil
}

// Search ranks every stored segment by cosine similarity.
func (v *VectorIndex) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]domain.RetrievedSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.RLock()
	results := make([]domain.RetrievedSegment, 0, len(v.entries))
	for _, e := range v.entries {
		if len(e.vector) != len(query) {
			continue
		}
		results = append(results, domain.RetrievedSegment{
			Content:  e.segment.Content,
			Score:    vector.Cosine(query, e.vector),
			Metadata: e.segment.Metadata,
		})
	}
	v.mu.RUnlock()
	return vector.Rank(results, limit, minScore), nil
}

// ListDocuments groups segments by document, sorted by file name.
func (v *VectorIndex) ListDocuments(_ context.Context) ([]domain.IndexedDocument, error) {
	v.mu.RLock()
	byID := make(map[string]*domain.IndexedDocument)
	for _, e := range v.entries {
		id := e.segment.Metadata.DocumentID
		doc, ok := byID[id]
		if !ok {
			doc = &domain.IndexedDocument{DocumentID: id, FileName: e.segment.Metadata.FileName}
			byID[id] = doc
		}
		doc.Segments++
	}
	v.mu.RUnlock()

	docs := make([]domain.IndexedDocument, 0, len(byID))
	for _, d := range byID {
		docs = append(docs, *d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].FileName != docs[j].FileName {
			return docs[i].FileName < docs[j].FileName
		}
		return docs[i].DocumentID < docs[j].DocumentID
	})
	return docs, nil
}

// DeleteDocument removes every segment of a document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, e := range v.entries {
		if e.segment.Metadata.DocumentID == documentID {
			delete(v.entries, id)
		}
	}
	return nil
}

// Stats returns document and segment counts.
func (v *VectorIndex) Stats(ctx context.Context) (*domain.IndexStats, error) {
	docs, err := v.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return &domain.IndexStats{
		Documents: len(docs),
		Segments:  len(v.entries),
		Backend:   BackendName,
	}, nil
}

// Close releases resources (no-op for memory index).
func (v *VectorIndex) Close() error {
	return nil
}
