package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vector"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert writes all segments in one transaction.
func (v *vectorIndex) Upsert(ctx context.Context, segments []domain.Segment, vectors [][]float32) error {
	if err := vector.Validate(segments, vectors); err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, document_id, file_name, chunk_index, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			file_name = excluded.file_name,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i, seg := range segments {
		metadataJSON, err := json.Marshal(seg.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, seg.ID, seg.Metadata.DocumentID, seg.Metadata.FileName,
			seg.Metadata.ChunkIndex, seg.Content, string(metadataJSON), float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("saving segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing segments: %w", err)
	}
	return nil
}

// Search scans every stored embedding and ranks by cosine similarity.
func (v *vectorIndex) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]domain.RetrievedSegment, error) {
	rows, err := v.store.db.QueryContext(ctx, `SELECT content, metadata, embedding FROM segments`)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedSegment
	for rows.Next() {
		var content, metadataJSON string
		var blob []byte
		if err := rows.Scan(&content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			continue
		}
		var metadata domain.SegmentMetadata
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		results = append(results, domain.RetrievedSegment{
			Content:  content,
			Score:    vector.Cosine(query, embedding),
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	return vector.Rank(results, limit, minScore), nil
}

// ListDocuments groups segments by document.
func (v *vectorIndex) ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT document_id, file_name, COUNT(*)
		FROM segments
		GROUP BY document_id, file_name
		ORDER BY file_name, document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.IndexedDocument, 0)
	for rows.Next() {
		var doc domain.IndexedDocument
		if err := rows.Scan(&doc.DocumentID, &doc.FileName, &doc.Segments); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes every segment of a document. Deleting an
// unknown document is not an error.
func (v *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := v.store.db.ExecContext(ctx, "DELETE FROM segments WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting document segments: %w", err)
	}
	return nil
}

// Stats returns document and segment counts.
func (v *vectorIndex) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats := &domain.IndexStats{Backend: BackendName}
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT document_id), COUNT(*) FROM segments",
	).Scan(&stats.Documents, &stats.Segments)
	if err != nil {
		return nil, fmt.Errorf("counting segments: %w", err)
	}
	return stats, nil
}

// Close is a no-op; the Store owns the connection.
func (v *vectorIndex) Close() error {
	return nil
}
