// Package qdrant implements the VectorIndex port against a Qdrant server
// over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vector"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const (
	// BackendName is reported in index statistics.
	BackendName = "qdrant"

	// DefaultURL is the default Qdrant REST endpoint.
	DefaultURL = "http://localhost:6333"

	// DefaultTimeout bounds each request.
	DefaultTimeout = 15 * time.Second

	// scrollPageSize is the number of points fetched per scroll page.
	scrollPageSize = 256

	// documentIDField is the payload path segments are filtered on.
	documentIDField = "metadata.document_id"
)

// Config holds the connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimensions int
	Timeout    time.Duration
}

// Index is a Qdrant-backed vector index. Points use cosine distance; the
// payload holds the segment content and its metadata.
type Index struct {
	baseURL    string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// New creates a Qdrant index client. No request is made until first use.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: qdrant url: %v", domain.ErrInvalidInput, err)
	}
	return &Index{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// payload is the stored point payload.
type payload struct {
	Content  string                 `json:"content"`
	Metadata domain.SegmentMetadata `json:"metadata"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

// Upsert writes every segment in one request, creating the collection on
// first write. Segment IDs must be UUIDs.
func (x *Index) Upsert(ctx context.Context, segments []domain.Segment, vectors [][]float32) error {
	if err := vector.Validate(segments, vectors); err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}
	if err := x.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	points := make([]point, len(segments))
	for i, seg := range segments {
		points[i] = point{
			ID:      seg.ID,
			Vector:  vectors[i],
			Payload: payload{Content: seg.Content, Metadata: seg.Metadata},
		}
	}
	body := map[string]any{"points": points}
	_, err := x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), body, nil)
	return err
}

// Search queries by vector with a server-side score threshold.
func (x *Index) Search(ctx context.Context, query []float32, limit int, minScore float64) ([]domain.RetrievedSegment, error) {
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	req := map[string]any{
		"vector":          query,
		"limit":           limit,
		"with_payload":    true,
		"score_threshold": minScore,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	status, err := x.do(ctx, http.MethodPost, x.collectionPath("/points/search"), req, &resp)
	if status == http.StatusNotFound {
		return []domain.RetrievedSegment{}, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedSegment, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.RetrievedSegment{
			Content:  r.Payload.Content,
			Score:    r.Score,
			Metadata: r.Payload.Metadata,
		})
	}
	return vector.Rank(results, limit, minScore), nil
}

// ListDocuments scrolls through every point's document fields.
func (x *Index) ListDocuments(ctx context.Context) ([]domain.IndexedDocument, error) {
	byID := make(map[string]*domain.IndexedDocument)
	var offset json.RawMessage

	for {
		req := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": []string{"metadata"},
			"with_vector":  false,
		}
		if len(offset) > 0 {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload payload `json:"payload"`
				} `json:"points"`
				NextPageOffset json.RawMessage `json:"next_page_offset"`
			} `json:"result"`
		}
		status, err := x.do(ctx, http.MethodPost, x.collectionPath("/points/scroll"), req, &resp)
		if status == http.StatusNotFound {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			md := p.Payload.Metadata
			doc, ok := byID[md.DocumentID]
			if !ok {
				doc = &domain.IndexedDocument{DocumentID: md.DocumentID, FileName: md.FileName}
				byID[md.DocumentID] = doc
			}
			doc.Segments++
		}

		next := resp.Result.NextPageOffset
		if len(next) == 0 || string(next) == "null" {
			break
		}
		offset = next
	}

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

// DeleteDocument removes every point whose payload names the document.
func (x *Index) DeleteDocument(ctx context.Context, documentID string) error {
	req := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{
					"key":   documentIDField,
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}
	status, err := x.do(ctx, http.MethodPost, x.collectionPath("/points/delete?wait=true"), req, nil)
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

// Stats aggregates the document listing.
func (x *Index) Stats(ctx context.Context) (*domain.IndexStats, error) {
	docs, err := x.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.IndexStats{Documents: len(docs), Backend: BackendName}
	for _, d := range docs {
		stats.Segments += d.Segments
	}
	return stats, nil
}

// Ping checks the server is reachable.
func (x *Index) Ping(ctx context.Context) error {
	_, err := x.do(ctx, http.MethodGet, "/collections", nil, nil)
	return err
}

// Close releases idle connections.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection and its document id payload
// index when missing. dims overrides the configured dimension when the
// latter is unset.
func (x *Index) ensureCollection(ctx context.Context, dims int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ready {
		return nil
	}

	status, err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, nil)
	switch {
	case err == nil:
		x.ready = true
		return nil
	case status != http.StatusNotFound:
		return err
	}

	size := x.dimensions
	if size <= 0 {
		size = dims
	}
	if size != dims {
		return fmt.Errorf("%w: vectors have %d dimensions, collection is configured for %d",
			domain.ErrInvalidInput, dims, size)
	}

	logger.Info("creating qdrant collection %s (%d dimensions)", x.collection, size)
	create := map[string]any{
		"vectors": map[string]any{"size": size, "distance": "Cosine"},
	}
	if _, err := x.do(ctx, http.MethodPut, x.collectionPath(""), create, nil); err != nil {
		return err
	}
	index := map[string]any{"field_name": documentIDField, "field_schema": "keyword"}
	if _, err := x.do(ctx, http.MethodPut, x.collectionPath("/index?wait=true"), index, nil); err != nil {
		return err
	}
	x.ready = true
	return nil
}

func (x *Index) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(x.collection) + suffix
}

// do sends a JSON request and decodes a JSON response into out when set.
// The HTTP status is returned even on error so callers can treat 404 as
// an empty collection.
func (x *Index) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create qdrant request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode qdrant response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
