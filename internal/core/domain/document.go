package domain

import "strings"

// ItemKind labels the content kind of a structural item.
type ItemKind string

// Item kinds produced by rich document conversion.
const (
	ItemTitle         ItemKind = "title"
	ItemSectionHeader ItemKind = "section_header"
	ItemParagraph     ItemKind = "paragraph"
	ItemListItem      ItemKind = "list_item"
	ItemTable         ItemKind = "table"
	ItemCode          ItemKind = "code"
)

// IsHeading returns true for title and section header items.
func (k ItemKind) IsHeading() bool {
	return k == ItemTitle || k == ItemSectionHeader
}

// DocItem is one element of a converted rich document.
type DocItem struct {
	// Text is the item's textual content.
	Text string

	// Kind is the content kind of the item.
	Kind ItemKind

	// Level is the heading depth (1-6) for heading items, 0 otherwise.
	Level int

	// Page is the 1-based page number, 0 when unknown.
	Page int
}

// DocumentTree is the structural representation of a rich document
// in reading order.
type DocumentTree struct {
	// Title is the document title when one is known.
	Title string

	// Items are the document elements in reading order.
	Items []DocItem
}

// PlainText flattens the tree to text, one item per paragraph.
func (t *DocumentTree) PlainText() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Items))
	for _, item := range t.Items {
		if s := strings.TrimSpace(item.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// SegmentMetadata describes where a segment came from.
// Optional fields are zero when the producing strategy does not set them.
type SegmentMetadata struct {
	DocumentID   string `json:"document_id"`
	FileName     string `json:"file_name"`
	ChunkIndex   int    `json:"chunk_index"`
	CharCount    int    `json:"char_count"`
	TokenCount   int    `json:"token_count"`
	Language     string `json:"language,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	ElementType  string `json:"element_type,omitempty"`
	PageNumber   int    `json:"page_number,omitempty"`
}

// Extension returns the lowercased file extension without the dot.
func (m SegmentMetadata) Extension() string {
	idx := strings.LastIndex(m.FileName, ".")
	if idx < 0 || idx == len(m.FileName)-1 {
		return ""
	}
	return strings.ToLower(m.FileName[idx+1:])
}

// Segment is a retrievable unit of text.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string `json:"id"`

	// Content is the segment text. Never empty after trimming.
	Content string `json:"content"`

	// Metadata describes the segment's provenance.
	Metadata SegmentMetadata `json:"metadata"`
}

// RetrievedSegment is a segment returned by similarity search.
type RetrievedSegment struct {
	// Content is the segment text.
	Content string `json:"content"`

	// Score is the similarity score, higher is closer.
	Score float64 `json:"score"`

	// Metadata is the stored segment metadata.
	Metadata SegmentMetadata `json:"metadata"`
}

// IndexedDocument summarises a document present in the vector index.
type IndexedDocument struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Segments   int    `json:"segments"`
}

// IndexStats reports vector index totals.
type IndexStats struct {
	Documents int    `json:"documents"`
	Segments  int    `json:"segments"`
	Backend   string `json:"backend"`
}

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	DocumentID string
	FileName   string
	Category   Category
	Language   string
	Strategy   string
	FellBack   bool
	Reason     string
	Segments   []Segment
}
