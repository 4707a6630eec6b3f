// Package docx converts Word documents into a structural tree.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryRichDocument}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise converts a DOCX document into a tree of headings, paragraphs,
// list items and tables.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}

	body, err := readEntry(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}

	tree, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}
	if title := extractTitle(reader); title != "" {
		tree.Title = title
	}

	return &driven.NormaliseResult{Text: tree.PlainText(), Tree: tree}, nil
}

func readEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// paragraphState accumulates one <w:p>.
type paragraphState struct {
	text  strings.Builder
	style string
	list  bool
}

// parseDocument streams word/document.xml. Paragraphs inside a table are
// collected into cells and emitted as one table item with " | " between
// cells and a newline between rows.
func parseDocument(content []byte) (*domain.DocumentTree, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	tree := &domain.DocumentTree{}

	var (
		para      *paragraphState
		inText    bool
		tblDepth  int
		rows      []string
		cells     []string
		cellText  []string
		page      = 1
		tablePage = 1
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				if tblDepth == 0 {
					rows = nil
					tablePage = page
				}
				tblDepth++
			case "tr":
				cells = nil
			case "tc":
				cellText = nil
			case "p":
				para = &paragraphState{}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "numPr":
				if para != nil {
					para.list = true
				}
			case "t":
				inText = para != nil
			case "tab":
				if para != nil {
					para.text.WriteString("\t")
				}
			case "br":
				if attr(t, "type") == "page" {
					page++
				}
			}

		case xml.CharData:
			if inText {
				para.text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para == nil {
					continue
				}
				text := strings.TrimSpace(para.text.String())
				if tblDepth > 0 {
					if text != "" {
						cellText = append(cellText, text)
					}
				} else if text != "" {
					tree.Items = append(tree.Items, paragraphItem(text, para, page))
				}
				para = nil
			case "tc":
				cells = append(cells, strings.Join(cellText, " "))
			case "tr":
				if row := strings.TrimSpace(strings.Join(cells, " | ")); strings.Trim(row, "| ") != "" {
					rows = append(rows, row)
				}
			case "tbl":
				tblDepth--
				if tblDepth == 0 && len(rows) > 0 {
					tree.Items = append(tree.Items, domain.DocItem{
						Text: strings.Join(rows, "\n"),
						Kind: domain.ItemTable,
						Page: tablePage,
					})
				}
			}
		}
	}

	return tree, nil
}

func paragraphItem(text string, para *paragraphState, page int) domain.DocItem {
	item := domain.DocItem{Text: text, Kind: domain.ItemParagraph, Page: page}
	switch level := headingLevel(para.style); {
	case strings.EqualFold(para.style, "title"):
		item.Kind = domain.ItemTitle
		item.Level = 1
	case level > 0:
		item.Kind = domain.ItemSectionHeader
		item.Level = level
	case para.list || strings.HasPrefix(strings.ToLower(para.style), "list"):
		item.Kind = domain.ItemListItem
	}
	return item
}

// headingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" → 1, "Subtitle" → 2.
func headingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimSpace(lower[len(prefix):])
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml.
func extractTitle(reader *zip.Reader) string {
	content, err := readEntry(reader, "docProps/core.xml")
	if err != nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
