// Package html converts HTML documents into a structural tree.
package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryRichDocument}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise converts an HTML document into a tree of headings, paragraphs,
// list items, tables and code blocks. Boilerplate and hidden elements are
// skipped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := html.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}

	tree := &domain.DocumentTree{Title: findTitle(doc)}
	walk(doc, tree)

	if len(tree.Items) == 0 {
		if text := collectText(doc); text != "" {
			tree.Items = append(tree.Items, domain.DocItem{Text: text, Kind: domain.ItemParagraph})
		}
	}

	return &driven.NormaliseResult{Text: tree.PlainText(), Tree: tree}, nil
}

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "hidden" {
			return true
		}
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

func isSkipped(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Nav, atom.Footer, atom.Template:
		return true
	}
	return isHidden(n)
}

// findTitle extracts the <title> text.
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return collectText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// walk appends block-level elements to the tree in document order.
func walk(n *html.Node, tree *domain.DocumentTree) {
	if n.Type == html.ElementNode {
		if isSkipped(n) {
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			add(tree, collectText(n), domain.ItemSectionHeader, int(n.Data[1]-'0'))
			return
		case atom.P, atom.Blockquote, atom.Figcaption, atom.Dd, atom.Dt:
			add(tree, collectText(n), domain.ItemParagraph, 0)
			return
		case atom.Li:
			add(tree, collectText(n), domain.ItemListItem, 0)
			return
		case atom.Pre:
			add(tree, preText(n), domain.ItemCode, 0)
			return
		case atom.Table:
			add(tree, tableText(n), domain.ItemTable, 0)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, tree)
	}
}

func add(tree *domain.DocumentTree, text string, kind domain.ItemKind, level int) {
	if text == "" {
		return
	}
	tree.Items = append(tree.Items, domain.DocItem{Text: text, Kind: kind, Level: level})
}

// collectText extracts visible text from a subtree with whitespace collapsed.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			if isSkipped(n) {
				return
			}
			if n.DataAtom == atom.Br {
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// preText keeps the whitespace of preformatted blocks.
func preText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Trim(sb.String(), "\n")
}

// tableText renders one line per row with " | " between cells.
func tableText(table *html.Node) string {
	var rows []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					cells = append(cells, collectText(c))
				}
			}
			if row := strings.Join(cells, " | "); strings.Trim(row, "| ") != "" {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return strings.Join(rows, "\n")
}
