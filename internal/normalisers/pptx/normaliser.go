// Package pptx converts PowerPoint presentations into a structural tree
// with one page per slide.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

var slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX presentations.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryRichDocument}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pptx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise reads every slide in slide-number order. Title placeholders
// become section headers, tables become table items and the remaining
// text paragraphs become paragraphs, all paged by slide number.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}

	slides := slideFiles(reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("read %s: %w: no slides", raw.FileName, domain.ErrConversionFailed)
	}

	tree := &domain.DocumentTree{Title: presentationTitle(reader)}
	for _, s := range slides {
		content, err := readFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read %s slide %d: %w: %v", raw.FileName, s.number, domain.ErrConversionFailed, err)
		}
		items, err := parseSlide(content, s.number)
		if err != nil {
			return nil, fmt.Errorf("parse %s slide %d: %w: %v", raw.FileName, s.number, domain.ErrConversionFailed, err)
		}
		tree.Items = append(tree.Items, items...)
	}

	return &driven.NormaliseResult{Text: tree.PlainText(), Tree: tree}, nil
}

type slide struct {
	number int
	file   *zip.File
}

// slideFiles returns the slide parts ordered numerically, so slide10
// follows slide9.
func slideFiles(reader *zip.Reader) []slide {
	var out []slide
	for _, f := range reader.File {
		m := slidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, slide{number: num, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseSlide streams one slide part. Paragraphs inside a table are
// joined into cells with " | " and rows with newlines.
func parseSlide(content []byte, page int) ([]domain.DocItem, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		items       []domain.DocItem
		placeholder string
		para        *strings.Builder
		inText      bool
		tblDepth    int
		rows        []string
		cells       []string
		cellText    []string
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
			case "sp":
				placeholder = ""
			case "ph":
				placeholder = attr(t, "type")
			case "tbl":
				if tblDepth == 0 {
					rows = nil
				}
				tblDepth++
			case "tr":
				cells = nil
			case "tc":
				cellText = nil
			case "p":
				para = &strings.Builder{}
			case "t":
				inText = para != nil
			case "br":
				if para != nil {
					para.WriteString(" ")
				}
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para == nil {
					continue
				}
				text := strings.TrimSpace(para.String())
				para = nil
				if text == "" {
					continue
				}
				if tblDepth > 0 {
					cellText = append(cellText, text)
					continue
				}
				items = append(items, shapeItem(text, placeholder, page))
			case "sp":
				placeholder = ""
			case "tc":
				cells = append(cells, strings.Join(cellText, " "))
			case "tr":
				if row := strings.Join(cells, " | "); strings.Trim(row, "| ") != "" {
					rows = append(rows, row)
				}
			case "tbl":
				tblDepth--
				if tblDepth == 0 && len(rows) > 0 {
					items = append(items, domain.DocItem{
						Text: strings.Join(rows, "\n"),
						Kind: domain.ItemTable,
						Page: page,
					})
				}
			}
		}
	}

	return items, nil
}

func shapeItem(text, placeholder string, page int) domain.DocItem {
	item := domain.DocItem{Text: text, Kind: domain.ItemParagraph, Page: page}
	switch placeholder {
	case "title", "ctrTitle":
		item.Kind = domain.ItemSectionHeader
		item.Level = 1
	case "subTitle":
		item.Kind = domain.ItemSectionHeader
		item.Level = 2
	}
	return item
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// presentationTitle reads dc:title from docProps/core.xml.
func presentationTitle(reader *zip.Reader) string {
	for _, f := range reader.File {
		if f.Name != "docProps/core.xml" {
			continue
		}
		content, err := readFile(f)
		if err != nil {
			return ""
		}
		var core struct {
			Title string `xml:"title"`
		}
		if err := xml.Unmarshal(content, &core); err != nil {
			return ""
		}
		return strings.TrimSpace(core.Title)
	}
	return ""
}
