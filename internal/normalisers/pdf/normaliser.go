// Package pdf converts PDF documents into a page-aware structural tree
// using pdfcpu content streams.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryRichDocument}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise extracts one paragraph item per text block of each page.
// Scanned documents without a text layer fail with ErrConversionFailed.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw.Content), conf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", raw.FileName, domain.ErrConversionFailed, err)
	}

	tree := &domain.DocumentTree{}
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		for _, block := range splitBlocks(pageText(pdfCtx, pageNr)) {
			tree.Items = append(tree.Items, domain.DocItem{
				Text: block,
				Kind: domain.ItemParagraph,
				Page: pageNr,
			})
		}
	}

	if len(tree.Items) == 0 {
		return nil, fmt.Errorf("%s has no text layer: %w", raw.FileName, domain.ErrConversionFailed)
	}
	tree.Title = firstLine(tree.Items[0].Text)

	return &driven.NormaliseResult{Text: tree.PlainText(), Tree: tree}, nil
}

// pageText extracts text from a single page via its content stream.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return ExtractStreamText(data)
}

// pdfStringRe matches PDF string literals in parentheses, escapes included.
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// ExtractStreamText reads text showing operators from a content stream.
// Positioning operators start a new line and each BT/ET text object
// ends with a blank line.
func ExtractStreamText(data []byte) string {
	var sb strings.Builder

	newline := func() {
		s := sb.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			sb.WriteByte('\n')
		}
	}
	blankLine := func() {
		newline()
		if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n\n") {
			sb.WriteByte('\n')
		}
	}

	for _, rawLine := range bytes.Split(data, []byte{'\n'}) {
		line := bytes.TrimSpace(rawLine)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.Equal(line, []byte("ET")):
			blankLine()
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte(`"`)):
			newline()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")),
			bytes.Equal(line, []byte("T*")):
			newline()
		}
	}

	return strings.TrimSpace(sb.String())
}

// decodeString handles PDF literal string escape sequences.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			// Octal escape, up to three digits.
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return strings.ToValidUTF8(sb.String(), "")
}

// splitBlocks groups page lines into blocks separated by blank lines and
// normalises whitespace inside each line.
func splitBlocks(text string) []string {
	var (
		blocks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if r := []rune(line); len(r) > 200 {
		line = string(r[:200])
	}
	return line
}
