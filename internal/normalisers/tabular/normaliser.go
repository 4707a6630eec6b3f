// Package tabular renders row-oriented data as one sentence per row.
//
// Each row becomes "col1: v1, col2: v2" with empty cells skipped, so a
// row keeps its column names when it lands in a segment on its own.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV, TSV and spreadsheet files.
type Normaliser struct{}

// New creates a new tabular normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedCategories returns the categories this normaliser handles.
func (n *Normaliser) SupportedCategories() []domain.Category {
	return []domain.Category{domain.CategoryTabular}
}

// SupportedExtensions returns nil: every tabular extension.
func (n *Normaliser) SupportedExtensions() []string {
	return nil
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise renders rows as sentences. When the content cannot be parsed
// the raw bytes are decoded as text instead; it never fails on content.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var (
		text string
		err  error
	)
	switch raw.Extension {
	case ".xlsx", ".xlsm", ".xls":
		text, err = renderWorkbook(raw.Content)
	case ".tsv":
		text, err = renderDelimited(raw.Content, '\t')
	default:
		text, err = renderDelimited(raw.Content, ',')
	}
	if err != nil {
		logger.Warn("tabular parse of %s failed, using raw text: %v", raw.FileName, err)
		text = normalisers.DecodeText(raw.Content)
	}
	return &driven.NormaliseResult{Text: text}, nil
}

func renderDelimited(content []byte, comma rune) (string, error) {
	r := csv.NewReader(strings.NewReader(normalisers.DecodeText(content)))
	r.Comma = comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}

	var lines []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read row: %w", err)
		}
		if line := RowSentence(header, record); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func renderWorkbook(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		lines = append(lines, fmt.Sprintf("[Sheet: %s]", sheet))
		if len(rows) == 0 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			if line := RowSentence(header, row); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// RowSentence renders one row against its header. Empty cells are
// skipped; cells beyond the header are named column_N (1-based).
func RowSentence(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, ", ")
}
