package tabular

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func normalise(t *testing.T, name, ext string, content []byte) string {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		FileName:  name,
		Extension: ext,
		Category:  domain.CategoryTabular,
		Content:   content,
	})
	require.NoError(t, err)
	return result.Text
}

func TestNormalise_CSV(t *testing.T) {
	csv := "region,product,revenue\nnorth,widget,100\nsouth,,250\n"

	got := normalise(t, "sales.csv", ".csv", []byte(csv))

	assert.Equal(t, "region: north, product: widget, revenue: 100\nregion: south, revenue: 250", got)
}

func TestNormalise_TSV(t *testing.T) {
	got := normalise(t, "data.tsv", ".tsv", []byte("a\tb\n1\t2\n"))

	assert.Equal(t, "a: 1, b: 2", got)
}

func TestNormalise_HeaderOnly(t *testing.T) {
	assert.Empty(t, normalise(t, "empty.csv", ".csv", []byte("a,b,c\n")))
	assert.Empty(t, normalise(t, "blank.csv", ".csv", nil))
}

func TestNormalise_MalformedFallsBack(t *testing.T) {
	malformed := "name,quote\nbob,\"unterminated\n"

	got := normalise(t, "bad.csv", ".csv", []byte(malformed))

	assert.Equal(t, malformed, got)
}

func TestNormalise_CorruptWorkbookFallsBack(t *testing.T) {
	got := normalise(t, "old.xls", ".xls", []byte("not a workbook"))

	assert.Equal(t, "not a workbook", got)
}

func TestNormalise_Workbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"city", "population"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Lyon", 522000}))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]any{"note"}))
	require.NoError(t, f.SetSheetRow("Notes", "A2", &[]any{"estimate"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got := normalise(t, "cities.xlsx", ".xlsx", buf.Bytes())

	assert.Equal(t, "[Sheet: Sheet1]\ncity: Lyon, population: 522000\n[Sheet: Notes]\nnote: estimate", got)
}

func TestRowSentence(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		row    []string
		want   string
	}{
		{"full row", []string{"a", "b"}, []string{"1", "2"}, "a: 1, b: 2"},
		{"empty cells skipped", []string{"a", "b", "c"}, []string{"", "2", " "}, "b: 2"},
		{"extra cells named", []string{"a"}, []string{"1", "2"}, "a: 1, column_2: 2"},
		{"all empty", []string{"a"}, []string{""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RowSentence(tt.header, tt.row))
		})
	}
}
