package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Columns:   []string{"city", "pop"},
		StartRow:  0,
		TotalRows: 1204,
		Rows: []tablewindow.Row{
			{"city": "Paris", "pop": float64(2148000)},
			{"city": "Oslo", "pop": nil},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, typ := range Types() {
		f, err := NewFormatter(FormatterType(typ))
		require.NoError(t, err, typ)
		assert.NotNil(t, f)
	}
	f, err := NewFormatter("")
	require.NoError(t, err)
	assert.IsType(t, &TableFormatter{}, f)

	_, err = NewFormatter("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml")
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "Rows 0  Columns 0", Header(0, 0))
	assert.Equal(t, "Rows 1,204  Columns 7", Header(1204, 7))
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{float64(3), "3"},
		{float64(-2.5), "-2.5"},
		{float64(1e20), "1e+20"},
		{7, "7"},
		{int64(8), "8"},
		{[]any{1}, "[1]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cell(tt.in), "%v", tt.in)
	}
}

func TestTableFormatter(t *testing.T) {
	cfg := DefaultTableConfig()
	cfg.HeaderColor = ""
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatterWithConfig(cfg).FormatTable(sampleTable(), &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Rows 1,204  Columns 2", lines[0])
	assert.Equal(t, "     city   pop", lines[1])
	assert.Equal(t, "---  -----  -------", lines[2])
	assert.Equal(t, "1    Paris  2148000", lines[3])
	assert.Equal(t, "2    Oslo", lines[4])
}

func TestTableFormatterRowNumbersFollowStartRow(t *testing.T) {
	tbl := sampleTable()
	tbl.StartRow = 120
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().FormatTable(tbl, &buf))
	assert.Contains(t, buf.String(), "121  ")
	assert.Contains(t, buf.String(), "122  ")
}

func TestTableFormatterNoColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().FormatTable(Table{}, &buf))
	assert.Equal(t, "Rows 0  Columns 0\n", buf.String())
}

func TestTableFormatterTruncatesWideCells(t *testing.T) {
	cfg := DefaultTableConfig()
	cfg.HeaderColor = ""
	cfg.ShowHeader = false
	cfg.ShowRowNumbers = false
	cfg.MaxColumnWidth = 5
	tbl := Table{Columns: []string{"v"}, Rows: []tablewindow.Row{{"v": "abcdefgh\nij"}}}

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatterWithConfig(cfg).FormatTable(tbl, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "abcd…", lines[2])
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", Fit("ab", 5))
	assert.Equal(t, "a b", Fit("a\nb", 3))
	assert.Equal(t, "日…", Fit("日本語", 3))
}

func TestJSONFormatter(t *testing.T) {
	tbl := sampleTable()
	tbl.StartRow = 10
	var buf bytes.Buffer
	require.NoError(t, JSONFormatter{}.FormatTable(tbl, &buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.EqualValues(t, 1204, doc["total_rows"])
	assert.EqualValues(t, 10, doc["start_row"])
	assert.EqualValues(t, 12, doc["end_row"])
	assert.Equal(t, []any{"city", "pop"}, doc["columns"])
	assert.Len(t, doc["rows"], 2)
}

func TestJSONFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormatter{}.FormatTable(Table{}, &buf))
	assert.Contains(t, buf.String(), `"columns": []`)
	assert.Contains(t, buf.String(), `"rows": []`)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVFormatter{}.FormatTable(sampleTable(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"city", "pop"},
		{"Paris", "2148000"},
		{"Oslo", ""},
	}, records)
}

func TestTableFromPage(t *testing.T) {
	assert.Equal(t, Table{}, TableFromPage(nil))
	p := &tablewindow.Page{Columns: []string{"a"}, Rows: []tablewindow.Row{{"a": 1}}, StartRow: 4, EndRow: 5, TotalRows: 9}
	tbl := TableFromPage(p)
	assert.Equal(t, 4, tbl.StartRow)
	assert.Equal(t, 9, tbl.TotalRows)
	assert.Len(t, tbl.Rows, 1)
}
