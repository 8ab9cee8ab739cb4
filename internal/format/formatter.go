// Package format renders table pages and workflow listings for CLI commands.
package format

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/dustin/go-humanize"
)

// Table is a contiguous slice of a module's output.
type Table struct {
	Columns   []string
	Rows      []tablewindow.Row
	StartRow  int
	TotalRows int
	// Positions holds the 0-based table position of each row when Rows is
	// not a contiguous range, as after filtering.
	Positions []int
}

// Position returns the 0-based table position of the i-th row.
func (t Table) Position(i int) int {
	if len(t.Positions) == len(t.Rows) {
		return t.Positions[i]
	}
	return t.StartRow + i
}

// TableFromPage wraps a fetched page.
func TableFromPage(p *tablewindow.Page) Table {
	if p == nil {
		return Table{}
	}
	return Table{Columns: p.Columns, Rows: p.Rows, StartRow: p.StartRow, TotalRows: p.TotalRows}
}

// Formatter writes a Table.
type Formatter interface {
	FormatTable(t Table, w io.Writer) error
}

// FormatterType names an output format.
type FormatterType string

const (
	// FormatterTypeTable aligns cells in columns under a counters header.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeJSON writes the page as a JSON document.
	FormatterTypeJSON FormatterType = "json"

	// FormatterTypeCSV writes the column names followed by one record per row.
	FormatterTypeCSV FormatterType = "csv"
)

// Types lists the supported formats.
func Types() []string {
	return []string{string(FormatterTypeTable), string(FormatterTypeJSON), string(FormatterTypeCSV)}
}

// NewFormatter returns the formatter for typ.
func NewFormatter(typ FormatterType) (Formatter, error) {
	switch typ {
	case FormatterTypeTable, "":
		return NewTableFormatter(), nil
	case FormatterTypeJSON:
		return JSONFormatter{}, nil
	case FormatterTypeCSV:
		return CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected one of table, json, csv)", typ)
	}
}

// Header is the counters line shown above a table, e.g. "Rows 1,204  Columns 7".
func Header(totalRows, columns int) string {
	return fmt.Sprintf("Rows %s  Columns %s", humanize.Comma(int64(totalRows)), humanize.Comma(int64(columns)))
}

// Cell renders a row value. Missing and null values render empty.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
