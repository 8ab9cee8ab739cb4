package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/mattn/go-runewidth"
)

// TableConfig holds configuration for table formatting.
type TableConfig struct {
	// ShowHeader prints the "Rows N  Columns M" line.
	ShowHeader bool

	// ShowRowNumbers prefixes each row with its 1-based position in the table.
	ShowRowNumbers bool

	// HeaderColor is the color used for column names. Empty disables color.
	HeaderColor string

	// MinColumnWidth and MaxColumnWidth bound each column.
	MinColumnWidth int
	MaxColumnWidth int
}

// DefaultTableConfig returns a default table configuration.
func DefaultTableConfig() *TableConfig {
	return &TableConfig{
		ShowHeader:     true,
		ShowRowNumbers: true,
		HeaderColor:    colors.Blue,
		MinColumnWidth: 3,
		MaxColumnWidth: 32,
	}
}

// TableFormatter aligns cells under their column names.
type TableFormatter struct {
	config *TableConfig
}

// NewTableFormatter creates a TableFormatter with the default configuration.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{config: DefaultTableConfig()}
}

// NewTableFormatterWithConfig creates a TableFormatter using cfg.
func NewTableFormatterWithConfig(cfg *TableConfig) *TableFormatter {
	if cfg == nil {
		cfg = DefaultTableConfig()
	}
	return &TableFormatter{config: cfg}
}

// FormatTable writes the header, column names, a separator and the rows.
func (f *TableFormatter) FormatTable(t Table, w io.Writer) error {
	if f.config.ShowHeader {
		if _, err := fmt.Fprintln(w, Header(t.TotalRows, len(t.Columns))); err != nil {
			return err
		}
	}
	if len(t.Columns) == 0 {
		return nil
	}

	headers := t.Columns
	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		line := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			line[j] = Cell(row[col])
		}
		cells[i] = line
	}
	if f.config.ShowRowNumbers {
		headers = append([]string{""}, headers...)
		for i := range cells {
			cells[i] = append([]string{fmt.Sprintf("%d", t.Position(i)+1)}, cells[i]...)
		}
	}

	return f.writeGrid(w, headers, cells)
}

func (f *TableFormatter) writeGrid(w io.Writer, headers []string, cells [][]string) error {
	widths := f.columnWidths(headers, cells)
	if err := f.writeLine(w, headers, widths, f.config.HeaderColor); err != nil {
		return err
	}
	if err := f.writeSeparator(w, widths); err != nil {
		return err
	}
	for _, line := range cells {
		if err := f.writeLine(w, line, widths, ""); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		width := cellWidth.StringWidth(h)
		for _, row := range rows {
			if w := cellWidth.StringWidth(flatten(row[i])); w > width {
				width = w
			}
		}
		widths[i] = clamp(width, f.config.MinColumnWidth, f.config.MaxColumnWidth)
	}
	return widths
}

func (f *TableFormatter) writeLine(w io.Writer, values []string, widths []int, color string) error {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Fit(v, widths[i])
	}
	line := strings.TrimRight(strings.Join(parts, "  "), " ")
	if color != "" {
		line = color + line + colors.Reset
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func (f *TableFormatter) writeSeparator(w io.Writer, widths []int) error {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "  "))
	return err
}

// cellWidth measures ambiguous-width runes as narrow regardless of locale.
var cellWidth = &runewidth.Condition{EastAsianWidth: false}

var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ")

// flatten keeps a cell on one line.
func flatten(s string) string {
	return flattener.Replace(s)
}

// Fit pads or truncates s to exactly width display cells on one line.
func Fit(s string, width int) string {
	s = flatten(s)
	if cellWidth.StringWidth(s) > width {
		s = cellWidth.Truncate(s, width, "…")
	}
	return cellWidth.FillRight(s, width)
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
