package format

import (
	"encoding/json"
	"io"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// JSONFormatter writes a page document with the same keys the server uses.
type JSONFormatter struct{}

type jsonTable struct {
	TotalRows int               `json:"total_rows"`
	StartRow  int               `json:"start_row"`
	EndRow    int               `json:"end_row"`
	Columns   []string          `json:"columns"`
	Rows      []tablewindow.Row `json:"rows"`
	Positions []int             `json:"positions,omitempty"`
}

func (JSONFormatter) FormatTable(t Table, w io.Writer) error {
	doc := jsonTable{
		TotalRows: t.TotalRows,
		StartRow:  t.StartRow,
		EndRow:    t.StartRow + len(t.Rows),
		Columns:   t.Columns,
		Rows:      t.Rows,
		Positions: t.Positions,
	}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	if doc.Rows == nil {
		doc.Rows = []tablewindow.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
