package format

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/dustin/go-humanize"
)

func listFormatter() *TableFormatter {
	cfg := DefaultTableConfig()
	cfg.ShowHeader = false
	cfg.ShowRowNumbers = false
	cfg.MaxColumnWidth = 48
	return NewTableFormatterWithConfig(cfg)
}

func since(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Workflows writes one line per workflow.
func Workflows(w io.Writer, list []workbench.WorkflowSummary, now time.Time) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No workflows")
		return err
	}
	cells := make([][]string, len(list))
	for i, wf := range list {
		visibility := "private"
		if wf.Public {
			visibility = "public"
		}
		cells[i] = []string{strconv.Itoa(wf.ID), wf.Name, visibility, since(wf.LastUpdate, now)}
	}
	return listFormatter().writeGrid(w, []string{"ID", "Name", "Visibility", "Updated"}, cells)
}

// Workflow writes the workflow name followed by its module stack.
func Workflow(w io.Writer, wf *workbench.Workflow, now time.Time) error {
	visibility := "private"
	if wf.Public {
		visibility = "public"
	}
	_, err := fmt.Fprintf(w, "%s (#%d, revision %d, %s, updated %s)\n",
		wf.Name, wf.ID, wf.Revision, visibility, since(wf.LastUpdate, now))
	if err != nil {
		return err
	}
	if len(wf.Modules) == 0 {
		_, err := fmt.Fprintln(w, "No modules")
		return err
	}
	cells := make([][]string, len(wf.Modules))
	for i := range wf.Modules {
		m := &wf.Modules[i]
		status := m.Status
		if m.Status == workbench.StatusError && m.ErrorMsg != "" {
			status += ": " + m.ErrorMsg
		}
		cells[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(m.ID), m.Name(), status, m.Notes}
	}
	return listFormatter().writeGrid(w, []string{"#", "ID", "Module", "Status", "Notes"}, cells)
}

// Modules writes the module library.
func Modules(w io.Writer, list []workbench.Module) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No modules")
		return err
	}
	cells := make([][]string, len(list))
	for i, m := range list {
		cells[i] = []string{strconv.Itoa(m.ID), m.Name, m.Category, m.Description}
	}
	return listFormatter().writeGrid(w, []string{"ID", "Name", "Category", "Description"}, cells)
}

// DataVersions writes the stored versions, marking the selected one.
func DataVersions(w io.Writer, dv *workbench.DataVersions) error {
	if len(dv.Versions) == 0 {
		_, err := fmt.Fprintln(w, "No data versions")
		return err
	}
	for _, v := range dv.Versions {
		marker := " "
		if v == dv.Selected {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", marker, v); err != nil {
			return err
		}
	}
	return nil
}
