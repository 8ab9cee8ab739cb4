// Package render draws the pieces of the workbench TUI as strings.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/errors"
	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

const (
	// ModulePaneWidth is the width of the module list, borders excluded.
	ModulePaneWidth = 30
	maxCellWidth    = 24
	minCellWidth    = 3
	columnGap       = " │ "
	selectedMarker  = "▸"
)

var (
	accent        = ansiColor(colors.Blue)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle = lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color("0"))
	columnStyle   = lipgloss.NewStyle().Bold(true)
	statusColors  = map[string]lipgloss.Color{
		workbench.StatusReady: lipgloss.Color("2"),
		workbench.StatusBusy:  lipgloss.Color("3"),
		workbench.StatusError: lipgloss.Color("1"),
	}
	messageColors = map[errors.MessageType]lipgloss.Color{
		errors.MessageTypeError:   lipgloss.Color("1"),
		errors.MessageTypeWarning: lipgloss.Color("3"),
		errors.MessageTypeInfo:    accent,
		errors.MessageTypeSuccess: lipgloss.Color("2"),
	}
)

// HeaderState defines the inputs of the workflow header line.
type HeaderState struct {
	Name      string
	NameInput string // rendered textinput while renaming
	Renaming  bool
	Revision  int
	Public    bool
	ReadOnly  bool
	Width     int
}

// Header renders the workflow name and its flags.
func Header(s HeaderState) string {
	name := titleStyle.Render(s.Name)
	if s.Renaming {
		name = s.NameInput
	}
	flags := []string{fmt.Sprintf("rev %d", s.Revision)}
	if s.Public {
		flags = append(flags, "public")
	} else {
		flags = append(flags, "private")
	}
	if s.ReadOnly {
		flags = append(flags, "read-only")
	}
	line := name + "  " + dimStyle.Render(strings.Join(flags, " · "))
	return lipgloss.NewStyle().MaxWidth(s.Width).Render(line)
}

// ModuleItem is one entry of the module list.
type ModuleItem struct {
	Name     string
	Category string
	Status   string
	ErrorMsg string
}

// ModuleList renders the module stack, one module per line with its status
// and, for failed modules, the error below it.
func ModuleList(items []ModuleItem, selected, height int) string {
	if len(items) == 0 {
		return dimStyle.Render("No modules")
	}
	var lines []string
	for i, item := range items {
		marker := " "
		if i == selected {
			marker = selectedMarker
		}
		status := item.Status
		if status == "" {
			status = workbench.StatusReady
		}
		dot := lipgloss.NewStyle().Foreground(statusColors[status]).Render("●")
		label := format.Fit(fmt.Sprintf("%d. %s", i+1, item.Name), ModulePaneWidth-4)
		if i == selected {
			label = selectedStyle.Render(label)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", marker, dot, label))
		if item.Category != "" && i == selected {
			lines = append(lines, "     "+dimStyle.Render(format.Fit(item.Category, ModulePaneWidth-5)))
		}
		if status == workbench.StatusError && item.ErrorMsg != "" {
			errText := lipgloss.NewStyle().Foreground(statusColors[workbench.StatusError]).
				Render(format.Fit(item.ErrorMsg, ModulePaneWidth-5))
			lines = append(lines, "     "+errText)
		}
	}
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// OutputHeader renders the counters line above the table.
func OutputHeader(showInput bool, totalRows, columns int, loading bool, spinner string) string {
	label := "Output"
	if showInput {
		label = "Input"
	}
	line := titleStyle.Render(label) + "  " + format.Header(totalRows, columns)
	if loading {
		line += "  " + spinner
	}
	return line
}

// TableState defines the visible part of a module table.
type TableState struct {
	Columns  []string
	Rows     []tablewindow.Row
	FirstRow int
	Cursor   int
	Width    int
}

// Table renders column names and the visible rows with a row-number gutter.
// Cells are sized to the visible rows and the line is cut to Width.
func Table(s TableState) string {
	if len(s.Columns) == 0 {
		return dimStyle.Render("No data")
	}
	gutter := len(fmt.Sprint(s.FirstRow + len(s.Rows)))
	widths := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		w := lipgloss.Width(col)
		for _, row := range s.Rows {
			if cw := lipgloss.Width(format.Cell(row[col])); cw > w {
				w = cw
			}
		}
		widths[i] = clamp(w, minCellWidth, maxCellWidth)
	}

	lines := make([]string, 0, len(s.Rows)+1)
	header := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = format.Fit(col, widths[i])
	}
	lines = append(lines, columnStyle.Render(cut(strings.Repeat(" ", gutter)+columnGap+strings.Join(header, columnGap), s.Width)))

	for i, row := range s.Rows {
		index := s.FirstRow + i
		cells := make([]string, len(s.Columns))
		for j, col := range s.Columns {
			cells[j] = format.Fit(format.Cell(row[col]), widths[j])
		}
		num := fmt.Sprintf("%*d", gutter, index+1)
		line := cut(num+columnGap+strings.Join(cells, columnGap), s.Width)
		if index == s.Cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ColumnPickerState defines the column selector of a multicolumn parameter.
type ColumnPickerState struct {
	Title     string
	Available []string
	Selected  func(name string) bool
	Cursor    int
	Loading   bool
	Height    int
}

// ColumnPicker renders one checkbox per available column.
func ColumnPicker(s ColumnPickerState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")
	if s.Loading {
		b.WriteString(dimStyle.Render("Loading columns…"))
		return b.String()
	}
	if len(s.Available) == 0 {
		b.WriteString(dimStyle.Render("No columns"))
		return b.String()
	}
	start := 0
	if s.Height > 0 && s.Cursor >= s.Height {
		start = s.Cursor - s.Height + 1
	}
	end := len(s.Available)
	if s.Height > 0 && end-start > s.Height {
		end = start + s.Height
	}
	for i := start; i < end; i++ {
		name := s.Available[i]
		box := "[ ]"
		if s.Selected != nil && s.Selected(name) {
			box = "[x]"
		}
		line := box + " " + name
		if i == s.Cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// StatusLine renders a status message with a type prefix.
func StatusLine(msg errors.Message, width int) string {
	if msg.Text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(messageColors[msg.Type])
	return style.MaxWidth(width).Render(msg.Type.String() + ": " + msg.Text)
}

// Footer renders the key help.
func Footer(help string) string {
	return dimStyle.Render(help)
}

func cut(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return format.Fit(s, width)
}

func clamp(v, lo, hi int) int {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// ansiColor maps a basic SGR foreground sequence to its palette color.
// Example: "\033[0;34m" -> "4"
func ansiColor(ansi string) lipgloss.Color {
	if len(ansi) < 2 {
		return lipgloss.Color("")
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return lipgloss.Color("")
	}
	n, err := strconv.Atoi(ansi[lastSemicolon+1 : len(ansi)-1])
	if err != nil || n < 30 || n > 37 {
		return lipgloss.Color("")
	}
	return lipgloss.Color(strconv.Itoa(n - 30))
}
