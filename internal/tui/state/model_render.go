package state

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/tui/render"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	width := m.uiState.GetWidth()
	if m.workflow == nil {
		if m.loading {
			return m.spinner.View() + " Loading workflow…\n" + m.statusLine(width)
		}
		return m.statusLine(width) + "\n" + render.Footer(m.help.View(m.keys))
	}

	var s strings.Builder
	s.WriteString(render.Header(render.HeaderState{
		Name:      m.workflow.Name,
		NameInput: m.nameInput.View(),
		Renaming:  m.renaming,
		Revision:  m.workflow.Revision,
		Public:    m.workflow.Public,
		ReadOnly:  m.workflow.ReadOnly,
		Width:     width,
	}))
	s.WriteString("\n\n")

	bodyHeight := m.uiState.PageHeight() + 2
	modules := lipgloss.NewStyle().
		Width(render.ModulePaneWidth).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(render.ModuleList(m.moduleItems(), m.workflow.IndexOf(m.selectedModuleID), bodyHeight))
	tableWidth := max(width-render.ModulePaneWidth-1, 10)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, modules, " ", m.renderOutput(tableWidth)))
	s.WriteString("\n")
	s.WriteString(m.statusLine(width))
	s.WriteString("\n")
	if m.picker != nil {
		s.WriteString(render.Footer(m.help.View(m.pickerKeys)))
	} else {
		s.WriteString(render.Footer(m.help.View(m.keys)))
	}
	return s.String()
}

func (m *Model) moduleItems() []render.ModuleItem {
	items := make([]render.ModuleItem, len(m.workflow.Modules))
	for i := range m.workflow.Modules {
		mod := &m.workflow.Modules[i]
		name := mod.Name()
		category := mod.ModuleVersion.Module.Category
		if lib, ok := m.library[mod.ModuleVersion.Module.ID]; ok {
			if name == "" {
				name = lib.Name
			}
			if category == "" {
				category = lib.Category
			}
		}
		items[i] = render.ModuleItem{
			Name:     name,
			Category: category,
			Status:   mod.Status,
			ErrorMsg: mod.ErrorMsg,
		}
	}
	return items
}

// renderOutput draws the counters and either the column selector or the
// visible rows, pulled through the loader so scrolling fetches ahead.
func (m *Model) renderOutput(width int) string {
	snap := m.loader.Snapshot()
	header := render.OutputHeader(m.showInput, snap.TotalRows, len(snap.Columns), snap.Loading || m.loading, m.spinner.View())

	if m.picker != nil {
		p := m.picker
		state := render.ColumnPickerState{Title: p.title, Cursor: p.cursor, Loading: p.busy, Height: m.uiState.PageHeight()}
		if !p.busy {
			sel := p.editor.Selection()
			state.Available = p.editor.Available()
			state.Selected = sel.Contains
		}
		return header + "\n" + render.ColumnPicker(state)
	}

	offset := m.uiState.GetOffset()
	end := min(offset+m.uiState.PageHeight(), snap.TotalRows)
	rows := make([]tablewindow.Row, 0, max(end-offset, 0))
	for i := offset; i < end; i++ {
		rows = append(rows, m.loader.Row(i))
	}
	return header + "\n" + render.Table(render.TableState{
		Columns:  snap.Columns,
		Rows:     rows,
		FirstRow: offset,
		Cursor:   m.uiState.GetCursor(),
		Width:    width,
	})
}

func (m *Model) statusLine(width int) string {
	msg, ok := m.errorHandler.Current(errorClearDuration)
	if !ok {
		return ""
	}
	return render.StatusLine(msg, width)
}
