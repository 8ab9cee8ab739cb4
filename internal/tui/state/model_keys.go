package state

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

// handleKeyMsg processes keyboard input for the TUI.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.renaming {
		return m, m.handleRenameKey(msg)
	}
	if m.picker != nil {
		return m, m.handlePickerKey(msg)
	}

	total := m.loader.TotalRows()
	half := max(m.uiState.PageHeight()/2, 1)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Down):
		m.uiState.MoveCursor(1, total)
	case key.Matches(msg, m.keys.Up):
		m.uiState.MoveCursor(-1, total)
	case key.Matches(msg, m.keys.HalfDown):
		m.uiState.MoveCursor(half, total)
	case key.Matches(msg, m.keys.HalfUp):
		m.uiState.MoveCursor(-half, total)
	case key.Matches(msg, m.keys.Top):
		m.uiState.SetCursor(0, total)
	case key.Matches(msg, m.keys.Bottom):
		m.uiState.SetCursor(total-1, total)
	case key.Matches(msg, m.keys.NextModule):
		m.selectModule(1)
	case key.Matches(msg, m.keys.PrevModule):
		m.selectModule(-1)
	case key.Matches(msg, m.keys.ToggleInput):
		m.toggleInput()
	case key.Matches(msg, m.keys.Rename):
		return m, m.startRename()
	case key.Matches(msg, m.keys.Columns):
		return m, m.openPicker()
	case key.Matches(msg, m.keys.Undo):
		if m.readOnly() {
			return m, m.warnReadOnly()
		}
		return m, undoCmd(m.ctx, m.api, m.workflowID)
	case key.Matches(msg, m.keys.Redo):
		if m.readOnly() {
			return m, m.warnReadOnly()
		}
		return m, redoCmd(m.ctx, m.api, m.workflowID)
	case key.Matches(msg, m.keys.Reload):
		m.loader.Reload()
		return m, m.reloadWorkflow()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

func (m *Model) startRename() tea.Cmd {
	if m.workflow == nil {
		return nil
	}
	if m.readOnly() {
		return m.warnReadOnly()
	}
	m.renaming = true
	m.nameInput.SetValue(m.workflow.Name)
	m.nameInput.CursorEnd()
	return m.nameInput.Focus()
}

// handleRenameKey edits the workflow name. Enter saves, a blank name becomes
// the untitled name, and esc restores the current name.
func (m *Model) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.renaming = false
		m.nameInput.Blur()
		name := workbench.NormalizeWorkflowName(m.nameInput.Value())
		m.nameInput.SetValue(name)
		if name == m.workflow.Name {
			return nil
		}
		return renameCmd(m.ctx, m.api, m.workflowID, name)
	case tea.KeyEsc:
		m.renaming = false
		m.nameInput.Blur()
		m.nameInput.SetValue(m.workflow.Name)
		return nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	switch {
	case key.Matches(msg, m.pickerKeys.Close):
		m.picker = nil
	case key.Matches(msg, m.pickerKeys.Down):
		if !p.busy && p.cursor < len(p.editor.Available())-1 {
			p.cursor++
		}
	case key.Matches(msg, m.pickerKeys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, m.pickerKeys.Toggle):
		return m.togglePickerColumn()
	}
	return nil
}
