package state

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/columns"
	"github.com/cristianoliveira/workbench/internal/errors"
	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

func (m *Model) reportError(prefix string, err error) tea.Cmd {
	m.errorHandler.Error(prefix + ": " + errors.Describe(err))
	return errorMsgAfter(errorClearDuration)
}

func (m *Model) reloadWorkflow() tea.Cmd {
	m.loading = true
	return loadWorkflowCmd(m.ctx, m.api, m.workflowID, false)
}

func (m *Model) handleWorkflowLoaded(msg workflowLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		return m.reportError("Failed to load workflow", msg.err)
	}
	for _, mod := range msg.library {
		m.library[mod.ID] = mod
	}
	m.workflow = msg.workflow
	if _, ok := m.workflow.ModuleByID(m.selectedModuleID); !ok {
		m.selectedModuleID = 0
		if n := len(m.workflow.Modules); n > 0 {
			m.selectedModuleID = m.workflow.Modules[n-1].ID
		}
	}
	if !m.renaming {
		m.nameInput.SetValue(m.workflow.Name)
	}
	m.syncTable()
	return m.refreshPicker()
}

// refreshPicker keeps an open column selector in step with the workflow.
func (m *Model) refreshPicker() tea.Cmd {
	if m.picker == nil || m.picker.busy {
		return nil
	}
	mod, ok := m.selectedModule()
	if !ok {
		m.picker = nil
		return nil
	}
	params := mod.ParamsOfType(workbench.ParamTypeMultiColumn)
	if len(params) == 0 {
		m.picker = nil
		return nil
	}
	m.picker.editor.SetCurrent(params[0].StringValue())
	m.picker.busy = true
	return loadColumnsCmd(m.ctx, m.picker.editor, m.workflow.Revision)
}

func (m *Model) handleTableChanged(msg tableChangedMsg) tea.Cmd {
	cmds := []tea.Cmd{waitForTableChange(m.ctx, m.tableChanges)}
	switch msg.event.Kind {
	case tablewindow.EventFailed:
		cmds = append(cmds, m.reportError("Failed to load rows", msg.event.Err))
	case tablewindow.EventLoaded:
		m.uiState.SetCursor(m.uiState.GetCursor(), m.loader.TotalRows())
	}
	// Skip a missed failure the loader has since recovered from.
	if ev, ok := m.takeMissedFailure(); ok && m.loader.LastError() != nil {
		cmds = append(cmds, m.reportError("Failed to load rows", ev.Err))
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyModuleStatus(s events.ModuleStatus) {
	if m.workflow == nil {
		return
	}
	mod, ok := m.workflow.ModuleByID(s.ID)
	if !ok {
		return
	}
	mod.Status = s.Status
	mod.ErrorMsg = s.ErrorMsg
}

func (m *Model) handleRenamed(msg renamedMsg) tea.Cmd {
	if msg.err != nil {
		if m.workflow != nil {
			m.nameInput.SetValue(m.workflow.Name)
		}
		return m.reportError("Failed to rename workflow", msg.err)
	}
	if m.workflow != nil {
		m.workflow.Name = msg.name
	}
	m.errorHandler.Success(fmt.Sprintf("Renamed to %q", msg.name))
	return errorMsgAfter(errorClearDuration)
}

func (m *Model) handleWorkflowChanged(msg workflowChangedMsg) tea.Cmd {
	if msg.err != nil {
		return m.reportError("Failed to "+msg.action, msg.err)
	}
	return m.reloadWorkflow()
}

func (m *Model) handleColumnsLoaded(msg columnsLoadedMsg) tea.Cmd {
	if m.picker == nil || m.picker.editor != msg.editor {
		return nil
	}
	m.picker.busy = false
	if msg.err != nil {
		m.picker = nil
		return m.reportError("Failed to load columns", msg.err)
	}
	if n := len(m.picker.editor.Available()); m.picker.cursor >= n {
		m.picker.cursor = max(n-1, 0)
	}
	return nil
}

func (m *Model) handleColumnToggled(msg columnToggledMsg) tea.Cmd {
	if m.picker != nil && m.picker.editor == msg.editor {
		m.picker.busy = false
	}
	if msg.err != nil {
		return m.reportError("Failed to save columns", msg.err)
	}
	if !msg.changed {
		return nil
	}
	return m.reloadWorkflow()
}

// openPicker opens the column selector of the selected module's first
// multicolumn parameter.
func (m *Model) openPicker() tea.Cmd {
	if m.readOnly() {
		return m.warnReadOnly()
	}
	mod, ok := m.selectedModule()
	if !ok {
		return nil
	}
	params := mod.ParamsOfType(workbench.ParamTypeMultiColumn)
	if len(params) == 0 {
		m.errorHandler.Info(fmt.Sprintf("%s has no column parameter", mod.Name()))
		return errorMsgAfter(errorClearDuration)
	}
	p := params[0]
	title := p.Spec.Name
	if title == "" {
		title = "Columns"
	}
	m.picker = &columnPicker{
		editor: columns.NewEditor(m.api, mod.ID, p.ID, p.StringValue()),
		title:  title,
		busy:   true,
	}
	return loadColumnsCmd(m.ctx, m.picker.editor, m.workflow.Revision)
}

func (m *Model) togglePickerColumn() tea.Cmd {
	p := m.picker
	if p == nil || p.busy {
		return nil
	}
	available := p.editor.Available()
	if p.cursor < 0 || p.cursor >= len(available) {
		return nil
	}
	name := available[p.cursor]
	checked := !p.editor.Selection().Contains(name)
	p.busy = true
	return toggleColumnCmd(m.ctx, p.editor, name, checked)
}

func (m *Model) readOnly() bool {
	return m.workflow != nil && m.workflow.ReadOnly
}

func (m *Model) warnReadOnly() tea.Cmd {
	m.errorHandler.Warning("Workflow is read-only")
	return errorMsgAfter(errorClearDuration)
}

func (m *Model) selectModule(delta int) {
	if m.workflow == nil || len(m.workflow.Modules) == 0 {
		return
	}
	n := len(m.workflow.Modules)
	i := m.workflow.IndexOf(m.selectedModuleID)
	if i < 0 {
		i = n - 1
	}
	i = ((i+delta)%n + n) % n
	m.selectedModuleID = m.workflow.Modules[i].ID
	m.picker = nil
	m.syncTable()
}

func (m *Model) toggleInput() {
	m.showInput = !m.showInput
	m.syncTable()
}
