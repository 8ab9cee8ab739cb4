package settings

// TUIState is the part of the TUI model that survives a restart.
// It keeps the tui package independent of the file layout.
type TUIState struct {
	WorkflowID     int
	SelectedModule int
	ShowInput      bool
}

// FromSettings returns the state to restore when opening workflowID.
// A zero workflowID falls back to the last opened workflow.
func FromSettings(s *Settings, workflowID int) TUIState {
	if s == nil {
		return TUIState{WorkflowID: workflowID}
	}
	if workflowID == 0 {
		workflowID = s.LastWorkflowID
	}
	return TUIState{
		WorkflowID:     workflowID,
		SelectedModule: s.Workflow(workflowID).SelectedModule,
		ShowInput:      s.ShowInput,
	}
}

// Apply records the state into s.
func (t TUIState) Apply(s *Settings) {
	if t.WorkflowID <= 0 {
		return
	}
	s.LastWorkflowID = t.WorkflowID
	s.ShowInput = t.ShowInput
	s.SetWorkflow(t.WorkflowID, WorkflowSettings{SelectedModule: t.SelectedModule})
}

// IsEmpty returns true if no workflow is recorded.
func (t TUIState) IsEmpty() bool {
	return t.WorkflowID == 0
}
