package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSettings(t *testing.T) {
	s := DefaultSettings()
	s.LastWorkflowID = 12
	s.ShowInput = true
	s.SetWorkflow(12, WorkflowSettings{SelectedModule: 40})
	s.SetWorkflow(3, WorkflowSettings{SelectedModule: 8})

	assert.Equal(t, TUIState{WorkflowID: 12, SelectedModule: 40, ShowInput: true}, FromSettings(s, 0))
	assert.Equal(t, TUIState{WorkflowID: 3, SelectedModule: 8, ShowInput: true}, FromSettings(s, 3))
	assert.Equal(t, TUIState{WorkflowID: 99, ShowInput: true}, FromSettings(s, 99))
	assert.Equal(t, TUIState{WorkflowID: 5}, FromSettings(nil, 5))
}

func TestTUIStateApply(t *testing.T) {
	s := DefaultSettings()
	TUIState{WorkflowID: 4, SelectedModule: 11, ShowInput: true}.Apply(s)

	assert.Equal(t, 4, s.LastWorkflowID)
	assert.True(t, s.ShowInput)
	assert.Equal(t, 11, s.Workflow(4).SelectedModule)

	TUIState{}.Apply(s)
	assert.Equal(t, 4, s.LastWorkflowID, "empty state is ignored")
}

func TestTUIStateIsEmpty(t *testing.T) {
	assert.True(t, TUIState{}.IsEmpty())
	assert.False(t, TUIState{WorkflowID: 1}.IsEmpty())
}
