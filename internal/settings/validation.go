package settings

import (
	"fmt"
	"strconv"
)

// Validate checks that settings values are valid.
// Preconditions: settings must be non-nil.
func Validate(settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if settings.LastWorkflowID < 0 {
		return fmt.Errorf("invalid last_workflow_id: %d", settings.LastWorkflowID)
	}
	for key, ws := range settings.Workflows {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid workflow id: %q", key)
		}
		if ws.SelectedModule < 0 {
			return fmt.Errorf("invalid selected_module for workflow %d: %d", id, ws.SelectedModule)
		}
	}
	return nil
}
