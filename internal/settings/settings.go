// Package settings persists TUI preferences between sessions.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/pelletier/go-toml/v2"
)

// fileName is created next to config.toml unless tui_settings_path is set.
const fileName = "tui" + config.FileExtTOML

// Path returns where settings are read from and saved to.
func Path() string {
	if p := config.Get("tui_settings_path", ""); p != "" {
		return p
	}
	return filepath.Join(config.Get("config_dir", "."), fileName)
}

// WorkflowSettings holds the view state of one workflow.
type WorkflowSettings struct {
	// SelectedModule is the wf-module id whose table is shown. Zero selects the last module.
	SelectedModule int `toml:"selected_module"`
}

// Settings holds TUI user preferences persisted to disk.
//
// TOML layout:
//
//	last_workflow_id = 12
//	show_input = false
//
//	[workflows.12]
//	selected_module = 40
type Settings struct {
	// LastWorkflowID is reopened by "workbench open" without an argument.
	LastWorkflowID int `toml:"last_workflow_id"`

	// ShowInput shows the selected module's input table instead of its output.
	ShowInput bool `toml:"show_input"`

	// Workflows is keyed by workflow id.
	Workflows map[string]WorkflowSettings `toml:"workflows,omitempty"`
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{Workflows: map[string]WorkflowSettings{}}
}

// Workflow returns the stored state of a workflow.
func (s *Settings) Workflow(id int) WorkflowSettings {
	return s.Workflows[strconv.Itoa(id)]
}

// SetWorkflow stores the state of a workflow. A zero value removes the entry.
func (s *Settings) SetWorkflow(id int, ws WorkflowSettings) {
	if s.Workflows == nil {
		s.Workflows = map[string]WorkflowSettings{}
	}
	key := strconv.Itoa(id)
	if ws == (WorkflowSettings{}) {
		delete(s.Workflows, key)
		return
	}
	s.Workflows[key] = ws
}

// Load reads settings from the config directory.
// If the settings file does not exist, returns default settings.
func Load() (*Settings, error) {
	config.Load()
	return LoadFrom(Path())
}

// LoadFrom reads settings from path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if settings.Workflows == nil {
		settings.Workflows = map[string]WorkflowSettings{}
	}
	if err := Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save writes settings to the config directory.
func Save(settings *Settings) error {
	config.Load()
	return SaveTo(Path(), settings)
}

// SaveTo writes settings to path, creating its directory if needed.
func SaveTo(path string, settings *Settings) error {
	if err := Validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), config.FileModeDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, config.FileModeFile); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
