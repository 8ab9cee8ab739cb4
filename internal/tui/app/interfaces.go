// Package app provides TUI application adapters for command wiring.
package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/settings"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/tui/state"
)

// ProgramRunner defines the interface for running a bubbletea program.
type ProgramRunner interface {
	// Run starts the bubbletea program with the given model.
	Run(model tea.Model) error
}

// DefaultProgramRunner is the default implementation of ProgramRunner
// that wraps tea.NewProgram with standard options.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts a bubbletea program on the alternate screen.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// SettingsStore loads and saves the persisted TUI settings.
type SettingsStore interface {
	Load() (*settings.Settings, error)
	Save(s *settings.Settings) error
}

// DefaultSettingsStore wraps the settings package file functions.
type DefaultSettingsStore struct{}

// NewDefaultSettingsStore creates a new DefaultSettingsStore.
func NewDefaultSettingsStore() *DefaultSettingsStore {
	return &DefaultSettingsStore{}
}

// Load loads settings using settings.Load.
func (s *DefaultSettingsStore) Load() (*settings.Settings, error) {
	return settings.Load()
}

// Save writes settings using settings.Save.
func (s *DefaultSettingsStore) Save(st *settings.Settings) error {
	return settings.Save(st)
}

// Dependencies are the services a model is built on.
type Dependencies struct {
	API     state.API
	Fetcher tablewindow.Fetcher
	// Events is optional; nil disables live updates.
	Events state.EventSource
	Window tablewindow.Config
}

// DependencyFactory creates the model dependencies when the TUI starts, so
// commands that never open it do not connect anywhere.
type DependencyFactory interface {
	NewDependencies() (Dependencies, error)
}

// DependencyFactoryFunc adapts a function to DependencyFactory.
type DependencyFactoryFunc func() (Dependencies, error)

// NewDependencies calls f.
func (f DependencyFactoryFunc) NewDependencies() (Dependencies, error) {
	return f()
}
