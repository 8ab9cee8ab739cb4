package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/cristianoliveira/workbench/internal/settings"
	"github.com/cristianoliveira/workbench/internal/tui/state"
)

// ErrNoWorkflow is returned when no workflow id was given and none is remembered.
var ErrNoWorkflow = errors.New("no workflow to open: pass a workflow id")

// Model defines the narrow TUI model surface used by command wiring.
type Model interface {
	tea.Model
	State() settings.TUIState
	Close()
}

// Client defines dependencies needed by the open command.
type Client interface {
	LoadSettings() (*settings.Settings, error)
	SaveSettings(s *settings.Settings) error
	CreateModel(initial settings.TUIState) (Model, error)
	RunProgram(model Model) error
}

// DefaultClient is the default adapter-based implementation used by CLI wiring.
type DefaultClient struct {
	dependencies  DependencyFactory
	programRunner ProgramRunner
	settingsStore SettingsStore
}

// NewDefaultClient creates a default TUI client adapter.
// If programRunner is nil, a DefaultProgramRunner will be used.
// If settingsStore is nil, a DefaultSettingsStore will be used.
func NewDefaultClient(dependencies DependencyFactory, programRunner ProgramRunner, settingsStore SettingsStore) *DefaultClient {
	if dependencies == nil {
		panic("app.NewDefaultClient: dependencies cannot be nil")
	}
	if programRunner == nil {
		programRunner = NewDefaultProgramRunner()
	}
	if settingsStore == nil {
		settingsStore = NewDefaultSettingsStore()
	}
	return &DefaultClient{
		dependencies:  dependencies,
		programRunner: programRunner,
		settingsStore: settingsStore,
	}
}

// LoadSettings loads persisted settings using the injected SettingsStore.
func (d *DefaultClient) LoadSettings() (*settings.Settings, error) {
	return d.settingsStore.Load()
}

// SaveSettings persists settings using the injected SettingsStore.
func (d *DefaultClient) SaveSettings(s *settings.Settings) error {
	return d.settingsStore.Save(s)
}

// CreateModel builds a TUI model for the given initial state.
func (d *DefaultClient) CreateModel(initial settings.TUIState) (Model, error) {
	deps, err := d.dependencies.NewDependencies()
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	return state.NewModel(state.Options{
		API:     deps.API,
		Fetcher: deps.Fetcher,
		Events:  deps.Events,
		Window:  deps.Window,
		State:   initial,
	}), nil
}

// RunProgram starts the bubbletea program using the configured ProgramRunner.
func (d *DefaultClient) RunProgram(model Model) error {
	err := d.programRunner.Run(model)
	if err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}

// Open runs the TUI on workflowID, or on the last opened workflow when it is
// zero, and remembers where the user left off. Unreadable settings only cost
// the restored state.
func Open(client Client, workflowID int) error {
	if client == nil {
		return errors.New("app.Open: client cannot be nil")
	}
	stored, err := client.LoadSettings()
	if err != nil {
		colors.Warning(fmt.Sprintf("Ignoring TUI settings: %v", err))
		stored = settings.DefaultSettings()
	}

	initial := settings.FromSettings(stored, workflowID)
	if initial.IsEmpty() {
		return ErrNoWorkflow
	}
	logging.Debug("opening workflow", "workflow_id", initial.WorkflowID,
		"selected_module", initial.SelectedModule, "show_input", initial.ShowInput)

	model, err := client.CreateModel(initial)
	if err != nil {
		return err
	}
	defer model.Close()

	runErr := client.RunProgram(model)
	model.State().Apply(stored)
	if err := client.SaveSettings(stored); err != nil {
		colors.Warning(fmt.Sprintf("Failed to save TUI settings: %v", err))
	}
	return runErr
}
