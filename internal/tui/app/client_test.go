package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/settings"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSettingsStore is a test double for SettingsStore.
type mockSettingsStore struct {
	settings *settings.Settings
	loadErr  error
	saveErr  error
	saved    []*settings.Settings
}

func (m *mockSettingsStore) Load() (*settings.Settings, error) {
	return m.settings, m.loadErr
}

func (m *mockSettingsStore) Save(s *settings.Settings) error {
	m.saved = append(m.saved, s)
	return m.saveErr
}

// mockRunner records the model it was asked to run and feeds it keys.
type mockRunner struct {
	keys  []string
	err   error
	model tea.Model
}

func (r *mockRunner) Run(model tea.Model) error {
	r.model = model
	for _, k := range r.keys {
		model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
	return r.err
}

type stubAPI struct{}

func (stubAPI) LoadWorkflow(context.Context, int) (*workbench.Workflow, error) {
	return nil, errors.New("offline")
}

func (stubAPI) ListModules(context.Context) ([]workbench.Module, error) {
	return nil, nil
}

func (stubAPI) SetWorkflowName(_ context.Context, _ int, name string) (string, error) {
	return name, nil
}

func (stubAPI) Undo(context.Context, int) error { return nil }

func (stubAPI) Redo(context.Context, int) error { return nil }

func (stubAPI) InputColumns(context.Context, int) ([]string, error) {
	return nil, nil
}

func (stubAPI) SetParameter(context.Context, int, any) error { return nil }

func stubDependencies() DependencyFactory {
	return DependencyFactoryFunc(func() (Dependencies, error) {
		return Dependencies{
			API: stubAPI{},
			Fetcher: tablewindow.FetcherFunc(func(context.Context, tablewindow.Request) (*tablewindow.Page, error) {
				return &tablewindow.Page{}, nil
			}),
		}, nil
	})
}

func TestNewDefaultClientDefaults(t *testing.T) {
	client := NewDefaultClient(stubDependencies(), nil, nil)
	assert.IsType(t, &DefaultProgramRunner{}, client.programRunner)
	assert.IsType(t, &DefaultSettingsStore{}, client.settingsStore)

	assert.Panics(t, func() { NewDefaultClient(nil, nil, nil) })
}

func TestDefaultClientLoadSettingsUsesStore(t *testing.T) {
	want := &settings.Settings{LastWorkflowID: 7}
	client := NewDefaultClient(stubDependencies(), nil, &mockSettingsStore{settings: want})

	got, err := client.LoadSettings()
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestDefaultClientLoadSettingsError(t *testing.T) {
	wantErr := errors.New("failed to load settings")
	client := NewDefaultClient(stubDependencies(), nil, &mockSettingsStore{loadErr: wantErr})

	_, err := client.LoadSettings()
	assert.ErrorIs(t, err, wantErr)
}

func TestCreateModelPropagatesDependencyError(t *testing.T) {
	wantErr := errors.New("no server")
	client := NewDefaultClient(DependencyFactoryFunc(func() (Dependencies, error) {
		return Dependencies{}, wantErr
	}), nil, nil)

	_, err := client.CreateModel(settings.TUIState{WorkflowID: 1})
	assert.ErrorIs(t, err, wantErr)
}

func TestCreateModelStartsFromState(t *testing.T) {
	client := NewDefaultClient(stubDependencies(), nil, nil)
	initial := settings.TUIState{WorkflowID: 4, SelectedModule: 9, ShowInput: true}

	model, err := client.CreateModel(initial)
	require.NoError(t, err)
	defer model.Close()
	assert.Equal(t, initial, model.State())
}

func TestOpenRequiresWorkflow(t *testing.T) {
	store := &mockSettingsStore{settings: settings.DefaultSettings()}
	runner := &mockRunner{}
	client := NewDefaultClient(stubDependencies(), runner, store)

	err := Open(client, 0)
	assert.ErrorIs(t, err, ErrNoWorkflow)
	assert.Nil(t, runner.model)
	assert.Empty(t, store.saved)
}

func TestOpenRemembersState(t *testing.T) {
	store := &mockSettingsStore{settings: settings.DefaultSettings()}
	runner := &mockRunner{keys: []string{"i", "q"}}
	client := NewDefaultClient(stubDependencies(), runner, store)

	require.NoError(t, Open(client, 12))
	require.NotNil(t, runner.model)
	require.Len(t, store.saved, 1)
	assert.Equal(t, 12, store.saved[0].LastWorkflowID)
	assert.True(t, store.saved[0].ShowInput)
}

func TestOpenFallsBackToLastWorkflow(t *testing.T) {
	stored := settings.DefaultSettings()
	stored.LastWorkflowID = 5
	stored.SetWorkflow(5, settings.WorkflowSettings{SelectedModule: 31})
	runner := &mockRunner{}
	client := NewDefaultClient(stubDependencies(), runner, &mockSettingsStore{settings: stored})

	require.NoError(t, Open(client, 0))
	m, ok := runner.model.(Model)
	require.True(t, ok)
	assert.Equal(t, settings.TUIState{WorkflowID: 5, SelectedModule: 31}, m.State())
}

func TestOpenIgnoresUnreadableSettings(t *testing.T) {
	store := &mockSettingsStore{loadErr: errors.New("bad toml")}
	client := NewDefaultClient(stubDependencies(), &mockRunner{}, store)

	require.NoError(t, Open(client, 3))
	require.Len(t, store.saved, 1)
	assert.Equal(t, 3, store.saved[0].LastWorkflowID)
}

func TestOpenSavesStateWhenProgramFails(t *testing.T) {
	runErr := errors.New("no tty")
	store := &mockSettingsStore{settings: settings.DefaultSettings()}
	client := NewDefaultClient(stubDependencies(), &mockRunner{err: runErr}, store)

	err := Open(client, 8)
	assert.ErrorIs(t, err, runErr)
	assert.Len(t, store.saved, 1)
}
