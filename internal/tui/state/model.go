// Package state holds the bubbletea model of the workbench TUI.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/api"
	"github.com/cristianoliveira/workbench/internal/columns"
	"github.com/cristianoliveira/workbench/internal/errors"
	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/cristianoliveira/workbench/internal/settings"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

const (
	// chromeLines are the lines around the table: header, blank, counters,
	// column names, status and help.
	chromeLines           = 6
	defaultViewportWidth  = 80
	defaultViewportHeight = 24
	errorClearDuration    = 5 * time.Second
	changeBuffer          = 16
)

// API is the part of the workbench client the TUI uses.
type API interface {
	LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error)
	ListModules(ctx context.Context) ([]workbench.Module, error)
	SetWorkflowName(ctx context.Context, id int, name string) (string, error)
	Undo(ctx context.Context, id int) error
	Redo(ctx context.Context, id int) error
	columns.Store
}

// EventSource streams workflow change events until ctx is done.
type EventSource interface {
	Run(ctx context.Context, workflowID int, handle func(events.Event), onError func(error)) error
}

// Options are the dependencies of a Model.
type Options struct {
	API     API
	Fetcher tablewindow.Fetcher
	// Events is optional; nil disables live updates.
	Events EventSource
	Window tablewindow.Config
	State  settings.TUIState
	// Launcher runs loader fetches; nil uses a goroutine per fetch.
	Launcher func(func())
}

// columnPicker is the open column selector of a multicolumn parameter.
type columnPicker struct {
	editor *columns.Editor
	title  string
	cursor int
	busy   bool
}

// Model represents the TUI model for bubbletea.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	api          API
	events       EventSource
	loader       *tablewindow.Loader
	tableChanges chan tablewindow.Event
	eventMsgs    chan tea.Msg

	// missedMu guards missedFailure, a failure that did not fit in tableChanges.
	missedMu      sync.Mutex
	missedFailure *tablewindow.Event

	uiState      *UIState
	errorHandler *errors.TUIHandler
	keys         keyMap
	pickerKeys   pickerKeyMap
	help         help.Model
	spinner      spinner.Model
	nameInput    textinput.Model

	workflowID       int
	workflow         *workbench.Workflow
	library          map[int]workbench.Module
	selectedModuleID int
	showInput        bool
	loading          bool
	renaming         bool
	picker           *columnPicker
	quitting         bool
}

// NewModel creates a new TUI model for the workflow in opts.State.
func NewModel(opts Options) *Model {
	if opts.API == nil {
		panic("state.NewModel: API dependency cannot be nil")
	}
	if opts.Fetcher == nil {
		panic("state.NewModel: Fetcher dependency cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:              ctx,
		cancel:           cancel,
		api:              opts.API,
		events:           opts.Events,
		tableChanges:     make(chan tablewindow.Event, changeBuffer),
		eventMsgs:        make(chan tea.Msg, changeBuffer),
		uiState:          NewUIState(),
		keys:             defaultKeyMap(),
		pickerKeys:       defaultPickerKeyMap(),
		help:             help.New(),
		spinner:          spinner.New(spinner.WithSpinner(spinner.Dot)),
		nameInput:        textinput.New(),
		workflowID:       opts.State.WorkflowID,
		selectedModuleID: opts.State.SelectedModule,
		showInput:        opts.State.ShowInput,
		library:          map[int]workbench.Module{},
	}
	m.nameInput.Prompt = "> "
	m.nameInput.CharLimit = 200

	m.errorHandler = errors.NewTUIHandler(func(msg errors.Message) {
		logging.Debug("status message", "type", msg.Type.String(), "text", msg.Text)
	})

	loaderOpts := []tablewindow.Option{
		tablewindow.WithConfig(opts.Window),
		tablewindow.WithOnChange(m.onTableChange),
	}
	if opts.Launcher != nil {
		loaderOpts = append(loaderOpts, tablewindow.WithLauncher(opts.Launcher))
	}
	m.loader = tablewindow.New(opts.Fetcher, loaderOpts...)
	return m
}

// onTableChange runs on the fetch goroutine and never blocks. When the buffer
// is full a queued event is still pending, so redraws are not lost; a failure
// is kept aside for that event to report.
func (m *Model) onTableChange(ev tablewindow.Event) {
	select {
	case m.tableChanges <- ev:
		return
	default:
	}
	if ev.Kind == tablewindow.EventFailed {
		m.missedMu.Lock()
		m.missedFailure = &ev
		m.missedMu.Unlock()
	}
}

// takeMissedFailure returns and clears the failure dropped by onTableChange.
func (m *Model) takeMissedFailure() (tablewindow.Event, bool) {
	m.missedMu.Lock()
	defer m.missedMu.Unlock()
	if m.missedFailure == nil {
		return tablewindow.Event{}, false
	}
	ev := *m.missedFailure
	m.missedFailure = nil
	return ev, true
}

// Init loads the workflow and starts listening for changes.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(
		loadWorkflowCmd(m.ctx, m.api, m.workflowID, true),
		waitForTableChange(m.ctx, m.tableChanges),
		m.startEvents(),
		m.spinner.Tick,
	)
}

// startEvents runs the websocket listener in the background and forwards its
// events as messages.
func (m *Model) startEvents() tea.Cmd {
	if m.events == nil || m.workflowID <= 0 {
		return nil
	}
	send := func(msg tea.Msg) {
		select {
		case m.eventMsgs <- msg:
		case <-m.ctx.Done():
		}
	}
	src, ctx, id := m.events, m.ctx, m.workflowID
	go func() {
		_ = src.Run(ctx, id, func(ev events.Event) {
			switch e := ev.(type) {
			case events.ModuleStatus:
				send(moduleStatusMsg{status: e})
			case events.ReloadWorkflow:
				send(reloadWorkflowMsg{})
			}
		}, func(err error) {
			send(eventsErrorMsg{err: err})
		})
	}()
	return waitForEvent(m.ctx, m.eventMsgs)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.uiState.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.nameInput.Width = msg.Width / 2
		m.uiState.SetCursor(m.uiState.GetCursor(), m.loader.TotalRows())
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case workflowLoadedMsg:
		return m, m.handleWorkflowLoaded(msg)
	case tableChangedMsg:
		return m, m.handleTableChanged(msg)
	case moduleStatusMsg:
		m.applyModuleStatus(msg.status)
		return m, waitForEvent(m.ctx, m.eventMsgs)
	case reloadWorkflowMsg:
		return m, tea.Batch(m.reloadWorkflow(), waitForEvent(m.ctx, m.eventMsgs))
	case eventsErrorMsg:
		m.errorHandler.Warning("live updates interrupted: " + errors.Describe(msg.err))
		return m, tea.Batch(waitForEvent(m.ctx, m.eventMsgs), errorMsgAfter(errorClearDuration))
	case renamedMsg:
		return m, m.handleRenamed(msg)
	case workflowChangedMsg:
		return m, m.handleWorkflowChanged(msg)
	case columnsLoadedMsg:
		return m, m.handleColumnsLoaded(msg)
	case columnToggledMsg:
		return m, m.handleColumnToggled(msg)
	case errorMsg:
		return m, nil
	}
	return m, nil
}

// State returns what should be remembered for the next session.
func (m *Model) State() settings.TUIState {
	return settings.TUIState{
		WorkflowID:     m.workflowID,
		SelectedModule: m.selectedModuleID,
		ShowInput:      m.showInput,
	}
}

// Close stops the loader and the websocket listener.
func (m *Model) Close() {
	m.cancel()
	m.loader.Close()
}

// selectedModule returns the module whose table is shown.
func (m *Model) selectedModule() (*workbench.WfModule, bool) {
	if m.workflow == nil {
		return nil, false
	}
	return m.workflow.ModuleByID(m.selectedModuleID)
}

// sourceID names the table currently shown.
func (m *Model) sourceID() string {
	mod, ok := m.selectedModule()
	if !ok {
		return ""
	}
	if m.showInput {
		return api.SourceID(api.KindInput, mod.ID)
	}
	return api.SourceID(api.KindRender, mod.ID)
}

// syncTable points the loader at the selected table at the current revision.
func (m *Model) syncTable() {
	revision := 0
	if m.workflow != nil {
		revision = m.workflow.Revision
	}
	before := m.loader.Snapshot()
	source := m.sourceID()
	if before.SourceID != source {
		m.uiState.ResetCursor()
	}
	m.loader.OnIdentityChange(source, revision)
}
