package state

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/workbench/internal/columns"
	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"golang.org/x/sync/errgroup"
)

// workflowLoadedMsg carries a fetched workflow and, on the first load, the
// module library.
type workflowLoadedMsg struct {
	workflow *workbench.Workflow
	library  []workbench.Module
	err      error
}

// tableChangedMsg is sent after the loader reset, loaded or failed.
type tableChangedMsg struct {
	event tablewindow.Event
}

// moduleStatusMsg reports a module status pushed by the server.
type moduleStatusMsg struct {
	status events.ModuleStatus
}

// reloadWorkflowMsg asks for the workflow to be fetched again.
type reloadWorkflowMsg struct{}

// eventsErrorMsg reports a dropped websocket connection.
type eventsErrorMsg struct {
	err error
}

// renamedMsg is the result of a rename.
type renamedMsg struct {
	name string
	err  error
}

// workflowChangedMsg is the result of undo or redo.
type workflowChangedMsg struct {
	action string
	err    error
}

// columnsLoadedMsg is the result of loading the picker's column names.
type columnsLoadedMsg struct {
	editor *columns.Editor
	err    error
}

// columnToggledMsg is the result of saving a column selection.
type columnToggledMsg struct {
	editor  *columns.Editor
	name    string
	changed bool
	err     error
}

// errorMsg triggers a redraw once a status message has expired.
type errorMsg struct{}

// errorMsgAfter returns a command that sends errorMsg after d.
func errorMsgAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return errorMsg{}
	})
}

// loadWorkflowCmd fetches the workflow and, when withLibrary is set, the
// module library in parallel. A library failure only drops the library.
func loadWorkflowCmd(ctx context.Context, api API, id int, withLibrary bool) tea.Cmd {
	return func() tea.Msg {
		var msg workflowLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			wf, err := api.LoadWorkflow(gctx, id)
			if err != nil {
				return fmt.Errorf("load workflow %d: %w", id, err)
			}
			msg.workflow = wf
			return nil
		})
		if withLibrary {
			g.Go(func() error {
				lib, err := api.ListModules(gctx)
				if err == nil {
					msg.library = lib
				}
				return nil
			})
		}
		msg.err = g.Wait()
		return msg
	}
}

// waitForTableChange blocks until the loader reports a change or ctx is done.
func waitForTableChange(ctx context.Context, ch <-chan tablewindow.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return tableChangedMsg{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

// waitForEvent blocks until the websocket listener forwards a message.
func waitForEvent(ctx context.Context, ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

func renameCmd(ctx context.Context, api API, id int, name string) tea.Cmd {
	return func() tea.Msg {
		saved, err := api.SetWorkflowName(ctx, id, name)
		return renamedMsg{name: saved, err: err}
	}
}

func undoCmd(ctx context.Context, api API, id int) tea.Cmd {
	return func() tea.Msg {
		return workflowChangedMsg{action: "undo", err: api.Undo(ctx, id)}
	}
}

func redoCmd(ctx context.Context, api API, id int) tea.Cmd {
	return func() tea.Msg {
		return workflowChangedMsg{action: "redo", err: api.Redo(ctx, id)}
	}
}

func loadColumnsCmd(ctx context.Context, editor *columns.Editor, revision int) tea.Cmd {
	return func() tea.Msg {
		return columnsLoadedMsg{editor: editor, err: editor.Load(ctx, revision)}
	}
}

func toggleColumnCmd(ctx context.Context, editor *columns.Editor, name string, checked bool) tea.Cmd {
	return func() tea.Msg {
		changed, err := editor.Toggle(ctx, name, checked)
		return columnToggledMsg{editor: editor, name: name, changed: changed, err: err}
	}
}
