package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/upload"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

// fakeClient records calls made by the commands and answers from its fields.
type fakeClient struct {
	mu sync.Mutex

	workflow   *workbench.Workflow
	workflows  []workbench.WorkflowSummary
	modules    []workbench.Module
	inputCols  []string
	versions   *workbench.DataVersions
	totalRows  int
	err        error
	listenWith []events.Event

	calls    []string
	requests [][2]int
	params   map[int]any
	names    []string
	notes    map[int]string
	schedule workbench.UpdateSettings
	uploaded upload.File
	added    [3]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		workflow: &workbench.Workflow{
			ID:       1,
			Name:     "Sales",
			Revision: 3,
			Modules: []workbench.WfModule{
				{ID: 10, ModuleVersion: workbench.ModuleVersion{Module: workbench.Module{Name: "Load URL"}}},
				{
					ID:            11,
					ModuleVersion: workbench.ModuleVersion{Module: workbench.Module{Name: "Select columns"}},
					ParameterVals: []workbench.ParameterVal{
						{ID: 499, Spec: workbench.ParameterSpec{IDName: "drop", Type: "checkbox"}, Value: false},
						{ID: 500, Spec: workbench.ParameterSpec{IDName: "colnames", Type: workbench.ParamTypeMultiColumn}, Value: "b"},
					},
				},
			},
		},
		inputCols: []string{"a", "b", "c"},
		params:    map[int]any{},
		notes:     map[int]string{},
	}
}

func (f *fakeClient) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeClient) LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error) {
	if err := f.record(fmt.Sprintf("load %d", id)); err != nil {
		return nil, err
	}
	return f.workflow, nil
}

func (f *fakeClient) ListWorkflows(ctx context.Context) ([]workbench.WorkflowSummary, error) {
	return f.workflows, f.record("list")
}

func (f *fakeClient) ListModules(ctx context.Context) ([]workbench.Module, error) {
	return f.modules, f.record("modules")
}

func (f *fakeClient) AddModule(ctx context.Context, workflowID, moduleID, insertBefore int) (int, error) {
	f.added = [3]int{workflowID, moduleID, insertBefore}
	return 77, f.record("add")
}

func (f *fakeClient) DeleteModule(ctx context.Context, wfModuleID int) error {
	return f.record(fmt.Sprintf("delete %d", wfModuleID))
}

func (f *fakeClient) SetWorkflowPublic(ctx context.Context, id int, public bool) error {
	return f.record(fmt.Sprintf("public %d %t", id, public))
}

func (f *fakeClient) SetWorkflowName(ctx context.Context, id int, name string) (string, error) {
	f.names = append(f.names, name)
	return workbench.NormalizeWorkflowName(name), f.record(fmt.Sprintf("rename %d", id))
}

func (f *fakeClient) Undo(ctx context.Context, id int) error {
	return f.record(fmt.Sprintf("undo %d", id))
}

func (f *fakeClient) Redo(ctx context.Context, id int) error {
	return f.record(fmt.Sprintf("redo %d", id))
}

func (f *fakeClient) Duplicate(ctx context.Context, id int) (int, error) {
	return id + 100, f.record(fmt.Sprintf("duplicate %d", id))
}

func (f *fakeClient) SetParameter(ctx context.Context, paramID int, value any) error {
	if err := f.record(fmt.Sprintf("param %d", paramID)); err != nil {
		return err
	}
	f.params[paramID] = value
	return nil
}

func (f *fakeClient) InputColumns(ctx context.Context, wfModuleID int) ([]string, error) {
	return f.inputCols, f.record(fmt.Sprintf("columns %d", wfModuleID))
}

func (f *fakeClient) page(kind string, wfModuleID, start, end int) (*tablewindow.Page, error) {
	if err := f.record(fmt.Sprintf("%s %d", kind, wfModuleID)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, [2]int{start, end})
	f.mu.Unlock()
	if end > f.totalRows {
		end = f.totalRows
	}
	if start > end {
		start = end
	}
	rows := make([]tablewindow.Row, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, tablewindow.Row{"name": fmt.Sprintf("%s%d", kind, i)})
	}
	return &tablewindow.Page{Columns: []string{"name"}, Rows: rows, StartRow: start, EndRow: end, TotalRows: f.totalRows}, nil
}

func (f *fakeClient) Render(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return f.page("render", wfModuleID, startRow, endRow)
}

func (f *fakeClient) Input(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return f.page("input", wfModuleID, startRow, endRow)
}

func (f *fakeClient) DataVersions(ctx context.Context, wfModuleID int) (*workbench.DataVersions, error) {
	return f.versions, f.record(fmt.Sprintf("versions %d", wfModuleID))
}

func (f *fakeClient) SetDataVersion(ctx context.Context, wfModuleID int, version string) error {
	return f.record(fmt.Sprintf("select %d %s", wfModuleID, version))
}

func (f *fakeClient) SetNotes(ctx context.Context, wfModuleID int, text string) error {
	f.notes[wfModuleID] = text
	return f.record(fmt.Sprintf("notes %d", wfModuleID))
}

func (f *fakeClient) SetCollapsed(ctx context.Context, wfModuleID int, collapsed bool) error {
	return f.record(fmt.Sprintf("collapsed %d %t", wfModuleID, collapsed))
}

func (f *fakeClient) SetUpdateSettings(ctx context.Context, wfModuleID int, s workbench.UpdateSettings) error {
	f.schedule = s
	return f.record(fmt.Sprintf("schedule %d", wfModuleID))
}

func (f *fakeClient) UploadFile(ctx context.Context, wfModuleID int, file upload.File) error {
	f.uploaded = file
	return f.record(fmt.Sprintf("upload %d", wfModuleID))
}

func (f *fakeClient) Listen(ctx context.Context, workflowID int, handle func(events.Event), onError func(error)) error {
	if err := f.record(fmt.Sprintf("listen %d", workflowID)); err != nil {
		return err
	}
	for _, ev := range f.listenWith {
		handle(ev)
	}
	return events.ErrClosed
}

// execute runs c with args and returns what it wrote to its output.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}
