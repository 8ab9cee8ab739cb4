package main

import (
	"context"
	"errors"
	"sync"

	"github.com/cristianoliveira/workbench/internal/api"
	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/cristianoliveira/workbench/internal/pagecache"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/tui/app"
	"github.com/cristianoliveira/workbench/internal/upload"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

// The clients are created on first use, after the root command has loaded
// the configuration.
var (
	apiClient   = &lazyClient{}
	cacheClient = &lazyCache{}
)

// lazyClient delegates to an api.Client built from the global configuration.
type lazyClient struct {
	once   sync.Once
	client *api.Client
}

func (l *lazyClient) get() *api.Client {
	l.once.Do(func() { l.client = api.NewFromConfig() })
	return l.client
}

func (l *lazyClient) BaseURL() string       { return l.get().BaseURL() }
func (l *lazyClient) SessionCookie() string { return l.get().SessionCookie() }

func (l *lazyClient) LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error) {
	return l.get().LoadWorkflow(ctx, id)
}

func (l *lazyClient) ListWorkflows(ctx context.Context) ([]workbench.WorkflowSummary, error) {
	return l.get().ListWorkflows(ctx)
}

func (l *lazyClient) AddModule(ctx context.Context, workflowID, moduleID, insertBefore int) (int, error) {
	return l.get().AddModule(ctx, workflowID, moduleID, insertBefore)
}

func (l *lazyClient) DeleteModule(ctx context.Context, wfModuleID int) error {
	return l.get().DeleteModule(ctx, wfModuleID)
}

func (l *lazyClient) SetWorkflowPublic(ctx context.Context, id int, public bool) error {
	return l.get().SetWorkflowPublic(ctx, id, public)
}

func (l *lazyClient) SetWorkflowName(ctx context.Context, id int, name string) (string, error) {
	return l.get().SetWorkflowName(ctx, id, name)
}

func (l *lazyClient) Undo(ctx context.Context, id int) error { return l.get().Undo(ctx, id) }
func (l *lazyClient) Redo(ctx context.Context, id int) error { return l.get().Redo(ctx, id) }

func (l *lazyClient) Duplicate(ctx context.Context, id int) (int, error) {
	return l.get().Duplicate(ctx, id)
}

func (l *lazyClient) ListModules(ctx context.Context) ([]workbench.Module, error) {
	return l.get().ListModules(ctx)
}

func (l *lazyClient) SetParameter(ctx context.Context, paramID int, value any) error {
	return l.get().SetParameter(ctx, paramID, value)
}

func (l *lazyClient) Render(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return l.get().Render(ctx, wfModuleID, startRow, endRow)
}

func (l *lazyClient) Input(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return l.get().Input(ctx, wfModuleID, startRow, endRow)
}

func (l *lazyClient) InputColumns(ctx context.Context, wfModuleID int) ([]string, error) {
	return l.get().InputColumns(ctx, wfModuleID)
}

func (l *lazyClient) DataVersions(ctx context.Context, wfModuleID int) (*workbench.DataVersions, error) {
	return l.get().DataVersions(ctx, wfModuleID)
}

func (l *lazyClient) SetDataVersion(ctx context.Context, wfModuleID int, version string) error {
	return l.get().SetDataVersion(ctx, wfModuleID, version)
}

func (l *lazyClient) SetNotes(ctx context.Context, wfModuleID int, text string) error {
	return l.get().SetNotes(ctx, wfModuleID, text)
}

func (l *lazyClient) SetCollapsed(ctx context.Context, wfModuleID int, collapsed bool) error {
	return l.get().SetCollapsed(ctx, wfModuleID, collapsed)
}

func (l *lazyClient) SetUpdateSettings(ctx context.Context, wfModuleID int, s workbench.UpdateSettings) error {
	return l.get().SetUpdateSettings(ctx, wfModuleID, s)
}

func (l *lazyClient) UploadFile(ctx context.Context, wfModuleID int, f upload.File) error {
	return l.get().UploadFile(ctx, wfModuleID, f)
}

// Listen streams the workflow's websocket events until ctx is done.
func (l *lazyClient) Listen(ctx context.Context, workflowID int, handle func(events.Event), onError func(error)) error {
	return newListener(l.get()).Run(ctx, workflowID, handle, onError)
}

func newListener(client *api.Client) *events.Listener {
	return &events.Listener{
		BaseURL: client.BaseURL(),
		Cookie:  client.SessionCookie(),
		Logger:  logging.With("component", "events"),
	}
}

// lazyCache opens the page cache database on first use.
type lazyCache struct {
	once  sync.Once
	store *pagecache.Store
	err   error
}

func (l *lazyCache) get() (*pagecache.Store, error) {
	l.once.Do(func() { l.store, l.err = pagecache.OpenFromConfig() })
	return l.store, l.err
}

func (l *lazyCache) Path() string { return pagecache.DefaultPath() }

func (l *lazyCache) Stats(ctx context.Context) (pagecache.Stats, error) {
	store, err := l.get()
	if err != nil {
		return pagecache.Stats{}, err
	}
	return store.Stats(ctx)
}

func (l *lazyCache) Clear(ctx context.Context) (int64, error) {
	store, err := l.get()
	if err != nil {
		return 0, err
	}
	return store.Clear(ctx)
}

// tuiDependencies wires the TUI to the server, the page cache and, when
// enabled, the workflow websocket.
func tuiDependencies() (app.Dependencies, error) {
	client := apiClient.get()
	var fetcher tablewindow.Fetcher = api.TableFetcher{Client: client}

	store, err := cacheClient.get()
	switch {
	case err == nil:
		fetcher = &pagecache.CachingFetcher{Next: fetcher, Store: store, Log: logging.With("component", "pagecache")}
	case errors.Is(err, pagecache.ErrCacheDisabled):
	default:
		logging.Warn("page cache unavailable", "error", err)
	}

	deps := app.Dependencies{
		API:     client,
		Fetcher: fetcher,
		Window:  tablewindow.ConfigFromGlobal(),
	}
	if config.GetBool("websocket_enabled", true) {
		deps.Events = newListener(client)
	}
	return deps, nil
}

// closeClients releases the cache database once the command is done.
func closeClients() {
	if cacheClient.store != nil {
		if err := cacheClient.store.Close(); err != nil {
			logging.Warn("closing page cache", "error", err)
		}
	}
}
