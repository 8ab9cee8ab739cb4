package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/dedup"
	"github.com/cristianoliveira/workbench/internal/events"
	"github.com/cristianoliveira/workbench/internal/formatter"
	"github.com/cristianoliveira/workbench/internal/hooks"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

type watchClient interface {
	LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error)
	Listen(ctx context.Context, workflowID int, handle func(events.Event), onError func(error)) error
}

type hookRunner interface {
	Run(ctx context.Context, point string, vars map[string]string) error
}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Template formats module status lines. Empty means the default preset.
	Template string
	// Hooks runs scripts after each event. Nil runs none.
	Hooks hookRunner
	// Dedup drops repeated status events. Nil keeps all of them.
	Dedup *dedup.Filter
}

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd(client watchClient) *cobra.Command {
	if client == nil {
		panic("NewWatchCmd: client dependency cannot be nil")
	}

	var preset, template string
	var dedupWindow time.Duration
	presets := formatter.NewPresetRegistry()
	presetNames := make([]string, 0, len(presets.List()))
	for _, p := range presets.List() {
		presetNames = append(presetNames, p.Name)
	}

	watchCmd := &cobra.Command{
		Use:   "watch <workflow-id>",
		Short: "Print live events of a workflow",
		Long: fmt.Sprintf(`Print module status changes and workflow reloads as they happen.

The connection is retried with backoff until interrupted with Ctrl-C.

FORMAT:
    --preset picks a named line format: %s.
    --template sets a custom one using {{variable}} placeholders:
    %s.

HOOKS:
    Executable files in <hooks_dir>/module-status and
    <hooks_dir>/workflow-reload run on each event, in name order, with
    WORKBENCH_WORKFLOW_ID, WORKBENCH_MODULE_ID, WORKBENCH_MODULE_NAME,
    WORKBENCH_MODULE_STATUS and WORKBENCH_MODULE_ERROR set. With
    hooks_failure_mode = "abort" a failing hook stops the watch.

DEDUPLICATION:
    With --dedup-window a module status repeated within the window is not
    printed and runs no hooks. watch_dedup_criteria = "exact" also
    compares error messages.`,
			strings.Join(presetNames, ", "), strings.Join(formatter.Variables(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			line, err := formatter.Resolve(presets, preset, template)
			if err != nil {
				return err
			}
			dedupOpts := dedup.Load()
			if cmd.Flags().Changed("dedup-window") {
				dedupOpts.Window = dedupWindow
			}
			runner := hooks.NewFromConfig()
			runner.Warn = func(msg string) { colors.Warning(msg) }

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Watch(ctx, client, id, WatchOptions{
				Template: line,
				Hooks:    runner,
				Dedup:    dedup.NewFilter(dedupOpts),
			}, cmd.OutOrStdout())
		},
	}
	watchCmd.Flags().StringVar(&preset, "preset", formatter.DefaultPreset, "Named line format")
	watchCmd.Flags().StringVar(&template, "template", "", "Custom line format, overrides --preset")
	watchCmd.Flags().DurationVar(&dedupWindow, "dedup-window", 0, "Hide a repeated module status seen within this duration (default from watch_dedup_window)")

	return watchCmd
}

// Watch prints the events of workflowID to w until ctx is done, running the
// matching hooks after each one.
func Watch(ctx context.Context, client watchClient, workflowID int, opts WatchOptions, w io.Writer) error {
	line := opts.Template
	if line == "" {
		var err error
		if line, err = formatter.Resolve(formatter.NewPresetRegistry(), "", ""); err != nil {
			return err
		}
	}
	engine := formatter.NewTemplateEngine()

	wf, err := client.LoadWorkflow(ctx, workflowID)
	if err != nil {
		return err
	}
	names := moduleNames(wf)
	colors.Info(fmt.Sprintf("Watching %q (revision %d)", wf.Name, wf.Revision))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var hookErr error
	runHooks := func(point string, vars map[string]string) {
		if opts.Hooks == nil || hookErr != nil {
			return
		}
		vars["WORKBENCH_WORKFLOW_ID"] = strconv.Itoa(workflowID)
		if err := opts.Hooks.Run(ctx, point, vars); err != nil {
			hookErr = err
			cancel()
		}
	}

	handle := func(ev events.Event) {
		switch e := ev.(type) {
		case events.ModuleStatus:
			at := now()
			if opts.Dedup.Duplicate(dedup.Record{ModuleID: e.ID, Status: e.Status, ErrorMsg: e.ErrorMsg}, at) {
				return
			}
			text, err := engine.Substitute(line, formatter.VariableContext{
				Time:         at,
				WorkflowID:   wf.ID,
				WorkflowName: wf.Name,
				Revision:     wf.Revision,
				ModuleID:     e.ID,
				ModuleName:   names[e.ID],
				Status:       e.Status,
				ErrorMsg:     e.ErrorMsg,
			})
			if err != nil {
				colors.Warning("format event: " + err.Error())
				return
			}
			fmt.Fprintln(w, text)
			runHooks(hooks.PointModuleStatus, map[string]string{
				"WORKBENCH_MODULE_ID":     strconv.Itoa(e.ID),
				"WORKBENCH_MODULE_NAME":   names[e.ID],
				"WORKBENCH_MODULE_STATUS": e.Status,
				"WORKBENCH_MODULE_ERROR":  e.ErrorMsg,
			})
		case events.ReloadWorkflow:
			reloaded, err := client.LoadWorkflow(ctx, workflowID)
			if err != nil {
				colors.Warning("reload workflow: " + err.Error())
				return
			}
			wf = reloaded
			opts.Dedup.Reset()
			names = moduleNames(wf)
			fmt.Fprintf(w, "workflow reloaded: revision %d, %d modules\n", wf.Revision, len(wf.Modules))
			runHooks(hooks.PointWorkflowReload, map[string]string{
				"WORKBENCH_REVISION": strconv.Itoa(wf.Revision),
			})
		}
	}
	onError := func(err error) {
		colors.Warning("connection lost: " + err.Error())
	}

	err = client.Listen(ctx, workflowID, handle, onError)
	if hookErr != nil {
		return hookErr
	}
	if errors.Is(err, events.ErrClosed) {
		return nil
	}
	return err
}

func moduleNames(wf *workbench.Workflow) map[int]string {
	names := make(map[int]string, len(wf.Modules))
	for i := range wf.Modules {
		names[wf.Modules[i].ID] = wf.Modules[i].Name()
	}
	return names
}

var watchCmd = NewWatchCmd(apiClient)

func init() {
	cmd.RootCmd.AddCommand(watchCmd)
}
