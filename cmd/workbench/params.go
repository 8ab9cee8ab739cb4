package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/columns"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

type setParamClient interface {
	SetParameter(ctx context.Context, paramID int, value any) error
}

type columnsClient interface {
	LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error)
	columns.Store
}

// NewSetParamCmd creates the set-param command with explicit dependencies.
func NewSetParamCmd(client setParamClient) *cobra.Command {
	if client == nil {
		panic("NewSetParamCmd: client dependency cannot be nil")
	}

	var asJSON bool
	setCmd := &cobra.Command{
		Use:   "set-param <param-id> <value>",
		Short: "Set a module parameter",
		Long: `Set a module parameter.

The value is sent as a string unless --json is given, in which case it is
parsed as a JSON number, boolean, string or list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("parameter", args[0])
			if err != nil {
				return err
			}
			value, err := parseParamValue(args[1], asJSON)
			if err != nil {
				return err
			}
			if err := client.SetParameter(commandContext(cmd), id, value); err != nil {
				return fmt.Errorf("set parameter %d: %w", id, err)
			}
			colors.Success(fmt.Sprintf("Parameter %d updated", id))
			return nil
		},
	}
	setCmd.Flags().BoolVar(&asJSON, "json", false, "Parse the value as JSON")

	return setCmd
}

func parseParamValue(raw string, asJSON bool) (any, error) {
	if !asJSON {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON value %q: %w", raw, err)
	}
	return v, nil
}

const columnsCommandLong = `Show or change the columns selected by a module's column parameter.

USAGE:
    workbench columns <workflow-id> <wf-module-id> [OPTIONS]

Without --toggle the available input columns are listed, selected ones
marked with [x]. Each --toggle saves immediately.

OPTIONS:
    --param <id>               Parameter to edit (default: first column parameter)
    --toggle <name>[=on|off]   Select, unselect or flip a column; repeatable
    -h, --help                 Show this help`

// NewColumnsCmd creates the columns command with explicit dependencies.
func NewColumnsCmd(client columnsClient) *cobra.Command {
	if client == nil {
		panic("NewColumnsCmd: client dependency cannot be nil")
	}

	var paramID int
	var toggles []string
	colCmd := &cobra.Command{
		Use:   "columns <workflow-id> <wf-module-id>",
		Short: "Show or change a module's selected columns",
		Long:  columnsCommandLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			wfModuleID, err := parseID("wf-module", args[1])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			wf, err := client.LoadWorkflow(ctx, workflowID)
			if err != nil {
				return err
			}
			editor, err := columnEditor(client, wf, wfModuleID, paramID)
			if err != nil {
				return err
			}
			if err := editor.Load(ctx, wf.Revision); err != nil {
				return err
			}

			for _, t := range toggles {
				name, checked, err := parseToggle(t, editor.Selection())
				if err != nil {
					return err
				}
				changed, err := editor.Toggle(ctx, name, checked)
				if err != nil {
					return err
				}
				if !changed {
					continue
				}
				verb := "unselected"
				if checked {
					verb = "selected"
				}
				colors.Success(fmt.Sprintf("Column %q %s", name, verb))
			}
			return printColumns(cmd.OutOrStdout(), editor)
		},
	}
	colCmd.Flags().IntVar(&paramID, "param", 0, "Parameter to edit (default: first column parameter)")
	colCmd.Flags().StringArrayVar(&toggles, "toggle", nil, "Column to toggle, optionally name=on or name=off")

	return colCmd
}

// columnEditor finds the column parameter of wfModuleID in wf.
func columnEditor(store columns.Store, wf *workbench.Workflow, wfModuleID, paramID int) (*columns.Editor, error) {
	mod, ok := wf.ModuleByID(wfModuleID)
	if !ok {
		return nil, fmt.Errorf("wf-module %d is not part of workflow %d", wfModuleID, wf.ID)
	}
	params := mod.ParamsOfType(workbench.ParamTypeMultiColumn)
	if len(params) == 0 {
		return nil, fmt.Errorf("%s (wf-module %d) has no column parameter", mod.Name(), wfModuleID)
	}
	p := params[0]
	if paramID != 0 {
		found, ok := mod.ParamByID(paramID)
		if !ok || found.Spec.Type != workbench.ParamTypeMultiColumn {
			return nil, fmt.Errorf("parameter %d is not a column parameter of wf-module %d", paramID, wfModuleID)
		}
		p = *found
	}
	return columns.NewEditor(store, wfModuleID, p.ID, p.StringValue()), nil
}

// parseToggle reads name, name=on or name=off. A bare name flips the column.
func parseToggle(s string, current columns.Selection) (string, bool, error) {
	name, state, hasState := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, fmt.Errorf("invalid toggle %q: missing column name", s)
	}
	if !hasState {
		return name, !current.Contains(name), nil
	}
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "on", "true", "1", "yes":
		return name, true, nil
	case "off", "false", "0", "no":
		return name, false, nil
	default:
		return "", false, fmt.Errorf("invalid toggle %q: state must be on or off", s)
	}
}

func printColumns(w io.Writer, editor *columns.Editor) error {
	sel := editor.Selection()
	available := editor.Available()
	if len(available) == 0 {
		_, err := fmt.Fprintln(w, "No columns")
		return err
	}
	for _, name := range available {
		box := "[ ]"
		if sel.Contains(name) {
			box = "[x]"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", box, name); err != nil {
			return err
		}
	}
	return nil
}

var (
	setParamCmd = NewSetParamCmd(apiClient)
	columnsCmd  = NewColumnsCmd(apiClient)
)

func init() {
	cmd.RootCmd.AddCommand(setParamCmd, columnsCmd)
}
