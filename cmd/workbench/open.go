package main

import (
	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/tui/app"
	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command with explicit dependencies.
func NewOpenCmd(client app.Client) *cobra.Command {
	if client == nil {
		panic("NewOpenCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "open [workflow-id]",
		Short: "Open a workflow in the terminal UI",
		Long: `Open a workflow in the terminal UI.

Without an id the last opened workflow is reopened, with the module and
table it was showing.

KEY BINDINGS:
    j/k, ctrl+d/ctrl+u   Move through rows, half a page at a time
    g/G                  First/last row
    tab, [ ]             Select the next/previous module
    i                    Toggle the module's input and output table
    c                    Choose columns of the module's column parameter
    r                    Rename the workflow
    u/U                  Undo/redo
    R                    Reload
    ?                    Show all keys
    q                    Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := 0
			if len(args) == 1 {
				var err error
				if id, err = parseID("workflow", args[0]); err != nil {
					return err
				}
			}
			return app.Open(client, id)
		},
	}
}

// openCmd represents the open command
var openCmd = NewOpenCmd(app.NewDefaultClient(app.DependencyFactoryFunc(tuiDependencies), nil, nil))

func init() {
	cmd.RootCmd.AddCommand(openCmd)
}
