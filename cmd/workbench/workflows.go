package main

import (
	"context"
	"time"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

type workflowsClient interface {
	ListWorkflows(ctx context.Context) ([]workbench.WorkflowSummary, error)
}

type showClient interface {
	LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error)
}

// now is the clock used for relative times. Can be changed for testing.
var now = time.Now

// NewWorkflowsCmd creates the workflows command with explicit dependencies.
func NewWorkflowsCmd(client workflowsClient) *cobra.Command {
	if client == nil {
		panic("NewWorkflowsCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "workflows",
		Short: "List your workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListWorkflows(commandContext(cmd))
			if err != nil {
				return err
			}
			return format.Workflows(cmd.OutOrStdout(), list, now())
		},
	}
}

// NewShowCmd creates the show command with explicit dependencies.
func NewShowCmd(client showClient) *cobra.Command {
	if client == nil {
		panic("NewShowCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "show <workflow-id>",
		Short: "Show a workflow and its modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			wf, err := client.LoadWorkflow(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return format.Workflow(cmd.OutOrStdout(), wf, now())
		},
	}
}

var (
	workflowsCmd = NewWorkflowsCmd(apiClient)
	showCmd      = NewShowCmd(apiClient)
)

func init() {
	cmd.RootCmd.AddCommand(workflowsCmd, showCmd)
}
