package main

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

type modulesClient interface {
	ListModules(ctx context.Context) ([]workbench.Module, error)
}

type addModuleClient interface {
	LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error)
	AddModule(ctx context.Context, workflowID, moduleID, insertBefore int) (int, error)
}

type deleteModuleClient interface {
	DeleteModule(ctx context.Context, wfModuleID int) error
}

// NewModulesCmd creates the modules command with explicit dependencies.
func NewModulesCmd(client modulesClient) *cobra.Command {
	if client == nil {
		panic("NewModulesCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "modules",
		Short: "List the module library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListModules(commandContext(cmd))
			if err != nil {
				return err
			}
			return format.Modules(cmd.OutOrStdout(), list)
		},
	}
}

// NewAddModuleCmd creates the add-module command with explicit dependencies.
func NewAddModuleCmd(client addModuleClient) *cobra.Command {
	if client == nil {
		panic("NewAddModuleCmd: client dependency cannot be nil")
	}

	var position int
	addCmd := &cobra.Command{
		Use:   "add-module <workflow-id> <module-id>",
		Short: "Add a module to a workflow",
		Long: `Add the latest version of a library module to a workflow.

The module is appended to the end of the stack unless --position is given.
Positions count from 0.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			moduleID, err := parseID("module", args[1])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			wf, err := client.LoadWorkflow(ctx, workflowID)
			if err != nil {
				return err
			}
			insertBefore := position
			if insertBefore < 0 || insertBefore > len(wf.Modules) {
				insertBefore = len(wf.Modules)
			}

			wfModuleID, err := client.AddModule(ctx, workflowID, moduleID, insertBefore)
			if err != nil {
				return fmt.Errorf("add module %d: %w", moduleID, err)
			}
			colors.Success(fmt.Sprintf("Added module %d to workflow %d as wf-module %d at position %d",
				moduleID, workflowID, wfModuleID, insertBefore))
			return nil
		},
	}
	addCmd.Flags().IntVar(&position, "position", -1, "Insert before this position (default: append)")

	return addCmd
}

// NewDeleteModuleCmd creates the delete-module command with explicit dependencies.
func NewDeleteModuleCmd(client deleteModuleClient) *cobra.Command {
	if client == nil {
		panic("NewDeleteModuleCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "delete-module <wf-module-id>",
		Short: "Remove a module from its workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteModule(commandContext(cmd), id); err != nil {
				return fmt.Errorf("delete module %d: %w", id, err)
			}
			colors.Success(fmt.Sprintf("Deleted wf-module %d", id))
			return nil
		},
	}
}

var (
	modulesCmd      = NewModulesCmd(apiClient)
	addModuleCmd    = NewAddModuleCmd(apiClient)
	deleteModuleCmd = NewDeleteModuleCmd(apiClient)
)

func init() {
	cmd.RootCmd.AddCommand(modulesCmd, addModuleCmd, deleteModuleCmd)
}
