package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/spf13/cobra"
)

type renameClient interface {
	SetWorkflowName(ctx context.Context, id int, name string) (string, error)
}

type publishClient interface {
	SetWorkflowPublic(ctx context.Context, id int, public bool) error
}

type historyClient interface {
	Undo(ctx context.Context, id int) error
	Redo(ctx context.Context, id int) error
}

type duplicateClient interface {
	Duplicate(ctx context.Context, id int) (int, error)
}

// NewRenameCmd creates the rename command with explicit dependencies.
func NewRenameCmd(client renameClient) *cobra.Command {
	if client == nil {
		panic("NewRenameCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "rename <workflow-id> [name...]",
		Short: "Rename a workflow",
		Long: `Rename a workflow. The words after the id form the new name; a blank
name becomes "Untitled Workflow".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			name, err := client.SetWorkflowName(commandContext(cmd), id, strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("rename workflow %d: %w", id, err)
			}
			colors.Success(fmt.Sprintf("Workflow %d renamed to %q", id, name))
			return nil
		},
	}
}

// NewPublishCmd creates the publish or unpublish command.
func NewPublishCmd(client publishClient, public bool) *cobra.Command {
	if client == nil {
		panic("NewPublishCmd: client dependency cannot be nil")
	}

	use, short, state := "publish", "Share a workflow publicly", "public"
	if !public {
		use, short, state = "unpublish", "Make a workflow private", "private"
	}
	return &cobra.Command{
		Use:   use + " <workflow-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			if err := client.SetWorkflowPublic(commandContext(cmd), id, public); err != nil {
				return fmt.Errorf("%s workflow %d: %w", use, id, err)
			}
			colors.Success(fmt.Sprintf("Workflow %d is now %s", id, state))
			return nil
		},
	}
}

// NewUndoCmd creates the undo command with explicit dependencies.
func NewUndoCmd(client historyClient) *cobra.Command {
	if client == nil {
		panic("NewUndoCmd: client dependency cannot be nil")
	}
	return historyCmd("undo", "Revert the last change to a workflow", client.Undo)
}

// NewRedoCmd creates the redo command with explicit dependencies.
func NewRedoCmd(client historyClient) *cobra.Command {
	if client == nil {
		panic("NewRedoCmd: client dependency cannot be nil")
	}
	return historyCmd("redo", "Reapply the last undone change", client.Redo)
}

func historyCmd(action, short string, apply func(ctx context.Context, id int) error) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <workflow-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			if err := apply(commandContext(cmd), id); err != nil {
				return fmt.Errorf("%s workflow %d: %w", action, id, err)
			}
			colors.Success(fmt.Sprintf("Workflow %d: %s done", id, action))
			return nil
		},
	}
}

// NewDuplicateCmd creates the duplicate command with explicit dependencies.
func NewDuplicateCmd(client duplicateClient) *cobra.Command {
	if client == nil {
		panic("NewDuplicateCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "duplicate <workflow-id>",
		Short: "Copy a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("workflow", args[0])
			if err != nil {
				return err
			}
			copyID, err := client.Duplicate(commandContext(cmd), id)
			if err != nil {
				return fmt.Errorf("duplicate workflow %d: %w", id, err)
			}
			colors.Success(fmt.Sprintf("Workflow %d copied to %d", id, copyID))
			fmt.Fprintln(cmd.OutOrStdout(), copyID)
			return nil
		},
	}
}

var (
	renameCmd    = NewRenameCmd(apiClient)
	publishCmd   = NewPublishCmd(apiClient, true)
	unpublishCmd = NewPublishCmd(apiClient, false)
	undoCmd      = NewUndoCmd(apiClient)
	redoCmd      = NewRedoCmd(apiClient)
	duplicateCmd = NewDuplicateCmd(apiClient)
)

func init() {
	cmd.RootCmd.AddCommand(renameCmd, publishCmd, unpublishCmd, undoCmd, redoCmd, duplicateCmd)
}
