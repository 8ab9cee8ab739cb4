package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/workbench"
	"github.com/spf13/cobra"
)

type notesClient interface {
	SetNotes(ctx context.Context, wfModuleID int, text string) error
}

type collapseClient interface {
	SetCollapsed(ctx context.Context, wfModuleID int, collapsed bool) error
}

type versionsClient interface {
	DataVersions(ctx context.Context, wfModuleID int) (*workbench.DataVersions, error)
	SetDataVersion(ctx context.Context, wfModuleID int, version string) error
}

type scheduleClient interface {
	SetUpdateSettings(ctx context.Context, wfModuleID int, s workbench.UpdateSettings) error
}

// NewNotesCmd creates the notes command with explicit dependencies.
func NewNotesCmd(client notesClient) *cobra.Command {
	if client == nil {
		panic("NewNotesCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "notes <wf-module-id> [text...]",
		Short: "Set the notes of a module",
		Long: `Set the notes of a module.

Words after the module id are joined with spaces. Without text the notes are cleared.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if err := client.SetNotes(commandContext(cmd), id, text); err != nil {
				return fmt.Errorf("set notes of wf-module %d: %w", id, err)
			}
			if text == "" {
				colors.Success(fmt.Sprintf("Notes of wf-module %d cleared", id))
			} else {
				colors.Success(fmt.Sprintf("Notes of wf-module %d updated", id))
			}
			return nil
		},
	}
}

// NewCollapseCmd creates the collapse or expand command, depending on collapsed.
func NewCollapseCmd(client collapseClient, collapsed bool) *cobra.Command {
	if client == nil {
		panic("NewCollapseCmd: client dependency cannot be nil")
	}

	use, short, done := "expand", "Expand a module in the workflow view", "expanded"
	if collapsed {
		use, short, done = "collapse", "Collapse a module in the workflow view", "collapsed"
	}
	return &cobra.Command{
		Use:   use + " <wf-module-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			if err := client.SetCollapsed(commandContext(cmd), id, collapsed); err != nil {
				return fmt.Errorf("%s wf-module %d: %w", use, id, err)
			}
			colors.Success(fmt.Sprintf("Wf-module %d %s", id, done))
			return nil
		},
	}
}

// NewVersionsCmd creates the versions command with explicit dependencies.
func NewVersionsCmd(client versionsClient) *cobra.Command {
	if client == nil {
		panic("NewVersionsCmd: client dependency cannot be nil")
	}

	var selectVersion string
	versionsCmd := &cobra.Command{
		Use:   "versions <wf-module-id>",
		Short: "List or select the stored data versions of a module",
		Long: `List the stored data versions of a module. The selected version is marked with *.

With --select the given version becomes the module's current data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if selectVersion != "" {
				if err := client.SetDataVersion(ctx, id, selectVersion); err != nil {
					return fmt.Errorf("select data version %s: %w", selectVersion, err)
				}
				colors.Success(fmt.Sprintf("Data version %s selected", selectVersion))
				return nil
			}
			dv, err := client.DataVersions(ctx, id)
			if err != nil {
				return fmt.Errorf("list data versions of wf-module %d: %w", id, err)
			}
			return format.DataVersions(cmd.OutOrStdout(), dv)
		},
	}
	versionsCmd.Flags().StringVar(&selectVersion, "select", "", "Version to select")

	return versionsCmd
}

// ScheduleOptions are the flags of the schedule command.
type ScheduleOptions struct {
	Auto  bool
	Off   bool
	Every int
	Units string
}

// Settings validates the options and converts them into the server's update settings.
func (o ScheduleOptions) Settings() (workbench.UpdateSettings, error) {
	switch {
	case o.Auto && o.Off:
		return workbench.UpdateSettings{}, errors.New("--auto and --off cannot be combined")
	case !o.Auto && !o.Off:
		return workbench.UpdateSettings{}, errors.New("one of --auto or --off is required")
	}
	if o.Every <= 0 {
		return workbench.UpdateSettings{}, fmt.Errorf("invalid interval %d: must be a positive integer", o.Every)
	}
	if _, err := workbench.UnitsToSeconds(o.Every, o.Units); err != nil {
		return workbench.UpdateSettings{}, err
	}
	return workbench.UpdateSettings{
		AutoUpdateData: o.Auto,
		UpdateInterval: o.Every,
		UpdateUnits:    o.Units,
	}, nil
}

// NewScheduleCmd creates the schedule command with explicit dependencies.
func NewScheduleCmd(client scheduleClient) *cobra.Command {
	if client == nil {
		panic("NewScheduleCmd: client dependency cannot be nil")
	}

	var opts ScheduleOptions
	scheduleCmd := &cobra.Command{
		Use:   "schedule <wf-module-id>",
		Short: "Turn automatic data updates of a module on or off",
		Long: fmt.Sprintf(`Turn automatic data updates of a module on or off.

The interval is a count of units, where units is one of: %s.`, strings.Join(workbench.Units(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			settings, err := opts.Settings()
			if err != nil {
				return err
			}
			if err := client.SetUpdateSettings(commandContext(cmd), id, settings); err != nil {
				return fmt.Errorf("schedule wf-module %d: %w", id, err)
			}
			if settings.AutoUpdateData {
				colors.Success(fmt.Sprintf("Wf-module %d updates every %d %s", id, settings.UpdateInterval, settings.UpdateUnits))
			} else {
				colors.Success(fmt.Sprintf("Automatic updates of wf-module %d turned off", id))
			}
			return nil
		},
	}
	scheduleCmd.Flags().BoolVar(&opts.Auto, "auto", false, "Update the data automatically")
	scheduleCmd.Flags().BoolVar(&opts.Off, "off", false, "Only update the data manually")
	scheduleCmd.Flags().IntVar(&opts.Every, "every", 1, "Interval count")
	scheduleCmd.Flags().StringVar(&opts.Units, "units", "days", "Interval unit")

	return scheduleCmd
}

var (
	notesCmd    = NewNotesCmd(apiClient)
	collapseCmd = NewCollapseCmd(apiClient, true)
	expandCmd   = NewCollapseCmd(apiClient, false)
	versionsCmd = NewVersionsCmd(apiClient)
	scheduleCmd = NewScheduleCmd(apiClient)
)

func init() {
	cmd.RootCmd.AddCommand(notesCmd, collapseCmd, expandCmd, versionsCmd, scheduleCmd)
}
