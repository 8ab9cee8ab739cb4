// Package cmd holds the root command shared by the workbench binary.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/errors"
	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/cristianoliveira/workbench/internal/version"
	"github.com/spf13/cobra"
)

var (
	debugFlag bool
	quietFlag bool
)

// outputWriter is where help is printed. Nil means the command's output.
var outputWriter io.Writer

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:               "workbench",
	Short:             "Browse and edit data workflows from the terminal.",
	Long:              `Browse and edit data workflows from the terminal.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := logging.ShutdownGlobal(); err != nil {
			colors.Debug(fmt.Sprintf("closing log file: %v", err))
		}
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	errors.Report(errors.NewConsoleHandler(), err)
	return err
}

// setup loads the configuration and starts logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	colors.SetDebug(debugFlag || config.GetBool("debug", false))
	colors.SetQuiet(quietFlag || config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	colors.SetLogger(logging.GetGlobal())
	logging.Debug("command started", "command", cmd.CommandPath(), "args", len(args))
	return nil
}

func init() {
	RootCmd.Version = version.String()

	// Hide the completion command
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors and warnings")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			if cmd.Long != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		PrintHelp(cmd)
	})
}

// commandOrder is the order commands are listed in help.
var commandOrder = []string{
	"open",
	"workflows",
	"show",
	"rows",
	"modules",
	"add-module",
	"delete-module",
	"rename",
	"publish",
	"unpublish",
	"undo",
	"redo",
	"duplicate",
	"set-param",
	"columns",
	"notes",
	"collapse",
	"expand",
	"versions",
	"schedule",
	"upload",
	"watch",
	"cache",
	"help",
	"version",
}

// PrintHelp writes the command overview of root.
func PrintHelp(root *cobra.Command) {
	w := outputWriter
	if w == nil {
		w = root.OutOrStdout()
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-32s %s", found.Use, found.Short))
	}

	fmt.Fprintf(w, `workbench v%s

%s

USAGE:
    workbench [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --debug         Print debug output
    -q, --quiet     Only print errors and warnings
    -h, --help      Show help message

Configuration is read from %s
and WORKBENCH_* environment variables.
`, root.Version, root.Short, strings.Join(cmdLines, "\n"), configPathHint())
}

func configPathHint() string {
	if p := os.Getenv(config.EnvPrefix + "CONFIG_PATH"); p != "" {
		return p
	}
	return "$XDG_CONFIG_HOME/workbench/config.toml"
}
