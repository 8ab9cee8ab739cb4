package main

import (
	"fmt"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/version"
	"github.com/spf13/cobra"
)

type versionClient interface {
	Version() string
}

type buildVersion struct{}

func (buildVersion) Version() string { return version.String() }

// NewVersionCmd creates the version command with explicit dependencies.
func NewVersionCmd(client versionClient) *cobra.Command {
	if client == nil {
		panic("NewVersionCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of workbench.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "workbench version %s\n", client.Version())
			return nil
		},
	}
}

var versionCmd = NewVersionCmd(buildVersion{})

func init() {
	cmd.RootCmd.AddCommand(versionCmd)
}
