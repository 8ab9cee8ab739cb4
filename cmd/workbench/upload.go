package main

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/upload"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type uploadClient interface {
	UploadFile(ctx context.Context, wfModuleID int, f upload.File) error
}

// NewUploadCmd creates the upload command with explicit dependencies.
func NewUploadCmd(client uploadClient) *cobra.Command {
	if client == nil {
		panic("NewUploadCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "upload <wf-module-id> <file>",
		Short: "Upload a data file to an upload module",
		Long: fmt.Sprintf(`Upload a data file to an upload module.

Accepted extensions: %s.`, upload.AllowedExtensionsList()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			f, err := upload.Prepare(args[1])
			if err != nil {
				return err
			}
			if err := client.UploadFile(commandContext(cmd), id, f); err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			colors.Success(fmt.Sprintf("Uploaded %s (%s) to wf-module %d", f.Name, humanize.Bytes(uint64(f.Size)), id))
			return nil
		},
	}
}

var uploadCmd = NewUploadCmd(apiClient)

func init() {
	cmd.RootCmd.AddCommand(uploadCmd)
}
