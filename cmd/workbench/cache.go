package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/colors"
	"github.com/cristianoliveira/workbench/internal/pagecache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type cacheStore interface {
	Path() string
	Stats(ctx context.Context) (pagecache.Stats, error)
	Clear(ctx context.Context) (int64, error)
}

// NewCacheCmd creates the cache command and its subcommands.
func NewCacheCmd(client cacheStore) *cobra.Command {
	if client == nil {
		panic("NewCacheCmd: client dependency cannot be nil")
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local page cache",
		Args:  cobra.NoArgs,
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show page cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.Stats(commandContext(cmd))
			if errors.Is(err, pagecache.ErrCacheDisabled) {
				colors.Info("Page cache is disabled")
				return nil
			}
			if err != nil {
				return err
			}
			return printCacheStats(cmd.OutOrStdout(), client.Path(), st)
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client.Clear(commandContext(cmd))
			if errors.Is(err, pagecache.ErrCacheDisabled) {
				colors.Info("Page cache is disabled")
				return nil
			}
			if err != nil {
				return err
			}
			colors.Success(fmt.Sprintf("Removed %d cached pages", n))
			return nil
		},
	})

	return cacheCmd
}

func printCacheStats(w io.Writer, path string, st pagecache.Stats) error {
	lines := []string{
		fmt.Sprintf("Path:     %s", path),
		fmt.Sprintf("Pages:    %d of %d", st.Entries, st.MaxEntries),
		fmt.Sprintf("Sources:  %d", st.Sources),
		fmt.Sprintf("Size:     %s", humanize.Bytes(uint64(st.Bytes))),
	}
	if st.Entries > 0 {
		lines = append(lines,
			fmt.Sprintf("Oldest:   %s", humanize.Time(st.Oldest)),
			fmt.Sprintf("Newest:   %s", humanize.Time(st.Newest)),
		)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

var cacheCmd = NewCacheCmd(cacheClient)

func init() {
	cmd.RootCmd.AddCommand(cacheCmd)
}
