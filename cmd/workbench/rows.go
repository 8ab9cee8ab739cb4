package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cristianoliveira/workbench/cmd"
	"github.com/cristianoliveira/workbench/internal/api"
	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/search"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/spf13/cobra"
)

type rowsClient interface {
	Render(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error)
	Input(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error)
}

const rowsCommandLong = `Print rows of a module's output table.

USAGE:
    workbench rows <wf-module-id> [OPTIONS]

OPTIONS:
    --start <n>        First row, counting from 0 (default 0)
    --end <n>          Row after the last one (default start + initial_rows)
    --all              Print every row, fetched page by page
    --input            Print the module's input table instead of its output
    --format <format>  Output format: table, json, csv (default from table_format)
    --grep <query>     Only print fetched rows matching the query
    --match <mode>     How --grep matches: substring, regex, token (default substring)
    -i, --ignore-case  Match --grep without regard to case
    -h, --help         Show this help`

// RowsOptions holds the parameters of a rows request.
type RowsOptions struct {
	WfModuleID int
	Start      int
	End        int
	All        bool
	Input      bool
	Format     string
	Grep       string
	Match      string
	IgnoreCase bool
}

// NewRowsCmd creates the rows command with explicit dependencies.
func NewRowsCmd(client rowsClient) *cobra.Command {
	if client == nil {
		panic("NewRowsCmd: client dependency cannot be nil")
	}

	var opts RowsOptions
	rowsCmd := &cobra.Command{
		Use:   "rows <wf-module-id>",
		Short: "Print rows of a module's table",
		Long:  rowsCommandLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("wf-module", args[0])
			if err != nil {
				return err
			}
			opts.WfModuleID = id
			if !cmd.Flags().Changed("format") {
				opts.Format = config.Get("table_format", string(format.FormatterTypeTable))
			}
			return PrintRows(commandContext(cmd), client, opts, cmd.OutOrStdout())
		},
	}

	rowsCmd.Flags().IntVar(&opts.Start, "start", 0, "First row, counting from 0")
	rowsCmd.Flags().IntVar(&opts.End, "end", 0, "Row after the last one (default start + initial_rows)")
	rowsCmd.Flags().BoolVar(&opts.All, "all", false, "Print every row")
	rowsCmd.Flags().BoolVar(&opts.Input, "input", false, "Print the input table instead of the output")
	rowsCmd.Flags().StringVar(&opts.Format, "format", string(format.FormatterTypeTable), "Output format: table, json, csv")
	rowsCmd.Flags().StringVar(&opts.Grep, "grep", "", "Only print fetched rows matching the query")
	rowsCmd.Flags().StringVar(&opts.Match, "match", search.ProviderSubstring, "How --grep matches: substring, regex, token")
	rowsCmd.Flags().BoolVarP(&opts.IgnoreCase, "ignore-case", "i", false, "Match --grep without regard to case")
	rowsCmd.MarkFlagsMutuallyExclusive("all", "start")
	rowsCmd.MarkFlagsMutuallyExclusive("all", "end")

	return rowsCmd
}

// PrintRows fetches the requested rows and writes them to w.
func PrintRows(ctx context.Context, client rowsClient, opts RowsOptions, w io.Writer) error {
	formatter, err := format.NewFormatter(format.FormatterType(opts.Format))
	if err != nil {
		return err
	}
	var matcher search.Provider
	if opts.Grep != "" {
		if matcher, err = search.New(opts.Match, search.WithCaseInsensitive(opts.IgnoreCase)); err != nil {
			return err
		}
		if err := search.Validate(matcher, opts.Grep); err != nil {
			return err
		}
	}

	kind := api.KindRender
	if opts.Input {
		kind = api.KindInput
	}
	source := api.SourceID(kind, opts.WfModuleID)
	fetcher := tableFetcher(client)

	var page *tablewindow.Page
	if opts.All {
		page, err = tablewindow.ReadAll(ctx, fetcher, source, 0, tablewindow.ConfigFromGlobal())
	} else {
		start, end := opts.Start, opts.End
		if end == 0 {
			end = start + tablewindow.ConfigFromGlobal().InitialWindowSize
		}
		if start < 0 || end <= start {
			return fmt.Errorf("invalid row range [%d, %d)", start, end)
		}
		page, err = fetcher.Fetch(ctx, tablewindow.Request{SourceID: source, StartRow: start, EndRow: end})
	}
	if err != nil {
		return fmt.Errorf("rows of module %d: %w", opts.WfModuleID, err)
	}
	table := format.TableFromPage(page)
	if matcher != nil {
		table.Rows, table.Positions = search.Filter(matcher, page, opts.Grep)
	}
	return formatter.FormatTable(table, w)
}

// tableFetcher routes render and input sources to client.
func tableFetcher(client rowsClient) tablewindow.Fetcher {
	return tablewindow.FetcherFunc(func(ctx context.Context, req tablewindow.Request) (*tablewindow.Page, error) {
		kind, id, err := api.ParseSourceID(req.SourceID)
		if err != nil {
			return nil, err
		}
		if kind == api.KindInput {
			return client.Input(ctx, id, req.StartRow, req.EndRow)
		}
		return client.Render(ctx, id, req.StartRow, req.EndRow)
	})
}

// rowsCmd represents the rows command
var rowsCmd = NewRowsCmd(apiClient)

func init() {
	cmd.RootCmd.AddCommand(rowsCmd)
}
