package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// Table kinds a source id can name.
const (
	KindRender = "render"
	KindInput  = "input"
)

// ErrInvalidSource is returned for source ids TableFetcher cannot route.
var ErrInvalidSource = errors.New("invalid table source")

// SourceID names a module table for the loader, e.g. "render/12".
func SourceID(kind string, wfModuleID int) string {
	return kind + "/" + strconv.Itoa(wfModuleID)
}

// ParseSourceID splits a source id into its kind and wf-module id.
func ParseSourceID(id string) (string, int, error) {
	kind, num, ok := strings.Cut(id, "/")
	if !ok || (kind != KindRender && kind != KindInput) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSource, id)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidSource, id)
	}
	return kind, n, nil
}

// TableFetcher serves loader requests from the render and input endpoints.
type TableFetcher struct {
	Client *Client
}

var _ tablewindow.Fetcher = TableFetcher{}

func (f TableFetcher) Fetch(ctx context.Context, req tablewindow.Request) (*tablewindow.Page, error) {
	kind, id, err := ParseSourceID(req.SourceID)
	if err != nil {
		return nil, err
	}
	if kind == KindInput {
		return f.Client.Input(ctx, id, req.StartRow, req.EndRow)
	}
	return f.Client.Render(ctx, id, req.StartRow, req.EndRow)
}
