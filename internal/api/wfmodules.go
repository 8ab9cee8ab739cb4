package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/cristianoliveira/workbench/internal/upload"
	"github.com/cristianoliveira/workbench/internal/workbench"
)

// DeleteModule removes a wf-module from its workflow.
func (c *Client) DeleteModule(ctx context.Context, wfModuleID int) error {
	return c.do(ctx, request{method: http.MethodDelete, path: wfModulePath(wfModuleID)})
}

// Render returns rows [startRow, endRow) of the module's output. Zero bounds
// are left out of the query; the server clips the range to the table.
func (c *Client) Render(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return c.table(ctx, wfModulePath(wfModuleID)+"/render", startRow, endRow)
}

// Input returns rows of the table the module receives, which is the output of
// the module before it. The first module has an empty input.
func (c *Client) Input(ctx context.Context, wfModuleID, startRow, endRow int) (*tablewindow.Page, error) {
	return c.table(ctx, wfModulePath(wfModuleID)+"/input", startRow, endRow)
}

func (c *Client) table(ctx context.Context, path string, startRow, endRow int) (*tablewindow.Page, error) {
	var page tablewindow.Page
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		query:  rowRange(startRow, endRow),
		out:    &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// InputColumns returns the column names of the module's input table. Only the
// first row is requested since the rows themselves are not needed.
func (c *Client) InputColumns(ctx context.Context, wfModuleID int) ([]string, error) {
	page, err := c.Input(ctx, wfModuleID, 0, 1)
	if err != nil {
		return nil, err
	}
	return page.Columns, nil
}

// DataVersions lists the stored versions of a module's fetched data.
func (c *Client) DataVersions(ctx context.Context, wfModuleID int) (*workbench.DataVersions, error) {
	var out workbench.DataVersions
	if err := c.get(ctx, wfModulePath(wfModuleID)+"/dataversions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetDataVersion selects one of the stored data versions.
func (c *Client) SetDataVersion(ctx context.Context, wfModuleID int, version string) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   wfModulePath(wfModuleID) + "/dataversions",
		body:   map[string]string{"selected": version},
	})
}

// SetNotes replaces the notes of a module.
func (c *Client) SetNotes(ctx context.Context, wfModuleID int, text string) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   wfModulePath(wfModuleID),
		body:   map[string]string{"notes": text},
	})
}

// SetCollapsed stores whether a module is shown collapsed.
func (c *Client) SetCollapsed(ctx context.Context, wfModuleID int, collapsed bool) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   wfModulePath(wfModuleID),
		body:   map[string]bool{"collapsed": collapsed},
	})
}

// SetUpdateSettings configures automatic data refresh. The interval unit is
// checked locally when auto update is on.
func (c *Client) SetUpdateSettings(ctx context.Context, wfModuleID int, s workbench.UpdateSettings) error {
	if s.AutoUpdateData {
		if _, err := workbench.UnitsToSeconds(s.UpdateInterval, s.UpdateUnits); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   wfModulePath(wfModuleID),
		body:   s,
	})
}

// UploadFile sends a prepared file to the upload module wfModuleID.
func (c *Client) UploadFile(ctx context.Context, wfModuleID int, f upload.File) error {
	const path = "/api/uploadfile"
	if _, err := os.Stat(f.Path); err != nil {
		return fmt.Errorf("upload %s: %w", f.Name, err)
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetFile("file", f.Path).
		SetFormData(map[string]string{
			"name":      f.Name,
			"uuid":      f.UUID,
			"size":      strconv.FormatInt(f.Size, 10),
			"wf_module": strconv.Itoa(wfModuleID),
		}).
		Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	c.log.Info("uploaded file", "wf_module", wfModuleID, "name", f.Name, "size", f.Size, "status", res.StatusCode())
	if !res.IsSuccess() {
		return newStatusError(http.MethodPost, path, res.StatusCode(), res.String())
	}
	return nil
}
