package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cristianoliveira/workbench/internal/workbench"
)

type idResponse struct {
	ID int `json:"id"`
}

// LoadWorkflow returns the workflow with its module stack.
func (c *Client) LoadWorkflow(ctx context.Context, id int) (*workbench.Workflow, error) {
	var wf workbench.Workflow
	if err := c.get(ctx, workflowPath(id), &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// ListWorkflows returns the workflows owned by the session user.
func (c *Client) ListWorkflows(ctx context.Context) ([]workbench.WorkflowSummary, error) {
	var out []workbench.WorkflowSummary
	if err := c.get(ctx, "/api/workflows", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddModule inserts the latest version of moduleID before position insertBefore
// and returns the id of the new wf-module.
func (c *Client) AddModule(ctx context.Context, workflowID, moduleID, insertBefore int) (int, error) {
	var out idResponse
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   workflowPath(workflowID) + "/addmodule",
		body:   map[string]int{"moduleId": moduleID, "insertBefore": insertBefore},
		out:    &out,
	})
	return out.ID, err
}

// SetWorkflowPublic shares or unshares a workflow.
func (c *Client) SetWorkflowPublic(ctx context.Context, id int, public bool) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   workflowPath(id),
		body:   map[string]bool{"public": public},
	})
}

// SetWorkflowName renames a workflow. Blank names become "Untitled Workflow".
func (c *Client) SetWorkflowName(ctx context.Context, id int, name string) (string, error) {
	name = workbench.NormalizeWorkflowName(name)
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   workflowPath(id),
		body:   map[string]string{"newName": name},
	})
	return name, err
}

// Undo reverts the last change to a workflow.
func (c *Client) Undo(ctx context.Context, id int) error {
	return c.do(ctx, request{method: http.MethodPut, path: workflowPath(id) + "/undo"})
}

// Redo reapplies the last undone change.
func (c *Client) Redo(ctx context.Context, id int) error {
	return c.do(ctx, request{method: http.MethodPut, path: workflowPath(id) + "/redo"})
}

// Duplicate copies a workflow and returns the id of the copy.
func (c *Client) Duplicate(ctx context.Context, id int) (int, error) {
	var out idResponse
	if err := c.get(ctx, workflowPath(id)+"/duplicate", &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("duplicate workflow %d: response carried no id", id)
	}
	return out.ID, nil
}

// ListModules returns the module library.
func (c *Client) ListModules(ctx context.Context) ([]workbench.Module, error) {
	var out []workbench.Module
	if err := c.get(ctx, "/api/modules/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetParameter stores a new parameter value.
func (c *Client) SetParameter(ctx context.Context, paramID int, value any) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/parameters/%d", paramID),
		body:   map[string]any{"value": value},
	})
}
