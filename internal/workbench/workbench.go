// Package workbench defines the workflow, module and parameter types served by
// the workbench API.
package workbench

import (
	"strings"
	"time"
)

// UntitledWorkflow is the name given to workflows renamed to a blank string.
const UntitledWorkflow = "Untitled Workflow"

// Module status values reported by the server.
const (
	StatusReady = "ready"
	StatusBusy  = "busy"
	StatusError = "error"
)

// ParamTypeMultiColumn is the parameter type holding a comma separated column list.
const ParamTypeMultiColumn = "multicolumn"

// Workflow is a full workflow with its module stack.
type Workflow struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Revision   int        `json:"revision"`
	Modules    []WfModule `json:"wf_modules"`
	Public     bool       `json:"public"`
	ReadOnly   bool       `json:"read_only"`
	LastUpdate time.Time  `json:"last_update"`
	OwnerName  string     `json:"owner_name"`
}

// WorkflowSummary is the list view of a workflow.
type WorkflowSummary struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Public     bool      `json:"public"`
	ReadOnly   bool      `json:"read_only"`
	LastUpdate time.Time `json:"last_update"`
}

// WfModule is one step of a workflow.
type WfModule struct {
	ID              int            `json:"id"`
	ModuleVersion   ModuleVersion  `json:"module_version"`
	Workflow        int            `json:"workflow"`
	Status          string         `json:"status"`
	ErrorMsg        string         `json:"error_msg"`
	ParameterVals   []ParameterVal `json:"parameter_vals"`
	IsCollapsed     bool           `json:"is_collapsed"`
	Notes           string         `json:"notes"`
	AutoUpdateData  bool           `json:"auto_update_data"`
	UpdateInterval  int            `json:"update_interval"`
	UpdateUnits     string         `json:"update_units"`
	LastUpdateCheck *time.Time     `json:"last_update_check"`
}

// ParameterSpec describes a module parameter.
type ParameterSpec struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IDName    string `json:"id_name"`
	Type      string `json:"type"`
	Multiline bool   `json:"multiline"`
}

// ParameterVal is the current value of a parameter on a WfModule.
type ParameterVal struct {
	ID        int           `json:"id"`
	Spec      ParameterSpec `json:"parameter_spec"`
	Value     any           `json:"value"`
	Visible   bool          `json:"visible"`
	MenuItems string        `json:"menu_items"`
}

// StringValue returns Value as a string, or "" when it is not one.
func (p ParameterVal) StringValue() string {
	s, _ := p.Value.(string)
	return s
}

// Module is an entry of the module library.
type Module struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Author      string `json:"author"`
	Icon        string `json:"icon"`
}

// ModuleVersion pins a Module to a source revision.
type ModuleVersion struct {
	Module            Module    `json:"module"`
	SourceVersionHash string    `json:"source_version_hash"`
	LastUpdateTime    time.Time `json:"last_update_time"`
}

// DataVersions lists the stored data versions of a module.
type DataVersions struct {
	Versions []string `json:"versions"`
	Selected string   `json:"selected"`
}

// UpdateSettings controls automatic data refresh of a module.
type UpdateSettings struct {
	AutoUpdateData bool   `json:"auto_update_data"`
	UpdateInterval int    `json:"update_interval"`
	UpdateUnits    string `json:"update_units"`
}

// ModuleByID returns the module with the given id.
func (w *Workflow) ModuleByID(id int) (*WfModule, bool) {
	for i := range w.Modules {
		if w.Modules[i].ID == id {
			return &w.Modules[i], true
		}
	}
	return nil, false
}

// IndexOf returns the position of the module with the given id, or -1.
func (w *Workflow) IndexOf(id int) int {
	for i := range w.Modules {
		if w.Modules[i].ID == id {
			return i
		}
	}
	return -1
}

// Name returns the library name of the module.
func (m *WfModule) Name() string {
	return m.ModuleVersion.Module.Name
}

// ParamByIDName returns the parameter whose spec has the given id_name.
func (m *WfModule) ParamByIDName(idName string) (*ParameterVal, bool) {
	for i := range m.ParameterVals {
		if m.ParameterVals[i].Spec.IDName == idName {
			return &m.ParameterVals[i], true
		}
	}
	return nil, false
}

// ParamByID returns the parameter value with the given id.
func (m *WfModule) ParamByID(id int) (*ParameterVal, bool) {
	for i := range m.ParameterVals {
		if m.ParameterVals[i].ID == id {
			return &m.ParameterVals[i], true
		}
	}
	return nil, false
}

// ParamsOfType returns the parameters of the given spec type in order.
func (m *WfModule) ParamsOfType(typ string) []ParameterVal {
	var out []ParameterVal
	for _, p := range m.ParameterVals {
		if p.Spec.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeWorkflowName maps a blank name to UntitledWorkflow.
func NormalizeWorkflowName(name string) string {
	if strings.TrimSpace(name) == "" {
		return UntitledWorkflow
	}
	return name
}
