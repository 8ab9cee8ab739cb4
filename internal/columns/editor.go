package columns

import (
	"context"
	"fmt"
)

// Store reads the available columns of a module and saves a parameter value.
type Store interface {
	InputColumns(ctx context.Context, wfModuleID int) ([]string, error)
	SetParameter(ctx context.Context, paramID int, value any) error
}

// Editor keeps a multicolumn parameter in sync with the server. Every change
// is saved immediately.
type Editor struct {
	store      Store
	wfModuleID int
	paramID    int
	revision   int
	available  []string
	selection  Selection
}

// NewEditor starts editing the parameter paramID of wfModuleID, whose current
// stored value is current.
func NewEditor(store Store, wfModuleID, paramID int, current string) *Editor {
	if store == nil {
		panic("columns.NewEditor: store dependency cannot be nil")
	}
	return &Editor{
		store:      store,
		wfModuleID: wfModuleID,
		paramID:    paramID,
		revision:   -1,
		selection:  Parse(current),
	}
}

// Load fetches the column names of the module's input table when revision
// differs from the one last loaded.
func (e *Editor) Load(ctx context.Context, revision int) error {
	if revision == e.revision && e.available != nil {
		return nil
	}
	cols, err := e.store.InputColumns(ctx, e.wfModuleID)
	if err != nil {
		return fmt.Errorf("load columns of module %d: %w", e.wfModuleID, err)
	}
	if cols == nil {
		cols = []string{}
	}
	e.available = cols
	e.revision = revision
	return nil
}

// SetCurrent replaces the selection with a newer stored value.
func (e *Editor) SetCurrent(value string) {
	e.selection = Parse(value)
}

// Available returns the column names that can be selected.
func (e *Editor) Available() []string {
	return append([]string(nil), e.available...)
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	return e.selection
}

// Toggle changes one column and saves the new value when it changed. On a
// failed save the selection is restored.
func (e *Editor) Toggle(ctx context.Context, name string, checked bool) (bool, error) {
	before := e.selection
	next := Selection{names: before.Names()}
	if !next.Toggle(name, checked) {
		return false, nil
	}
	if err := e.store.SetParameter(ctx, e.paramID, next.String()); err != nil {
		return false, fmt.Errorf("save columns: %w", err)
	}
	e.selection = next
	return true, nil
}
