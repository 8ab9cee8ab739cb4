package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// VariableContext holds the values of one event line.
type VariableContext struct {
	Time time.Time

	WorkflowID   int
	WorkflowName string
	Revision     int

	ModuleID   int
	ModuleName string
	Status     string
	ErrorMsg   string
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	// Resolve returns the string value for a given variable name and context.
	Resolve(varName string, ctx VariableContext) (string, error)

	// Known reports whether varName can be resolved.
	Known(varName string) bool
}

type variableResolver struct{}

// NewVariableResolver creates a new variable resolver instance.
func NewVariableResolver() VariableResolver {
	return variableResolver{}
}

var variables = map[string]func(VariableContext) string{
	"time":          func(c VariableContext) string { return c.Time.Format("15:04:05") },
	"timestamp":     func(c VariableContext) string { return c.Time.Format(time.RFC3339) },
	"workflow-id":   func(c VariableContext) string { return strconv.Itoa(c.WorkflowID) },
	"workflow-name": func(c VariableContext) string { return c.WorkflowName },
	"revision":      func(c VariableContext) string { return strconv.Itoa(c.Revision) },
	"module-id":     func(c VariableContext) string { return strconv.Itoa(c.ModuleID) },
	"module-name":   func(c VariableContext) string { return c.ModuleName },
	"status":        func(c VariableContext) string { return c.Status },
	"error":         func(c VariableContext) string { return c.ErrorMsg },
	"error-suffix": func(c VariableContext) string {
		if c.ErrorMsg == "" {
			return ""
		}
		return " (" + c.ErrorMsg + ")"
	},
}

// Variables lists the variable names accepted in templates.
func Variables() []string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unknownVariable(name string) error {
	return fmt.Errorf("unknown variable %q (available: %s)", name, strings.Join(Variables(), ", "))
}

func (variableResolver) Known(varName string) bool {
	_, ok := variables[varName]
	return ok
}

func (variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	fn, ok := variables[varName]
	if !ok {
		return "", unknownVariable(varName)
	}
	return fn(ctx), nil
}
