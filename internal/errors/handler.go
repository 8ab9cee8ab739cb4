// Package errors routes user-facing messages to the CLI console or the TUI status line.
package errors

import (
	"context"
	stderrors "errors"
	"sync"
)

// ErrorHandler receives user-facing messages.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput prints colored console messages.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler prints messages through a ColorOutput.
type CLIHandler struct {
	colors     ColorOutput
	mu         sync.Mutex
	inHandling bool
}

func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

// Error prints msg. A nested call made while an error is being printed
// goes straight to the output without touching the handling flag.
func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	if h.inHandling {
		h.mu.Unlock()
		h.colors.Error(msg)
		return
	}
	h.inHandling = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.inHandling = false
		h.mu.Unlock()
	}()

	h.colors.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.colors.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.colors.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.colors.Success(msg)
}

// Report prints err through h using Describe. A nil err is ignored.
func Report(h ErrorHandler, err error) {
	if err == nil {
		return
	}
	h.Error(Describe(err))
}

// Describe turns err into a one-line message for people rather than logs.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, context.DeadlineExceeded):
		return "request timed out: " + err.Error()
	case stderrors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return err.Error()
	}
}
