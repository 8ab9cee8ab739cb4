package errors

import "github.com/cristianoliveira/workbench/internal/colors"

// consoleOutput sends handler messages to the terminal.
type consoleOutput struct{}

func (consoleOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (consoleOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (consoleOutput) Info(msgs ...string)    { colors.Info(msgs...) }
func (consoleOutput) Success(msgs ...string) { colors.Success(msgs...) }

// NewConsoleHandler returns the handler used by one-shot commands.
func NewConsoleHandler() *CLIHandler {
	return NewCLIHandler(consoleOutput{})
}
