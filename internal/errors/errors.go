package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitly/internal/engine"
	"github.com/julianstephens/habitly/internal/logger"
)

// Exit codes returned by Fatal
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Format formats an error message with a consistent "Error: " prefix and, for
// known engine errors, a hint on the following line
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  " + hint
	}
	return msg
}

// Hint returns a short suggestion for resolving err, or "" if none applies
func Hint(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return "Run 'habitly habit list' to see existing habits."
	case errors.Is(err, engine.ErrDuplicateID):
		return "Omit the id to let habitly assign one."
	case errors.Is(err, engine.ErrPersistence):
		return "Nothing was changed. Check that the storage location is writable and try again."
	}
	return ""
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	if errors.Is(err, engine.ErrValidation) {
		return ExitUsage
	}
	return ExitFailure
}

// Fatal logs an error and exits the program
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(ExitCode(err))
	}
}
