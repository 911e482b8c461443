package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/studywith/internal/logger"
)

// User-facing failures the CLI reports when the engine returns a sentinel.
var (
	ErrNotEnoughPoints = stderrors.New("not enough points")
	ErrNoScrolls       = stderrors.New("no enhancement scrolls left")
	ErrUnknownSlot     = stderrors.New("unknown equipment slot")
	ErrInvalidQuantity = stderrors.New("quantity must be positive")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short suggestion for a known sentinel, or "" when there is none.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, ErrNotEnoughPoints):
		return "finish a focus session to earn points"
	case stderrors.Is(err, ErrNoScrolls):
		return "buy scrolls with 'studywith scroll buy'"
	case stderrors.Is(err, ErrUnknownSlot):
		return "slots are: book, pencil, laptop"
	default:
		return ""
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
