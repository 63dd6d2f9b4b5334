// Package errors provides sentinel errors for the wheelhouse CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrConfig indicates an invalid or incomplete project configuration.
	ErrConfig = errors.New("configuration error")

	// ErrNotFound indicates a file, module, or tag was not found.
	ErrNotFound = errors.New("not found")

	// ErrTask indicates a user build task failed.
	ErrTask = errors.New("task error")
)

// ConfigError captures structured information about a configuration failure.
type ConfigError struct {
	// Message is the specific description (required).
	Message string

	// Field is the offending pyproject field, in dotted form (optional).
	Field string

	// Location is a file path related to the failure (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional; defaults to ErrConfig).
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)
	if e.Field != "" {
		b.WriteString(" (field `")
		b.WriteString(e.Field)
		b.WriteString("`)")
	}
	if e.Location != "" {
		b.WriteString(" [")
		b.WriteString(e.Location)
		b.WriteString("]")
	}
	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrConfig
}

// NewConfigError creates a configuration error for a specific field.
func NewConfigError(message, field, hint string) error {
	return &ConfigError{
		Message: message,
		Field:   field,
		Hint:    hint,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &ConfigError{
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// NewTaskError wraps a build-task failure. The task name is recorded so the
// CLI can report which user step aborted the build.
func NewTaskError(name string, cause error) error {
	return &ConfigError{
		Message: fmt.Sprintf("task %q failed: %v", name, cause),
		Cause:   fmt.Errorf("%w: %w", ErrTask, cause),
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
