package errors

import "errors"

// Exit codes returned by the CLI.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitConfigError  = 2
	ExitNotFound     = 4
)

// ExitError pairs an error with the process exit code it should produce.
type ExitError struct {
	Code int
	Err  error

	// Printed marks that the command layer already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit error"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to a process exit code using the sentinel chain.
func ExitCode(err error) int {
	var exit *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exit):
		return exit.Code
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrConfig), errors.Is(err, ErrTask):
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}
