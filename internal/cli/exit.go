package cli

import "fmt"

const (
	ExitCodeSuccess          = 0
	ExitCodeGenerationFailed = 2
	ExitCodeValidationFailed = 3
)

// ExitError maps the outcome of a generation run onto a process exit
// code while keeping the causing error available for unwrapping.
type ExitError struct {
	Code int
	Err  error
}

// Error reports the cause, or the bare code when a run failed without
// recording one.
func (e *ExitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("generation run failed with exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the causing error.
func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newExitError(code int, err error) error {
	return &ExitError{
		Code: code,
		Err:  err,
	}
}
