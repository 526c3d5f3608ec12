package cmd

import "fmt"

// Exit codes, shared with scripts that wrap the picker.
const (
	exitSuccess   = 0 // selection made
	exitCancelled = 1 // cancelled by user
	exitFallback  = 2 // picker could not run or the pick could not be applied
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error // nil means exit quietly
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// fallback wraps err so the process exits with exitFallback.
func fallback(err error) error {
	return &ExitError{Code: exitFallback, Err: err}
}
