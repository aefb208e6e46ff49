package runner

import (
	"errors"
	"fmt"
)

var (
	ErrCommandFailed = errors.New("command failed")
	ErrStart         = errors.New("command could not be started")
)

// Reported when a command runs but exits with a non-zero code.
type ExitError struct {
	Command string // Command line, for diagnostics.
	Code    int    // Exit code; -1 if the process was killed by a signal.
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %s exited with code %d", ErrCommandFailed, e.Command, e.Code)
}

// Reports whether target is [ErrCommandFailed].
func (e *ExitError) Is(target error) bool {
	return target == ErrCommandFailed
}
