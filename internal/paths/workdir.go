package paths

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Runs fn with the process working directory set to dir.
//
// The previous working directory is restored when fn returns, whether or not
// fn fails. A failure to restore is joined with fn's error. Callers must not
// run directory-scoped work concurrently; the working directory is process
// wide.
func WithWorkdir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering %s: %w", dir, err)
	}
	slog.Debug("entered directory", "dir", dir)

	defer func() {
		if rerr := os.Chdir(prev); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restoring working directory %s: %w", prev, rerr))
			return
		}
		slog.Debug("restored directory", "dir", prev)
	}()

	return fn()
}
