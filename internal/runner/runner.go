package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// A host command and its execution context.
type Command struct {
	Name   string    // Program name or path.
	Args   []string  // Arguments, not including the program name.
	Dir    string    // Working directory. Empty uses the process working directory.
	Env    []string  // Complete environment as "key=value". Nil inherits the process environment.
	Stdout io.Writer // Defaults to os.Stdout.
	Stderr io.Writer // Defaults to os.Stderr.
}

// Returns the command line as a single string.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Executes host commands.
type Runner interface {

	// Runs the command and waits for it to exit.
	//
	// A non-zero exit is reported as an [*ExitError].
	Run(ctx context.Context, cmd Command) error

	// Runs the command and returns its standard output.
	//
	// Standard error is still streamed to cmd.Stderr. A non-zero exit is
	// reported as an [*ExitError] alongside whatever output was captured.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// Runs commands with os/exec.
type Exec struct{}

var _ Runner = Exec{}

// Runs the command and waits for it to exit.
func (Exec) Run(ctx context.Context, cmd Command) error {
	c := build(ctx, cmd)
	c.Stdout = orDefault(cmd.Stdout, os.Stdout)

	slog.Debug("exec", "command", cmd.String(), "dir", cmd.Dir)
	return wrapExit(ctx, cmd, c.Run())
}

// Runs the command and returns its standard output.
func (Exec) Output(ctx context.Context, cmd Command) ([]byte, error) {
	var stdout bytes.Buffer
	c := build(ctx, cmd)
	c.Stdout = &stdout

	slog.Debug("exec", "command", cmd.String(), "dir", cmd.Dir, "capture", true)
	err := wrapExit(ctx, cmd, c.Run())
	return stdout.Bytes(), err
}

// Prepares an [exec.Cmd] bound to ctx.
func build(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stderr = orDefault(cmd.Stderr, os.Stderr)
	return c
}

// Translates the result of [exec.Cmd.Run] into the package's error types.
//
// A command killed because ctx ended reports the context error instead of its
// exit status.
func wrapExit(ctx context.Context, cmd Command, err error) error {
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: cmd.String(), Code: exitErr.ExitCode()}
	}

	return fmt.Errorf("%w: %s: %w", ErrStart, cmd.Name, err)
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
