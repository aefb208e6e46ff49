// Package runnertest provides a scripted [runner.Runner] for tests.
package runnertest

import (
	"context"
	"os"
	"slices"

	"github.com/wavecast/prebuild/internal/runner"
)

// Scripted outcome for a matched command.
type Response struct {
	Code   int                            // Exit code; non-zero yields a [*runner.ExitError].
	Stdout string                         // Returned by Output.
	Err    error                          // Returned instead of running, e.g. a start failure.
	Effect func(cmd runner.Command) error // Side effect run before the exit code is applied.
}

// A recorded invocation.
type Call struct {
	Command runner.Command
	Cwd     string // Process working directory at the time of the call.
}

type rule struct {
	name string
	args []string
	resp Response
}

// Records commands and replies with scripted responses.
//
// Rules are matched in registration order on the program name and an argument
// prefix. Unmatched commands succeed with no output.
type Fake struct {
	Calls []Call
	rules []rule
}

var _ runner.Runner = (*Fake)(nil)

// Registers a response for commands named name whose arguments start with
// argsPrefix.
func (f *Fake) On(name string, argsPrefix []string, resp Response) {
	f.rules = append(f.rules, rule{name: name, args: argsPrefix, resp: resp})
}

// Returns the recorded calls to the named program.
func (f *Fake) CallsTo(name string) []Call {
	var calls []Call
	for _, c := range f.Calls {
		if c.Command.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *Fake) Run(ctx context.Context, cmd runner.Command) error {
	_, err := f.Output(ctx, cmd)
	return err
}

func (f *Fake) Output(ctx context.Context, cmd runner.Command) ([]byte, error) {
	cwd, _ := os.Getwd()
	f.Calls = append(f.Calls, Call{Command: cmd, Cwd: cwd})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := f.match(cmd)
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Effect != nil {
		if err := resp.Effect(cmd); err != nil {
			return nil, err
		}
	}
	if resp.Code != 0 {
		return []byte(resp.Stdout), &runner.ExitError{Command: cmd.String(), Code: resp.Code}
	}
	return []byte(resp.Stdout), nil
}

func (f *Fake) match(cmd runner.Command) Response {
	for _, r := range f.rules {
		if r.name != cmd.Name || len(cmd.Args) < len(r.args) {
			continue
		}
		if slices.Equal(cmd.Args[:len(r.args)], r.args) {
			return r.resp
		}
	}
	return Response{}
}
