// Package runner executes external commands on the host.
//
// A [Runner] runs a [Command] to completion and reports a non-zero exit as an
// [*ExitError], which matches [ErrCommandFailed] under errors.Is. The exit
// code is preserved so the orchestrator can propagate it as its own. The
// child's standard output and standard error are streamed to the terminal by
// default; they are the primary diagnostic surface when a build fails.
//
// [Exec] is the production implementation backed by os/exec. Tests use the
// scripted fake in the runnertest subpackage.
//
// Example usage:
//
//	err := runner.Exec{}.Run(ctx, runner.Command{
//	    Name: "cmake",
//	    Args: []string{"--build", "."},
//	    Dir:  "build/native",
//	    Env:  env.Environ(),
//	})
//	if errors.Is(err, runner.ErrCommandFailed) {
//	    return err
//	}
package runner
