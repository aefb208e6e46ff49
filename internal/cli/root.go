package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wavecast/prebuild/internal"
	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/logging"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
)

// Represents the root command for the prebuild CLI.
var RootCmd struct {
	Quiet       bool     `short:"q" help:"Suppress informational output."`
	Verbose     bool     `short:"v" help:"Enable verbose output."`
	Debug       bool     `short:"d" help:"Enable debug output."`
	Config      string   `short:"c" help:"Project configuration file." placeholder:"PATH"`
	Root        string   `short:"C" help:"Change to this directory before doing anything." placeholder:"DIR"`
	EnvFile     []string `help:"Dotenv file to load; the process environment wins." default:".env" placeholder:"PATH"`
	MetricsFile string   `help:"Write Prometheus stage metrics to this textfile." placeholder:"PATH"`

	Run     RunCmd     `cmd:"" default:"1" help:"Run every stage."`
	Sidecar SidecarCmd `cmd:"" help:"Resolve the target and provision the sidecar."`
	Native  NativeCmd  `cmd:"" help:"Build and stage the native libraries."`
	Triple  TripleCmd  `cmd:"" help:"Print the resolved target triple."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Prepares native artifacts for application packaging.\n\nResolves the target triple, provisions the sidecar binary, builds the native libraries and stages them into the distribution layout."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Returns the process exit code for err.
//
// A failing external command propagates its own exit code. Any other error
// yields 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}

	return 1
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*logging.Handler)
	if !ok {
		return // Not a logging.Handler, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	// Configure handler
	if debug {
		handler.SetLevel(slog.LevelDebug)
	} else if quiet {
		handler.SetLevel(slog.LevelWarn)
	} else {
		handler.SetLevel(slog.LevelInfo)
	}

	// Commit
	handler.SetPretty(logging.IsTerminal(os.Stderr))
	handler.SetVerbose(verbose)
	handler.SetStream(os.Stderr)
	handler.Flush()
}

// Changes into the project root and loads the environment and configuration.
func setup() (*project.Config, *buildenv.Environment, error) {
	if RootCmd.Root != "" {
		if err := os.Chdir(RootCmd.Root); err != nil {
			return nil, nil, fmt.Errorf("changing to project root: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	env, err := buildenv.Capture(buildenv.Options{
		Workdir:  wd,
		EnvFiles: RootCmd.EnvFile,
		Environ:  os.Environ(),
	})
	if err != nil {
		return nil, nil, err
	}

	path, err := project.Find(RootCmd.Config, wd)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := project.Load(path)
	if err != nil {
		return nil, nil, err
	}

	return cfg, env, nil
}
