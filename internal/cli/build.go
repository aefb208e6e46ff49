package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wavecast/prebuild/internal/build"
	"github.com/wavecast/prebuild/internal/metrics"
	"github.com/wavecast/prebuild/internal/paths"
	"github.com/wavecast/prebuild/internal/runner"
)

// Represents the 'prebuild run' command.
type RunCmd struct{}

// Executes the run command.
func (c *RunCmd) Run(ctx context.Context) error {
	return runStages(ctx, build.AllStages)
}

// Represents the 'prebuild sidecar' command.
type SidecarCmd struct{}

// Executes the sidecar command.
func (c *SidecarCmd) Run(ctx context.Context) error {
	return runStages(ctx, build.SidecarStages)
}

// Represents the 'prebuild native' command.
type NativeCmd struct{}

// Executes the native command.
func (c *NativeCmd) Run(ctx context.Context) error {
	return runStages(ctx, build.NativeStages)
}

// Runs the given stages with the process runner.
//
// When a metrics file is requested it is written after the run, whether or
// not the run succeeded.
func runStages(ctx context.Context, stages []build.Stage) (err error) {
	cfg, env, err := setup()
	if err != nil {
		return err
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if RootCmd.MetricsFile != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		rec = prom

		path := paths.Resolve(env.Workdir(), RootCmd.MetricsFile)
		defer func() {
			if werr := prom.WriteTextfile(path); werr != nil {
				err = errors.Join(err, werr)
				return
			}
			slog.Debug("wrote metrics", "path", path)
		}()
	}

	result, err := build.Run(ctx, build.Options{
		Config:   cfg,
		Env:      env,
		Runner:   runner.Exec{},
		Recorder: rec,
		Stages:   stages,
	})
	if err != nil {
		return err
	}

	if result.Sidecar != nil {
		slog.Info("sidecar ready", "path", result.Sidecar.Path, "provenance", result.Sidecar.Provenance)
	}
	if result.Report != nil {
		slog.Info("native libraries staged", "dist", result.Report.Dist, "resources", result.Report.Resources)
	}

	return nil
}
