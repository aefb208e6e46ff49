package build

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/metrics"
	"github.com/wavecast/prebuild/internal/native"
	"github.com/wavecast/prebuild/internal/platform"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
	"github.com/wavecast/prebuild/internal/sidecar"
	"github.com/wavecast/prebuild/internal/stage"
)

// Name of a pipeline stage.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageSidecar Stage = "sidecar"
	StageNative  Stage = "native"
	StageStage   Stage = "stage"
)

// Pipeline order.
var pipeline = []Stage{StageResolve, StageSidecar, StageNative, StageStage}

// Predefined selections.
var (
	AllStages     = []Stage{StageResolve, StageSidecar, StageNative, StageStage}
	SidecarStages = []Stage{StageResolve, StageSidecar}
	NativeStages  = []Stage{StageResolve, StageNative, StageStage}
)

// Controls a run.
type Options struct {
	Config   *project.Config       // Project configuration. Defaults to [project.Default].
	Env      *buildenv.Environment // Environment snapshot shared by every stage.
	Runner   runner.Runner         // Runs external commands. Defaults to [runner.Exec].
	Recorder metrics.Recorder      // Receives stage timings. Defaults to [metrics.NoopRecorder].
	Stages   []Stage               // Stages to run. Defaults to [AllStages].
}

// Returned after a successful run. Fields of stages that did not run are
// zero.
type Result struct {
	Target  platform.Target // Resolved triple and host variant.
	Sidecar *sidecar.Target // Provisioned sidecar.
	Output  *native.Output  // Native build output tree.
	Report  *stage.Report   // Staged files.
}

// Runs the selected stages in pipeline order.
//
// Returns on the first failing stage with an error wrapping [ErrBuild]. The
// underlying error stays reachable, so a failing child's [*runner.ExitError]
// can be recovered with errors.As.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Env == nil {
		return nil, fmt.Errorf("%w: no environment", ErrBuild)
	}
	if opts.Config == nil {
		opts.Config = project.Default()
	}
	if opts.Runner == nil {
		opts.Runner = runner.Exec{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	stages, err := plan(opts.Stages)
	if err != nil {
		return nil, err
	}

	slog.Info("starting build", "stages", stages, "workdir", opts.Env.Workdir(), "host", opts.Env.Host().OS+"/"+opts.Env.Host().Architecture)

	start := time.Now()
	defer func() { opts.Recorder.ObserveBuildDuration(time.Since(start)) }()

	r := &run{
		opts:        opts,
		result:      &Result{},
		needsTriple: slices.Contains(stages, StageSidecar),
	}
	for _, s := range stages {
		if err := r.stage(ctx, s); err != nil {
			return nil, fmt.Errorf("%w: stage %s: %w", ErrBuild, s, err)
		}
	}

	slog.Info("build complete", "duration", time.Since(start).Round(time.Millisecond))

	return r.result, nil
}

// Returns the stages to run, in pipeline order, with their dependencies.
func plan(selected []Stage) ([]Stage, error) {
	if len(selected) == 0 {
		return slices.Clone(AllStages), nil
	}

	want := map[Stage]bool{StageResolve: true}
	for _, s := range selected {
		if !slices.Contains(pipeline, s) {
			return nil, fmt.Errorf("%w: %q", ErrStage, s)
		}
		want[s] = true
	}
	if want[StageStage] {
		want[StageNative] = true
	}

	var stages []Stage
	for _, s := range pipeline {
		if want[s] {
			stages = append(stages, s)
		}
	}
	return stages, nil
}

// State threaded through the stages of a single run.
type run struct {
	opts        Options
	result      *Result
	needsTriple bool // A stage after resolve uses the triple.
}

// Runs one stage, logging and recording its outcome.
func (r *run) stage(ctx context.Context, s Stage) error {
	slog.Info("running stage", "stage", s)
	start := time.Now()

	err := ctx.Err()
	if err == nil {
		err = r.exec(ctx, s)
	}

	elapsed := time.Since(start)
	r.opts.Recorder.ObserveStageDuration(string(s), elapsed)
	r.opts.Recorder.IncStageResult(string(s), metrics.ResultFor(err))

	if err != nil {
		slog.Debug("stage failed", "stage", s, "duration", elapsed.Round(time.Millisecond), "error", err)
		return err
	}

	slog.Info("stage complete", "stage", s, "duration", elapsed.Round(time.Millisecond))
	return nil
}

func (r *run) exec(ctx context.Context, s Stage) error {
	cfg, env := r.opts.Config, r.opts.Env

	switch s {
	case StageResolve:
		r.result.Target.Host = platform.VariantFor(env.Host().OS)

		target, err := platform.NewResolver(cfg.Triple, r.opts.Runner).Resolve(ctx, env)
		if err != nil {
			if r.needsTriple {
				return err
			}
			slog.Debug("no target triple, continuing with host variant", "error", err, "family", r.result.Target.Host.Family)
			return nil
		}
		r.result.Target = target
		slog.Info("resolved target", "triple", target.Triple, "tier", target.Tier, "family", target.Host.Family)

	case StageSidecar:
		sc, err := sidecar.New(*cfg, r.opts.Runner).Provision(ctx, env, r.result.Target)
		if err != nil {
			return err
		}
		r.result.Sidecar = sc

	case StageNative:
		out, err := native.New(cfg.Native, r.opts.Runner).Build(ctx, env)
		if err != nil {
			return err
		}
		r.result.Output = out

	case StageStage:
		report, err := stage.New(cfg.Stage, r.result.Target.Host).Stage(env, r.result.Output)
		if err != nil {
			return err
		}
		r.result.Report = report

	default:
		return fmt.Errorf("%w: %q", ErrStage, s)
	}

	return nil
}
