package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/metrics"
	"github.com/wavecast/prebuild/internal/native"
	"github.com/wavecast/prebuild/internal/platform"
	"github.com/wavecast/prebuild/internal/runner"
	"github.com/wavecast/prebuild/internal/runner/runnertest"
	"github.com/wavecast/prebuild/internal/sidecar"
)

const triple = "x86_64-unknown-linux-gnu"

// Records stage outcomes in memory.
type recorder struct {
	stages  []string
	results map[string]metrics.Result
	builds  int
}

func (r *recorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.stages = append(r.stages, stage)
}

func (r *recorder) IncStageResult(stage string, result metrics.Result) {
	if r.results == nil {
		r.results = map[string]metrics.Result{}
	}
	r.results[stage] = result
}

func (r *recorder) ObserveBuildDuration(time.Duration) { r.builds++ }

func newEnv(t *testing.T, vars map[string]string) *buildenv.Environment {
	t.Helper()
	return buildenv.New(specs.Platform{OS: "linux", Architecture: "amd64"}, t.TempDir(), vars)
}

// Writes a native output tree relative to the working directory of the
// build phase.
func writeNativeTree(runner.Command) error {
	files := map[string]string{
		"bin/libSoapySDR.so":           "so",
		"include/SoapySDR/Device.h":    "// device",
		"lib/libSoapySDR.a":            "archive",
		"lib/pkgconfig/SoapySDR.pc":    "prefix=/tmp/build/native\nlibdir=${prefix}/lib\n",
		"CMakeFiles/cmake.check_cache": "",
	}
	for name, content := range files {
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Returns a fake whose sidecar script and native build succeed.
func succeedingRunner(env *buildenv.Environment) *runnertest.Fake {
	f := &runnertest.Fake{}
	f.On("sh", nil, runnertest.Response{Effect: func(runner.Command) error {
		path := filepath.Join(env.Workdir(), "build", "bin", "nrsc5-"+triple)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte("binary"), 0o755)
	}})
	f.On("cmake", []string{"--build"}, runnertest.Response{Effect: writeNativeTree})
	return f
}

func getwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func TestRunAllStages(t *testing.T) {
	env := newEnv(t, map[string]string{"TARGET_TRIPLE": triple})
	fake := succeedingRunner(env)
	rec := &recorder{}
	before := getwd(t)

	result, err := Run(context.Background(), Options{Env: env, Runner: fake, Recorder: rec})
	require.NoError(t, err)

	assert.Equal(t, before, getwd(t))

	assert.Equal(t, triple, result.Target.Triple)
	assert.Equal(t, platform.TierExplicit, result.Target.Tier)

	require.NotNil(t, result.Sidecar)
	assert.Equal(t, sidecar.Built, result.Sidecar.Provenance)
	assert.True(t, result.Sidecar.Exists)

	require.NotNil(t, result.Output)
	assert.Equal(t, filepath.Join(env.Workdir(), "build", "native"), result.Output.Root)

	require.NotNil(t, result.Report)
	assert.FileExists(t, filepath.Join(env.Workdir(), "dist", "libSoapySDR.so"))
	assert.FileExists(t, filepath.Join(env.Workdir(), "dist", "resources", "include", "SoapySDR", "Device.h"))
	assert.FileExists(t, filepath.Join(env.Workdir(), "build", "staged.yaml"))

	assert.Equal(t, []string{"resolve", "sidecar", "native", "stage"}, rec.stages)
	for _, s := range rec.stages {
		assert.Equal(t, metrics.ResultSuccess, rec.results[s], s)
	}
	assert.Equal(t, 1, rec.builds)

	assert.Len(t, fake.CallsTo("sh"), 1)
	assert.Len(t, fake.CallsTo("cmake"), 2)
	assert.Empty(t, fake.CallsTo("rustc"))
}

func TestRunBuildFailureSkipsStaging(t *testing.T) {
	env := newEnv(t, map[string]string{"TARGET_TRIPLE": triple})
	fake := &runnertest.Fake{}
	fake.On("cmake", []string{"--build"}, runnertest.Response{Code: 2, Effect: writeNativeTree})
	rec := &recorder{}
	before := getwd(t)

	result, err := Run(context.Background(), Options{Env: env, Runner: fake, Recorder: rec, Stages: NativeStages})
	require.Error(t, err)
	assert.Nil(t, result)

	assert.ErrorIs(t, err, ErrBuild)
	assert.ErrorIs(t, err, native.ErrBuild)
	assert.ErrorIs(t, err, runner.ErrCommandFailed)
	assert.Contains(t, err.Error(), "stage native")

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	assert.Equal(t, before, getwd(t))
	assert.NoDirExists(t, filepath.Join(env.Workdir(), "dist"))
	assert.NoFileExists(t, filepath.Join(env.Workdir(), "build", "staged.yaml"))

	assert.Equal(t, []string{"resolve", "native"}, rec.stages)
	assert.Equal(t, metrics.ResultFailed, rec.results["native"])
	assert.Equal(t, 1, rec.builds)
}

func TestRunConfigureFailure(t *testing.T) {
	env := newEnv(t, map[string]string{"TARGET_TRIPLE": triple})
	fake := &runnertest.Fake{}
	fake.On("cmake", nil, runnertest.Response{Code: 1})

	_, err := Run(context.Background(), Options{Env: env, Runner: fake, Stages: AllStages})
	require.ErrorIs(t, err, native.ErrConfigure)

	assert.Len(t, fake.CallsTo("cmake"), 1)
	assert.NoDirExists(t, filepath.Join(env.Workdir(), "dist"))
}

func TestRunSidecarFailureStopsPipeline(t *testing.T) {
	env := newEnv(t, map[string]string{"TARGET_TRIPLE": triple})
	fake := &runnertest.Fake{}
	fake.On("sh", nil, runnertest.Response{Code: 127})

	_, err := Run(context.Background(), Options{Env: env, Runner: fake})
	require.ErrorIs(t, err, ErrBuild)
	assert.Contains(t, err.Error(), "stage sidecar")

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 127, exitErr.Code)
	assert.Empty(t, fake.CallsTo("cmake"))
}

func TestRunStubbedSidecar(t *testing.T) {
	env := newEnv(t, map[string]string{
		"CARGO_CFG_TARGET_OS":   "linux",
		"CARGO_CFG_TARGET_ARCH": "x86_64",
		"SKIP_SIDECAR_BUILD":    "true",
	})
	fake := &runnertest.Fake{}

	result, err := Run(context.Background(), Options{Env: env, Runner: fake, Stages: SidecarStages})
	require.NoError(t, err)

	assert.Equal(t, platform.TierTable, result.Target.Tier)
	require.NotNil(t, result.Sidecar)
	assert.Equal(t, sidecar.Stubbed, result.Sidecar.Provenance)

	info, err := os.Stat(filepath.Join(env.Workdir(), "build", "bin", "nrsc5-"+triple))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	assert.Nil(t, result.Output)
	assert.Nil(t, result.Report)
	assert.Empty(t, fake.Calls)
}

func TestRunResolutionFailure(t *testing.T) {
	env := newEnv(t, nil)
	fake := &runnertest.Fake{}
	fake.On("rustc", nil, runnertest.Response{Code: 1})

	_, err := Run(context.Background(), Options{Env: env, Runner: fake})
	require.ErrorIs(t, err, platform.ErrResolution)
	assert.Contains(t, err.Error(), "stage resolve")

	assert.Len(t, fake.Calls, 1)
}

func TestRunNativeWithoutTriple(t *testing.T) {
	env := newEnv(t, nil)
	fake := &runnertest.Fake{}
	fake.On("rustc", nil, runnertest.Response{Code: 127})
	fake.On("cmake", []string{"--build"}, runnertest.Response{Effect: writeNativeTree})
	rec := &recorder{}

	result, err := Run(context.Background(), Options{Env: env, Runner: fake, Recorder: rec, Stages: NativeStages})
	require.NoError(t, err)

	assert.Empty(t, result.Target.Triple)
	assert.Equal(t, platform.VariantFor("linux"), result.Target.Host)
	assert.Len(t, fake.CallsTo("rustc"), 1)
	assert.Len(t, fake.CallsTo("cmake"), 2)

	require.NotNil(t, result.Report)
	assert.FileExists(t, filepath.Join(env.Workdir(), "dist", "libSoapySDR.so"))
	assert.Equal(t, metrics.ResultSuccess, rec.results["resolve"])
}

func TestRunSidecarRequiresTriple(t *testing.T) {
	env := newEnv(t, nil)
	fake := &runnertest.Fake{}
	fake.On("rustc", nil, runnertest.Response{Code: 127})

	_, err := Run(context.Background(), Options{Env: env, Runner: fake, Stages: SidecarStages})
	require.ErrorIs(t, err, platform.ErrResolution)
	assert.Empty(t, fake.CallsTo("sh"))
}

func TestRunCanceled(t *testing.T) {
	env := newEnv(t, map[string]string{"TARGET_TRIPLE": triple})
	fake := &runnertest.Fake{}
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Env: env, Runner: fake, Recorder: rec})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.Calls)
	assert.Equal(t, metrics.ResultCanceled, rec.results["resolve"])
}

func TestRunRequiresEnvironment(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.ErrorIs(t, err, ErrBuild)
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		selected []Stage
		want     []Stage
		wantErr  error
	}{
		{"default", nil, []Stage{StageResolve, StageSidecar, StageNative, StageStage}, nil},
		{"sidecar", SidecarStages, []Stage{StageResolve, StageSidecar}, nil},
		{"native", NativeStages, []Stage{StageResolve, StageNative, StageStage}, nil},
		{"stage implies native", []Stage{StageStage}, []Stage{StageResolve, StageNative, StageStage}, nil},
		{"reordered", []Stage{StageNative, StageSidecar}, []Stage{StageResolve, StageSidecar, StageNative}, nil},
		{"unknown", []Stage{"package"}, nil, ErrStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plan(tt.selected)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("plan() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
