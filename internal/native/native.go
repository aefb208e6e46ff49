package native

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/containerd/platforms"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/paths"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
)

// Subdirectories of the output root.
const (
	binSubdir     = "bin"
	includeSubdir = "include"
	libSubdir     = "lib"
)

// A completed native build tree. Read-only to consumers.
type Output struct {
	Root       string // Output root.
	BinDir     string // Dynamic libraries.
	IncludeDir string // Public headers.
	LibDir     string // Static/import libraries and package metadata.
}

// Returns the output tree rooted at root.
func OutputAt(root string) *Output {
	return &Output{
		Root:       root,
		BinDir:     filepath.Join(root, binSubdir),
		IncludeDir: filepath.Join(root, includeSubdir),
		LibDir:     filepath.Join(root, libSubdir),
	}
}

// Runs the configure and build phases.
type Driver struct {
	config project.Native
	runner runner.Runner
}

// Creates a [Driver].
func New(cfg project.Native, r runner.Runner) *Driver {
	return &Driver{config: cfg, runner: r}
}

// Configures and builds the native project.
//
// Returns the populated output tree only when both phases succeed. Phase
// failures wrap [ErrConfigure] or [ErrBuild] around the runner's error, so a
// [*runner.ExitError] remains reachable with errors.As.
func (d *Driver) Build(ctx context.Context, env *buildenv.Environment) (*Output, error) {
	root := paths.Resolve(env.Workdir(), d.config.Output)
	source := paths.Resolve(env.Workdir(), d.config.Source)

	if err := os.MkdirAll(root, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("creating output root: %w", err)
	}

	childEnv := runner.MergeEnv(runner.WithoutEnv(env.Environ(), d.unsetVars(env)...), d.config.Env)

	err := paths.WithWorkdir(root, func() error {
		slog.Info("configuring native build", "source", source, "output", root)
		if err := d.run(ctx, childEnv, append(slices.Clone(d.config.ConfigureArgs), source)); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigure, err)
		}

		slog.Info("building native libraries", "output", root)
		if err := d.run(ctx, childEnv, append([]string{"--build", "."}, d.config.BuildArgs...)); err != nil {
			return fmt.Errorf("%w: %w", ErrBuild, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return OutputAt(root), nil
}

// Runs the build system CLI in the current working directory.
func (d *Driver) run(ctx context.Context, env, args []string) error {
	return d.runner.Run(ctx, runner.Command{
		Name: d.config.Command,
		Args: args,
		Dir:  ".",
		Env:  env,
	})
}

// Returns the variables to remove for the snapshot's host platform.
func (d *Driver) unsetVars(env *buildenv.Environment) []string {
	host := env.Host()

	var names []string
	for _, rule := range d.config.UnsetEnv {
		if !matches(rule, host) {
			continue
		}
		for _, name := range rule.Vars {
			if _, ok := env.Lookup(name); ok {
				slog.Debug("removing variable from native build environment", "name", name, "os", host.OS, "arch", host.Architecture)
			}
			names = append(names, name)
		}
	}
	return names
}

// Reports whether rule applies to host. Rule names are normalized, so
// "macos"/"aarch64" matches a darwin/arm64 host.
func matches(rule project.EnvRule, host specs.Platform) bool {
	if rule.OS != "" {
		p := platforms.Normalize(specs.Platform{OS: rule.OS, Architecture: host.Architecture})
		if p.OS != host.OS {
			return false
		}
	}
	if rule.Arch != "" {
		p := platforms.Normalize(specs.Platform{OS: host.OS, Architecture: rule.Arch})
		if p.Architecture != host.Architecture {
			return false
		}
	}
	return true
}
