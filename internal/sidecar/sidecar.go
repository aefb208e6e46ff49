package sidecar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/paths"
	"github.com/wavecast/prebuild/internal/platform"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner"
)

// How the sidecar at the expected path came to be.
type Provenance string

const (
	Built   Provenance = "built"   // Produced by the build script.
	Stubbed Provenance = "stubbed" // Zero-byte placeholder.
)

// The sidecar expected by downstream packaging.
type Target struct {
	Path       string     // Absolute path derived from the target triple.
	Exists     bool       // Whether a file was present after provisioning.
	Provenance Provenance // Built or stubbed.
}

// Builds the sidecar or writes its placeholder.
type Provisioner struct {
	config project.Config
	runner runner.Runner
}

// Creates a [Provisioner].
func New(cfg project.Config, r runner.Runner) *Provisioner {
	return &Provisioner{config: cfg, runner: r}
}

// Returns the absolute path at which the sidecar for target is expected.
func (p *Provisioner) Path(env *buildenv.Environment, target platform.Target) string {
	binDir := paths.Resolve(env.Workdir(), p.config.Sidecar.BinDir)
	return filepath.Join(binDir, target.SidecarName(p.config.Sidecar.Prefix))
}

// Ensures a file exists at the sidecar path.
//
// If the skip toggle is "true", an empty placeholder is written. Otherwise
// the build script runs through the host platform's shell, and a non-zero
// exit is returned as a [*runner.ExitError].
func (p *Provisioner) Provision(ctx context.Context, env *buildenv.Environment, target platform.Target) (*Target, error) {
	path := p.Path(env, target)

	if env.IsTrue(p.config.Sidecar.SkipEnv) {
		slog.Info("skipping sidecar build, writing placeholder", "toggle", p.config.Sidecar.SkipEnv, "path", path)
		if err := writeStub(path); err != nil {
			return nil, err
		}
		return &Target{Path: path, Exists: true, Provenance: Stubbed}, nil
	}

	cmd := target.Host.ScriptCommand(p.config.Shell, env.Workdir(), p.config.Sidecar.Script)
	cmd.Env = env.Environ()

	slog.Info("building sidecar", "script", p.config.Sidecar.Script, "shell", cmd.Name, "triple", target.Triple)
	if err := p.runner.Run(ctx, cmd); err != nil {
		return nil, err
	}

	exists := fileExists(path)
	if !exists {
		slog.Warn("sidecar build finished but expected file is missing", "path", path)
	}

	return &Target{Path: path, Exists: exists, Provenance: Built}, nil
}

// Writes a zero-byte executable at path, creating parents and truncating any
// existing file.
func writeStub(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("creating sidecar directory: %w", err)
	}
	if err := os.WriteFile(path, nil, paths.ExecutableFileMode); err != nil {
		return fmt.Errorf("writing sidecar placeholder: %w", err)
	}
	return nil
}

// Reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
