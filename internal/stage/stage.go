package stage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/native"
	"github.com/wavecast/prebuild/internal/paths"
	"github.com/wavecast/prebuild/internal/platform"
	"github.com/wavecast/prebuild/internal/project"
)

// Subdirectories of the resources directory.
const (
	includeSubdir = "include"
	libSubdir     = "lib"
)

// The distribution tree assembled for packaging.
type Layout struct {
	Dist       string // Receives the dynamic libraries.
	Resources  string // Receives the include and lib trees.
	IncludeDir string // Resources include tree.
	LibDir     string // Resources lib tree, including package metadata.
}

// Returns the layout with the given absolute dist and resources directories.
func LayoutAt(dist, resources string) *Layout {
	return &Layout{
		Dist:       dist,
		Resources:  resources,
		IncludeDir: filepath.Join(resources, includeSubdir),
		LibDir:     filepath.Join(resources, libSubdir),
	}
}

// Copies native build artifacts into the distribution layout.
type Stager struct {
	config  project.Stage
	variant platform.Variant
}

// Creates a [Stager] for the given host platform variant.
func New(cfg project.Stage, v platform.Variant) *Stager {
	return &Stager{config: cfg, variant: v}
}

// Returns the distribution layout for env.
func (s *Stager) Layout(env *buildenv.Environment) *Layout {
	return LayoutAt(
		paths.Resolve(env.Workdir(), s.config.Dist),
		paths.Resolve(env.Workdir(), s.config.Resources),
	)
}

// Stages out into the distribution layout and writes the report.
//
// out must come from a native build whose phases both succeeded. Missing
// include or lib trees are errors; a missing bin directory is not. All
// failures wrap [ErrStaging].
func (s *Stager) Stage(env *buildenv.Environment, out *native.Output) (*Report, error) {
	layout := s.Layout(env)
	slog.Info("staging artifacts", "from", out.Root, "dist", layout.Dist)

	binaries, err := s.copyBinaries(out.BinDir, layout.Dist)
	if err != nil {
		return nil, fmt.Errorf("%w: binaries: %w", ErrStaging, err)
	}

	headers, err := copyRequiredTree(out.IncludeDir, layout.IncludeDir)
	if err != nil {
		return nil, fmt.Errorf("%w: headers: %w", ErrStaging, err)
	}

	libraries, err := copyRequiredTree(out.LibDir, layout.LibDir)
	if err != nil {
		return nil, fmt.Errorf("%w: libraries: %w", ErrStaging, err)
	}

	prefix := filepath.ToSlash(layout.Resources)
	metadata, err := rewriteMetadataTree(layout.LibDir, s.config.MetadataExt, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", ErrStaging, err)
	}

	slog.Info("staged artifacts",
		"binaries", len(binaries),
		"headers", len(headers),
		"libraries", len(libraries),
		"metadata", len(metadata),
	)

	report, err := newReport(layout, binaries, headers, libraries, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: report: %w", ErrStaging, err)
	}

	if s.config.Report != "" {
		path := paths.Resolve(env.Workdir(), s.config.Report)
		if err := report.Write(path); err != nil {
			return nil, fmt.Errorf("%w: report: %w", ErrStaging, err)
		}
		slog.Debug("wrote staging report", "path", path)
	}

	return report, nil
}

// Copies every dynamic library directly under binDir into dist.
//
// A missing bin directory stages nothing.
func (s *Stager) copyBinaries(binDir, dist string) ([]string, error) {
	entries, err := os.ReadDir(binDir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no binary directory, skipping dynamic libraries", "dir", binDir)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dist, paths.DefaultDirMode); err != nil {
		return nil, err
	}

	var copied []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.variant.DylibExt) {
			continue
		}

		dst := filepath.Join(dist, e.Name())
		if err := copyFile(filepath.Join(binDir, e.Name()), dst); err != nil {
			return nil, err
		}
		copied = append(copied, dst)
	}

	if len(copied) == 0 {
		slog.Debug("no dynamic libraries found", "dir", binDir, "ext", s.variant.DylibExt)
	}

	return copied, nil
}

// Copies src into dst, failing if src is not a directory.
func copyRequiredTree(src, dst string) ([]string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("missing %s: %w", src, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", src)
	}
	return copyTree(src, dst)
}
