package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wavecast/prebuild/internal/paths"
	"gopkg.in/yaml.v3"
)

// Top-level orchestrator configuration.
type Config struct {
	Sidecar Sidecar `yaml:"sidecar"`
	Native  Native  `yaml:"native"`
	Stage   Stage   `yaml:"stage"`
	Triple  Triple  `yaml:"triple"`
	Shell   Shell   `yaml:"shell"`
}

// Sidecar executable settings.
type Sidecar struct {
	Prefix  string `yaml:"prefix"`   // File name prefix, followed by "-<triple>".
	Script  string `yaml:"script"`   // Build script, relative to the project root.
	BinDir  string `yaml:"bin_dir"`  // Directory that receives the sidecar.
	SkipEnv string `yaml:"skip_env"` // Variable that, when "true", selects the placeholder.
}

// Native build system settings.
type Native struct {
	Command       string    `yaml:"command"`        // Build system CLI.
	Source        string    `yaml:"source"`         // Configuration script location passed to phase 1.
	Output        string    `yaml:"output"`         // Output root; working directory of both phases.
	ConfigureArgs []string  `yaml:"configure_args"` // Extra phase 1 arguments, before the source.
	BuildArgs     []string  `yaml:"build_args"`     // Extra phase 2 arguments, after "--build .".
	UnsetEnv      []EnvRule `yaml:"unset_env"`      // Variables removed from the build environment.
	Env           []string  `yaml:"env"`            // "KEY=VALUE" entries set for both phases.
}

// Removes variables from the native build environment on matching hosts.
type EnvRule struct {
	OS   string   `yaml:"os"`   // Host OS; empty matches any.
	Arch string   `yaml:"arch"` // Host architecture; empty matches any.
	Vars []string `yaml:"vars"`
}

// Artifact staging settings.
type Stage struct {
	Dist        string `yaml:"dist"`         // Distribution root.
	Resources   string `yaml:"resources"`    // Resources subtree of the distribution root.
	MetadataExt string `yaml:"metadata_ext"` // Package-metadata file extension.
	Report      string `yaml:"report"`       // Staging report path; empty disables it.
}

// Target triple resolution settings.
type Triple struct {
	Env      string        `yaml:"env"`      // Explicit triple variable.
	OSEnv    string        `yaml:"os_env"`   // Target OS variable.
	ArchEnv  string        `yaml:"arch_env"` // Target architecture variable.
	Compiler []string      `yaml:"compiler"` // Introspection command printing "host: <triple>".
	Table    []TripleEntry `yaml:"table"`    // Additional (os, arch) mappings.
}

// Maps an (os, arch) pair to a target triple.
type TripleEntry struct {
	OS     string `yaml:"os"`
	Arch   string `yaml:"arch"`
	Triple string `yaml:"triple"`
}

// Shells used to run the sidecar build script.
type Shell struct {
	Windows string `yaml:"windows"` // Login shell on Windows hosts.
	Posix   string `yaml:"posix"`   // Shell on every other host.
}

// Returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sidecar: Sidecar{
			Prefix:  "nrsc5",
			Script:  "./build_scripts/nrsc5.sh",
			BinDir:  paths.BinDir,
			SkipEnv: "SKIP_SIDECAR_BUILD",
		},
		Native: Native{
			Command: "cmake",
			Source:  "native",
			Output:  paths.NativeDir,
			UnsetEnv: []EnvRule{
				{OS: "darwin", Arch: "arm64", Vars: []string{"MACOSX_DEPLOYMENT_TARGET"}},
			},
		},
		Stage: Stage{
			Dist:        paths.DistDir,
			Resources:   paths.ResourcesDir,
			MetadataExt: ".pc",
			Report:      paths.StagingReport,
		},
		Triple: Triple{
			Env:      "TARGET_TRIPLE",
			OSEnv:    "CARGO_CFG_TARGET_OS",
			ArchEnv:  "CARGO_CFG_TARGET_ARCH",
			Compiler: []string{"rustc", "-vV"},
		},
		Shell: Shell{
			Windows: "C:/msys64/usr/bin/bash.exe",
			Posix:   "sh",
		},
	}
}

// Returns the configuration file to load.
//
// An explicit path must exist. Otherwise the project file under root is
// preferred, then the user-level file. Returns "" when neither exists.
func Find(explicit, root string) (string, error) {
	if explicit != "" {
		path := paths.Resolve(root, explicit)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return path, nil
	}

	local := filepath.Join(root, paths.ProjectConfig)
	if exists(local) {
		return local, nil
	}

	user := paths.FindUserConfig()
	if user == "" {
		slog.Debug("no project configuration", "project", local, "user", paths.UserConfig())
	}
	return user, nil
}

// Loads the configuration at path over the defaults.
//
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		slog.Debug("no configuration file, using defaults")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("loaded configuration", "path", path)
	return cfg, nil
}

// Decodes YAML over cfg, rejecting unknown keys. An empty document is valid.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Checks that every required setting is present.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"sidecar.prefix", c.Sidecar.Prefix},
		{"sidecar.script", c.Sidecar.Script},
		{"sidecar.bin_dir", c.Sidecar.BinDir},
		{"sidecar.skip_env", c.Sidecar.SkipEnv},
		{"native.command", c.Native.Command},
		{"native.source", c.Native.Source},
		{"native.output", c.Native.Output},
		{"stage.dist", c.Stage.Dist},
		{"stage.resources", c.Stage.Resources},
		{"stage.metadata_ext", c.Stage.MetadataExt},
		{"shell.windows", c.Shell.Windows},
		{"shell.posix", c.Shell.Posix},
	}

	var errs []error
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s must not be empty", ErrConfig, r.name))
		}
	}

	for i, e := range c.Native.Env {
		if k, _, ok := strings.Cut(e, "="); !ok || k == "" {
			errs = append(errs, fmt.Errorf("%w: native.env[%d] must be KEY=VALUE", ErrConfig, i))
		}
	}

	for i, e := range c.Triple.Table {
		if e.OS == "" || e.Arch == "" || e.Triple == "" {
			errs = append(errs, fmt.Errorf("%w: triple.table[%d] needs os, arch and triple", ErrConfig, i))
		}
	}

	return errors.Join(errs...)
}

// Reports whether the file at path exists and is a regular file.
func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
