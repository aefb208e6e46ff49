package platform

import (
	"context"
	"testing"

	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavecast/prebuild/internal/buildenv"
	"github.com/wavecast/prebuild/internal/project"
	"github.com/wavecast/prebuild/internal/runner/runnertest"
)

const rustcOutput = `rustc 1.82.0 (f6e511eec 2024-10-15)
binary: rustc
commit-hash: f6e511eec7342f59a25f7c0534f1dbea00d01b14
host: aarch64-apple-darwin
release: 1.82.0
LLVM version: 19.1.1
`

func newEnv(hostOS string, vars map[string]string) *buildenv.Environment {
	return buildenv.New(specs.Platform{OS: hostOS, Architecture: "amd64"}, "/work", vars)
}

func fakeCompiler(stdout string, code int) *runnertest.Fake {
	f := &runnertest.Fake{}
	f.On("rustc", []string{"-vV"}, runnertest.Response{Stdout: stdout, Code: code})
	return f
}

func TestResolveTierPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		compiler string
		code     int
		triple   string
		tier     Tier
	}{
		{
			name: "explicit wins over everything",
			vars: map[string]string{
				"TARGET_TRIPLE":         "riscv64gc-unknown-linux-gnu",
				"CARGO_CFG_TARGET_OS":   "linux",
				"CARGO_CFG_TARGET_ARCH": "x86_64",
			},
			compiler: rustcOutput,
			triple:   "riscv64gc-unknown-linux-gnu",
			tier:     TierExplicit,
		},
		{
			name: "table when only os and arch set",
			vars: map[string]string{
				"CARGO_CFG_TARGET_OS":   "linux",
				"CARGO_CFG_TARGET_ARCH": "x86_64",
			},
			code:   127,
			triple: "x86_64-unknown-linux-gnu",
			tier:   TierTable,
		},
		{
			name: "table wins over compiler",
			vars: map[string]string{
				"CARGO_CFG_TARGET_OS":   "windows",
				"CARGO_CFG_TARGET_ARCH": "x86_64",
			},
			compiler: rustcOutput,
			triple:   "x86_64-pc-windows-msvc",
			tier:     TierTable,
		},
		{
			name: "cargo macos and aarch64 names normalized",
			vars: map[string]string{
				"CARGO_CFG_TARGET_OS":   "macos",
				"CARGO_CFG_TARGET_ARCH": "aarch64",
			},
			triple: "aarch64-apple-darwin",
			tier:   TierTable,
		},
		{
			name:     "compiler when os without arch",
			vars:     map[string]string{"CARGO_CFG_TARGET_OS": "linux"},
			compiler: rustcOutput,
			triple:   "aarch64-apple-darwin",
			tier:     TierCompiler,
		},
		{
			name: "compiler when pair unknown",
			vars: map[string]string{
				"CARGO_CFG_TARGET_OS":   "haiku",
				"CARGO_CFG_TARGET_ARCH": "x86_64",
			},
			compiler: rustcOutput,
			triple:   "aarch64-apple-darwin",
			tier:     TierCompiler,
		},
		{
			name:     "blank explicit falls through",
			vars:     map[string]string{"TARGET_TRIPLE": "  "},
			compiler: rustcOutput,
			triple:   "aarch64-apple-darwin",
			tier:     TierCompiler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(project.Default().Triple, fakeCompiler(tt.compiler, tt.code))

			target, err := r.Resolve(context.Background(), newEnv("linux", tt.vars))
			require.NoError(t, err)
			assert.Equal(t, tt.triple, target.Triple)
			assert.Equal(t, tt.tier, target.Tier)
			assert.Equal(t, "linux", target.Host.OS)
		})
	}
}

func TestResolveExplicitSkipsCompiler(t *testing.T) {
	f := fakeCompiler(rustcOutput, 0)
	r := NewResolver(project.Default().Triple, f)

	_, err := r.Resolve(context.Background(), newEnv("linux", map[string]string{"TARGET_TRIPLE": "x86_64-unknown-linux-gnu"}))
	require.NoError(t, err)
	assert.Empty(t, f.Calls)
}

func TestResolveFailure(t *testing.T) {
	tests := []struct {
		name     string
		compiler string
		code     int
	}{
		{name: "compiler fails", code: 1},
		{name: "compiler prints no host line", compiler: "rustc 1.82.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(project.Default().Triple, fakeCompiler(tt.compiler, tt.code))
			_, err := r.Resolve(context.Background(), newEnv("linux", nil))
			require.ErrorIs(t, err, ErrResolution)
		})
	}
}

func TestResolveWithoutCompilerCommand(t *testing.T) {
	cfg := project.Default().Triple
	cfg.Compiler = nil
	f := &runnertest.Fake{}

	_, err := NewResolver(cfg, f).Resolve(context.Background(), newEnv("linux", nil))
	require.ErrorIs(t, err, ErrResolution)
	assert.Empty(t, f.Calls)
}

func TestResolveConfiguredTableOverridesBuiltin(t *testing.T) {
	cfg := project.Default().Triple
	cfg.Table = []project.TripleEntry{
		{OS: "linux", Arch: "aarch64", Triple: "aarch64-unknown-linux-musl"},
		{OS: "linux", Arch: "riscv64", Triple: "riscv64gc-unknown-linux-gnu"},
	}
	r := NewResolver(cfg, &runnertest.Fake{})

	for arch, want := range map[string]string{
		"arm64":   "aarch64-unknown-linux-musl",
		"riscv64": "riscv64gc-unknown-linux-gnu",
		"x86_64":  "x86_64-unknown-linux-gnu",
	} {
		target, err := r.Resolve(context.Background(), newEnv("linux", map[string]string{
			"CARGO_CFG_TARGET_OS":   "linux",
			"CARGO_CFG_TARGET_ARCH": arch,
		}))
		require.NoError(t, err)
		assert.Equal(t, want, target.Triple, arch)
	}
}

func TestResolveHostVariant(t *testing.T) {
	r := NewResolver(project.Default().Triple, &runnertest.Fake{})
	target, err := r.Resolve(context.Background(), newEnv("windows", map[string]string{"TARGET_TRIPLE": "x86_64-pc-windows-msvc"}))
	require.NoError(t, err)
	assert.Equal(t, FamilyWindows, target.Host.Family)
}

func TestParseHostTriple(t *testing.T) {
	assert.Equal(t, "aarch64-apple-darwin", ParseHostTriple([]byte(rustcOutput)))
	assert.Equal(t, "x86_64-pc-windows-gnu", ParseHostTriple([]byte("host:x86_64-pc-windows-gnu\r\n")))
	assert.Empty(t, ParseHostTriple([]byte("binary: rustc\n")))
	assert.Empty(t, ParseHostTriple(nil))
}

func TestSidecarName(t *testing.T) {
	assert.Equal(t, "nrsc5-x86_64-unknown-linux-gnu", Target{Triple: "x86_64-unknown-linux-gnu"}.SidecarName("nrsc5"))
	assert.Equal(t, "nrsc5-x86_64-pc-windows-msvc.exe", Target{Triple: "x86_64-pc-windows-msvc"}.SidecarName("nrsc5"))
	assert.Equal(t, "nrsc5-aarch64-apple-darwin", Target{Triple: "aarch64-apple-darwin"}.SidecarName("nrsc5"))
}
