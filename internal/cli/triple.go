package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wavecast/prebuild/internal/platform"
	"github.com/wavecast/prebuild/internal/runner"
)

// Represents the 'prebuild triple' command.
type TripleCmd struct {
	Sidecar bool `short:"s" help:"Print the sidecar file name instead of the triple."`
}

// Executes the triple command.
//
// Prints the triple, or the sidecar file name, to standard output so that
// scripts can capture it.
func (c *TripleCmd) Run(ctx context.Context) error {
	cfg, env, err := setup()
	if err != nil {
		return err
	}

	target, err := platform.NewResolver(cfg.Triple, runner.Exec{}).Resolve(ctx, env)
	if err != nil {
		return err
	}

	slog.Debug("resolved target", "tier", target.Tier, "family", target.Host.Family)

	if c.Sidecar {
		fmt.Println(target.SidecarName(cfg.Sidecar.Prefix))
		return nil
	}

	fmt.Println(target.Triple)
	return nil
}
