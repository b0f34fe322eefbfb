package cli

import (
	"context"
	"fmt"

	"github.com/loadout-dev/loadout/internal/config"
	"github.com/loadout-dev/loadout/internal/logging"
	"github.com/loadout-dev/loadout/internal/skill"
	"github.com/spf13/cobra"
)

// ExitError carries a non-zero exit status for a command that already
// reported its outcome.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.FromContext(commandContext(cmd)).Debug("loaded config", "path", cfg.Path)
	return cfg, nil
}

func discoverSkills(ctx context.Context, cfg *config.Config) (*skill.Library, error) {
	lib, err := skill.Discover(ctx, cfg.Sources.Skills)
	if err != nil {
		return nil, fmt.Errorf("failed to discover skills: %w", err)
	}
	return lib, nil
}
