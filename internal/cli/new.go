package cli

import (
	"fmt"

	"github.com/loadout-dev/loadout/internal/scaffold"
	"github.com/spf13/cobra"
)

func RunNew(cmd *cobra.Command, args []string) error {
	description, err := OptionalStringFlag(cmd, "description")
	if err != nil {
		return err
	}
	source, err := OptionalStringFlag(cmd, "source")
	if err != nil {
		return err
	}
	var tags []string
	if cmd.Flags().Lookup("tag") != nil {
		if tags, err = cmd.Flags().GetStringSlice("tag"); err != nil {
			return fmt.Errorf("failed to read --tag flag: %w", err)
		}
	}

	if source == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(cfg.Sources.Skills) > 0 {
			source = cfg.Sources.Skills[0]
		}
	}

	path, err := scaffold.New(source, args[0], scaffold.Options{Description: description, Tags: tags})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Created %s\n", successStyle.Sprint(checkmark), path)
	fmt.Fprintln(out, mutedStyle.Sprintf("Add %q to a scope in your config, then run `loadout install`.", args[0]))
	return nil
}
