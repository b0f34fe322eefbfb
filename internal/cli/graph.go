package cli

import (
	"github.com/loadout-dev/loadout/internal/graph"
	"github.com/loadout-dev/loadout/internal/logging"
	"github.com/loadout-dev/loadout/internal/render"
	"github.com/spf13/cobra"
)

func RunGraph(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	tag, err := OptionalStringFlag(cmd, "tag")
	if err != nil {
		return err
	}
	pipelineName, err := OptionalStringFlag(cmd, "pipeline")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := discoverSkills(ctx, cfg)
	if err != nil {
		return err
	}

	g := graph.FromSkills(lib.Skills)
	logging.FromContext(ctx).Debug("built graph", "nodes", len(g.Nodes), "edges", len(g.Edges()))
	return render.Render(cmd.OutOrStdout(), format, g, graph.Filter{Tag: tag, Pipeline: pipelineName})
}
