package cli

import (
	"fmt"
	"log/slog"

	"github.com/loadout-dev/loadout/internal/logging"
	"github.com/loadout-dev/loadout/internal/render"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loadout",
		Short: "Manage and health-check a library of agent skills",
		Long: `Loadout links SKILL.md skills from your source directories into the
directories agent tools read them from, and checks the library for broken
cross-references, pipeline ordering gaps and missing metadata.

Configuration is read from ~/.config/loadout/loadout.yaml (or .hcl).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to loadout.yaml or loadout.hcl")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// Link Commands
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Symlink configured skills into global and project targets",
		Args:  cobra.NoArgs,
		RunE:  RunInstall,
	}
	installCmd.Flags().Bool("dry-run", false, "Show what would be linked without touching the filesystem")
	installCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove loadout symlinks from managed targets",
		Args:  cobra.NoArgs,
		RunE:  RunClean,
	}
	cleanCmd.Flags().Bool("dry-run", false, "Show what would be removed without touching the filesystem")
	cleanCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	// Inspect Commands
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the skills active in each scope",
		Args:  cobra.NoArgs,
		RunE:  RunList,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [name|dir]",
		Short: "Validate SKILL.md frontmatter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunValidate,
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Health-check the skill library",
		Args:  cobra.NoArgs,
		RunE:  RunCheck,
	}
	checkCmd.Flags().BoolP("verbose", "v", false, "Also show suppressed findings")
	checkCmd.Flags().String("severity", "info", "Minimum severity to show: error|warning|info")
	checkCmd.Flags().Bool("json", false, "Print machine-readable findings")
	checkCmd.Flags().Bool("watch", false, "Re-run when skills or the config change")

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the skill dependency graph",
		Args:  cobra.NoArgs,
		RunE:  RunGraph,
	}
	graphCmd.Flags().StringP("format", "f", string(render.FormatDOT), "Output format: dot|text|json|mermaid")
	graphCmd.Flags().String("tag", "", "Only include skills with this tag")
	graphCmd.Flags().String("pipeline", "", "Only include skills in this pipeline")

	pipelineCmd := &cobra.Command{
		Use:   "pipeline [name]",
		Short: "Show pipeline stages in order",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunPipeline,
	}
	pipelineCmd.Flags().Bool("json", false, "Print machine-readable pipelines")

	// Author Commands
	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new skill from the template",
		Args:  cobra.ExactArgs(1),
		RunE:  RunNew,
	}
	newCmd.Flags().StringP("description", "d", "", "Skill description")
	newCmd.Flags().StringSlice("tag", nil, "Tags to add to the frontmatter")
	newCmd.Flags().String("source", "", "Source directory (default: first configured source)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loadout %s\n", version)
		},
	}

	rootCmd.AddCommand(
		installCmd,
		cleanCmd,
		listCmd,
		validateCmd,
		checkCmd,
		graphCmd,
		pipelineCmd,
		newCmd,
		versionCmd,
	)

	return rootCmd
}

func setupLogging(cmd *cobra.Command, args []string) error {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("failed to read --debug flag: %w", err)
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	cmd.SetContext(logging.WithLogger(commandContext(cmd), logger))
	return nil
}
