package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/linker"
	"github.com/loadout-dev/loadout/internal/logging"
	"github.com/loadout-dev/loadout/internal/skill"
	"github.com/spf13/cobra"
)

func RunInstall(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	dryRun, err := OptionalBoolFlag(cmd, "dry-run")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
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

	placements := linker.Plan(cfg)
	byName := skill.Map(lib.Skills)
	if missing := unresolved(placements, byName); len(missing) > 0 {
		return fmt.Errorf("skills not found in source directories: %s", SummarizeNames(missing, 8))
	}

	out := cmd.OutOrStdout()
	if asJSON {
		out = io.Discard
	}
	if dryRun {
		fmt.Fprintln(out, warningStyle.Sprint("[dry run]"))
	}

	summary := RunSummary{Mode: "install", ConfigPath: cfg.Path, DryRun: dryRun}
	targets := make(map[string]bool)
	scope, target := "", ""
	for _, p := range placements {
		if p.Scope != scope {
			scope = p.Scope
			fmt.Fprintln(out, headerStyle.Sprint(scopeHeader(scope)))
		}
		if p.Target != target {
			target = p.Target
			fmt.Fprintf(out, "Target: %s\n", target)
		}
		targets[p.Target] = true

		action, err := linker.Link(p.Skill, byName[p.Skill].Path, p.Target, dryRun)
		if err != nil {
			return fmt.Errorf("failed to link %s into %s: %w", p.Skill, p.Target, err)
		}
		logger.Debug("linked skill", "skill", p.Skill, "target", p.Target, "action", action)

		switch action {
		case linker.ActionCreated:
			summary.Created++
		case linker.ActionUpdated:
			summary.Updated++
		default:
			summary.Unchanged++
		}
		summary.Links = append(summary.Links, LinkRecord{Skill: p.Skill, Target: p.Target, Scope: p.Scope, Action: string(action)})
		fmt.Fprintf(out, "  %s %s %s %s\n", actionStyle(action).Sprintf("%-9s", action), p.Skill, arrow, p.LinkPath())
	}

	summary.Targets = len(targets)
	summary.DurationMS = time.Since(start).Milliseconds()
	return PrintRunSummary(cmd.OutOrStdout(), summary, asJSON)
}

func RunClean(cmd *cobra.Command, args []string) error {
	start := time.Now()
	logger := logging.FromContext(commandContext(cmd))

	dryRun, err := OptionalBoolFlag(cmd, "dry-run")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		out = io.Discard
	}
	if dryRun {
		fmt.Fprintln(out, warningStyle.Sprint("[dry run]"))
	}

	summary := RunSummary{Mode: "clean", ConfigPath: cfg.Path, DryRun: dryRun}
	for _, target := range fileutil.DedupeStrings(cfg.AllTargets()) {
		if !linker.IsManaged(target) {
			logger.Debug("skipping unmanaged target", "target", target)
			continue
		}
		summary.Targets++
		removed, err := linker.Clean(target, dryRun)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Target: %s\n", target)
		for _, path := range removed {
			fmt.Fprintf(out, "  %s %s\n", errorStyle.Sprint("removed"), path)
		}
		summary.Removed += len(removed)
		summary.Removals = append(summary.Removals, removed...)
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return PrintRunSummary(cmd.OutOrStdout(), summary, asJSON)
}

func unresolved(placements []linker.Placement, byName map[string]*skill.Skill) []string {
	seen := make(map[string]bool)
	for _, p := range placements {
		if byName[p.Skill] == nil {
			seen[p.Skill] = true
		}
	}
	return fileutil.MapKeysSorted(seen)
}

func scopeHeader(scope string) string {
	if scope == "global" {
		return "--- Global scope ---"
	}
	return "--- Project: " + scope + " ---"
}
