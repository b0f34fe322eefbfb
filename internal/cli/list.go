package cli

import (
	"fmt"
	"sort"

	"github.com/loadout-dev/loadout/internal/config"
	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/skill"
	"github.com/spf13/cobra"
)

type scopeEntry struct {
	Scope   string
	Skills  []string
	Inherit bool
}

// scopeEntries lists the configured scopes in display order with their
// active skill names.
func scopeEntries(cfg *config.Config) []scopeEntry {
	global := fileutil.DedupeStrings(cfg.Global.Skills)
	sort.Strings(global)
	entries := []scopeEntry{{Scope: "global", Skills: global, Inherit: true}}
	for _, path := range cfg.ProjectPaths() {
		entries = append(entries, scopeEntry{
			Scope:   path,
			Skills:  cfg.ProjectSkills(path),
			Inherit: cfg.Projects[path].Inherits(),
		})
	}
	return entries
}

func RunList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := discoverSkills(commandContext(cmd), cfg)
	if err != nil {
		return err
	}
	byName := skill.Map(lib.Skills)
	globals := make(map[string]bool, len(cfg.Global.Skills))
	for _, name := range cfg.Global.Skills {
		globals[name] = true
	}

	out := cmd.OutOrStdout()
	for i, entry := range scopeEntries(cfg) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, headerStyle.Sprint(scopeHeader(entry.Scope)))
		if entry.Scope == "global" {
			fmt.Fprintf(out, "Skills: %d\n", len(entry.Skills))
		} else {
			fmt.Fprintf(out, "Skills: %d (inherit: %t)\n", len(entry.Skills), entry.Inherit)
		}

		width := columnWidth(entry.Skills)
		for _, name := range entry.Skills {
			s := byName[name]
			if s == nil {
				fmt.Fprintf(out, "  %s %s %s\n", errorStyle.Sprint(xmark), padRight(name, width), errorStyle.Sprint("(not found)"))
				continue
			}
			origin := ""
			if entry.Scope != "global" {
				origin = "project, "
				if globals[name] {
					origin = "global, "
				}
			}
			fmt.Fprintf(out, "  %s %s %s\n", successStyle.Sprint(checkmark), padRight(name, width), mutedStyle.Sprintf("(%s%s)", origin, s.Path))
		}
	}

	if len(lib.Shadowed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, warningStyle.Sprintf("Shadowed (%d):", len(lib.Shadowed)))
		for _, s := range lib.Shadowed {
			fmt.Fprintf(out, "  %s %s %s\n", mutedStyle.Sprint(bullet), s.Name, mutedStyle.Sprintf("(%s)", s.Path))
		}
	}
	return nil
}
