package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/loadout-dev/loadout/internal/fileutil"
)

type LinkRecord struct {
	Skill  string `json:"skill"`
	Target string `json:"target"`
	Scope  string `json:"scope"`
	Action string `json:"action"`
}

type RunSummary struct {
	Mode       string       `json:"mode"`
	ConfigPath string       `json:"config_path"`
	DryRun     bool         `json:"dry_run"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Unchanged  int          `json:"unchanged"`
	Removed    int          `json:"removed"`
	Targets    int          `json:"targets"`
	DurationMS int64        `json:"duration_ms"`
	Links      []LinkRecord `json:"links,omitempty"`
	Removals   []string     `json:"removals,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	mode := summary.Mode
	if summary.DryRun {
		mode += " (dry-run)"
	}
	parts := []string{fmt.Sprintf("%s:", mode)}
	switch summary.Mode {
	case "install":
		parts = append(parts,
			fmt.Sprintf("created=%d", summary.Created),
			fmt.Sprintf("updated=%d", summary.Updated),
			fmt.Sprintf("unchanged=%d", summary.Unchanged),
		)
	case "clean":
		parts = append(parts, fmt.Sprintf("removed=%d", summary.Removed))
	}
	parts = append(parts,
		fmt.Sprintf("targets=%d", summary.Targets),
		fmt.Sprintf("duration=%dms", summary.DurationMS),
	)
	_, err := fmt.Fprintln(w, successStyle.Sprint(strings.Join(parts, " ")))
	return err
}

func SummarizeNames(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(names[:max], ", "), len(names)-max)
}
