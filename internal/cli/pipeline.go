package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/pipeline"
	"github.com/spf13/cobra"
)

func RunPipeline(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := discoverSkills(commandContext(cmd), cfg)
	if err != nil {
		return err
	}

	res := pipeline.Validate(lib.Skills)
	if len(args) == 1 {
		p, ok := res.Get(args[0])
		if !ok {
			known := "none"
			if names := res.Names(); len(names) > 0 {
				known = strings.Join(names, ", ")
			}
			return fmt.Errorf("pipeline %q not found (known: %s)", args[0], known)
		}
		res = res.Only(p.Name)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, res)
	}
	if len(res.Pipelines) == 0 {
		fmt.Fprintln(out, mutedStyle.Sprint("No pipelines declared."))
		return nil
	}
	for i, p := range res.Pipelines {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printPipeline(out, p, res)
	}
	return nil
}

func printPipeline(w io.Writer, p *pipeline.Pipeline, res *pipeline.Result) {
	fmt.Fprintln(w, headerStyle.Sprintf("Pipeline: %s (%d skills)", p.Name, len(p.Members)))

	orders := make([]string, len(p.Members))
	stages := make([]string, len(p.Members))
	for i, m := range p.Members {
		orders[i] = strconv.Itoa(m.Stage.Order)
		stages[i] = m.Stage.Stage
	}
	orderWidth := columnWidth(orders)
	stageWidth := columnWidth(stages)

	for i, m := range p.Members {
		line := fmt.Sprintf("  %s  %s  %s", padRight(orders[i], orderWidth), padRight(stages[i], stageWidth), m.Skill)
		var deps []string
		if len(m.Stage.After) > 0 {
			deps = append(deps, "after: "+strings.Join(m.Stage.After, ", "))
		}
		if len(m.Stage.Before) > 0 {
			deps = append(deps, "before: "+strings.Join(m.Stage.Before, ", "))
		}
		if len(deps) > 0 {
			line += " " + mutedStyle.Sprintf("(%s)", strings.Join(deps, "; "))
		}
		fmt.Fprintln(w, line)
	}

	for _, gap := range res.Gaps {
		if gap.Pipeline == p.Name {
			fmt.Fprintf(w, "  %s %s declares %s, but %s has no %s: [%s]\n",
				warningStyle.Sprint(bullet), gap.Peer, opposite(gap.Field)+": ["+gap.Skill+"]", gap.Skill, gap.Field, gap.Peer)
		}
	}
	for _, m := range res.Missing {
		if m.Pipeline == p.Name {
			fmt.Fprintf(w, "  %s %s %s: [%s] names an unknown skill\n", errorStyle.Sprint(bullet), m.Skill, m.Field, m.Target)
		}
	}
	for _, c := range res.Cycles {
		if c.Pipeline == p.Name {
			fmt.Fprintf(w, "  %s ordering cycle: %s\n", infoStyle.Sprint(bullet), strings.Join(c.Skills, " "+arrow+" "))
		}
	}
}

func opposite(field string) string {
	if field == pipeline.FieldBefore {
		return pipeline.FieldAfter
	}
	return pipeline.FieldBefore
}
