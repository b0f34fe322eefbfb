// Package check runs the health-check battery over a skill library and
// turns every irregularity into a severity-ranked, suppressible finding.
//
// Evaluate is pure: it always computes the full finding list. Suppression
// is a separate decoration pass applied by Run.
package check

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/loadout-dev/loadout/internal/graph"
	"github.com/loadout-dev/loadout/internal/ignore"
	"github.com/loadout-dev/loadout/internal/linker"
	"github.com/loadout-dev/loadout/internal/pipeline"
	"github.com/loadout-dev/loadout/internal/skill"
)

// MinDescriptionLength is the shortest description not flagged as empty.
const MinDescriptionLength = 10

var placeholderDescriptions = []string{"Description here", "TODO", "TBD", "FIXME"}

// Input is everything the battery looks at. Graph and Pipelines are
// computed from Skills when nil. A nil Active set disables the orphaned
// check.
type Input struct {
	Skills    []*skill.Skill
	Problems  []skill.Problem
	Graph     *graph.Graph
	Pipelines *pipeline.Result
	Active    map[string]bool
	Links     []linker.Issue

	// ConfigPath is only used to word fix suggestions.
	ConfigPath string
}

// Options control suppression and display.
type Options struct {
	Ignore      []string
	Verbose     bool
	MinSeverity Severity
}

// Report holds every finding with its suppression state resolved.
type Report struct {
	Findings      []Finding `json:"findings"`
	UnusedIgnores []string  `json:"unused_ignores,omitempty"`

	opts Options
}

// Run evaluates the battery and applies suppression.
func Run(in Input, opts Options) *Report {
	findings := Evaluate(in)

	matcher := ignore.NewMatcher(opts.Ignore)
	keys := make([]string, 0, len(findings))
	for i := range findings {
		keys = append(keys, findings[i].Key)
		if pattern, ok := matcher.Match(findings[i].Key); ok {
			findings[i].Suppressed = true
			findings[i].IgnoredBy = pattern
		}
	}

	return &Report{
		Findings:      findings,
		UnusedIgnores: matcher.Unused(keys),
		opts:          opts,
	}
}

// Visible returns the findings to display: at or above the minimum
// severity, and not suppressed unless running verbose.
func (r *Report) Visible() []Finding {
	out := make([]Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		if f.Severity < r.opts.MinSeverity {
			continue
		}
		if f.Suppressed && !r.opts.Verbose {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Counts tallies visible, unsuppressed findings by severity.
func (r *Report) Counts() map[Severity]int {
	counts := map[Severity]int{}
	for _, f := range r.Visible() {
		if !f.Suppressed {
			counts[f.Severity]++
		}
	}
	return counts
}

// SuppressedCount returns how many findings were suppressed.
func (r *Report) SuppressedCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Suppressed {
			n++
		}
	}
	return n
}

// ExitCode is 1 when an unsuppressed error is visible.
func (r *Report) ExitCode() int {
	if r.Counts()[SeverityError] > 0 {
		return 1
	}
	return 0
}

// Evaluate runs every check and returns the sorted findings.
func Evaluate(in Input) []Finding {
	if in.Graph == nil {
		in.Graph = graph.FromSkills(in.Skills)
	}
	if in.Pipelines == nil {
		in.Pipelines = pipeline.Validate(in.Skills)
	}

	var findings []Finding
	findings = append(findings, checkInvalid(in.Problems)...)
	findings = append(findings, checkDangling(in.Graph)...)
	findings = append(findings, checkOrphaned(in.Skills, in.Active, in.ConfigPath)...)
	findings = append(findings, checkNameMismatch(in.Skills)...)
	findings = append(findings, checkDescriptions(in.Skills)...)
	findings = append(findings, checkPipelines(in.Pipelines)...)
	findings = append(findings, checkMetadata(in.Skills)...)
	findings = append(findings, checkLinks(in.Links)...)

	Sort(findings)
	return findings
}

func checkInvalid(problems []skill.Problem) []Finding {
	var out []Finding
	for _, p := range problems {
		dir := filepath.Base(filepath.Dir(p.Path))
		fix := fmt.Sprintf("Fix the YAML frontmatter in %s", p.Path)
		var verr *skill.ValidationError
		switch {
		case errors.Is(p.Err, skill.ErrMissingFrontmatter):
			fix = fmt.Sprintf("Add a frontmatter block between --- lines to %s", p.Path)
		case errors.As(p.Err, &verr):
			fix = fmt.Sprintf("Fix the %s field in %s", verr.Field, p.Path)
		}
		out = append(out, newFinding(CategoryInvalidSkill, SeverityError, []string{dir},
			fmt.Sprintf("Skill in '%s' could not be loaded: %v", dir, p.Err),
			fix,
		).withPath(p.Path))
	}
	return out
}

// checkDangling reports cross-references to missing skills. A pipeline edge
// to a missing skill (before: [ghost]) is not dangling; checkPipelines
// reports it once as pipeline-missing.
func checkDangling(g *graph.Graph) []Finding {
	var out []Finding
	for _, edge := range g.Edges() {
		if edge.Kind != graph.KindCrossRef {
			continue
		}
		target := g.Nodes[edge.Target]
		if target == nil || !target.Missing {
			continue
		}
		where := ""
		if len(edge.Lines) > 0 {
			where = fmt.Sprintf(" (line %d)", edge.Lines[0])
		}
		f := newFinding(CategoryDangling, SeverityError, []string{edge.Source, edge.Target},
			fmt.Sprintf("Skill '%s' references non-existent skill '%s'%s", edge.Source, edge.Target, where),
			fmt.Sprintf("Create the skill with `loadout new %s`, or remove the reference%s", edge.Target, where),
		)
		if src := g.Nodes[edge.Source]; src != nil && src.Skill != nil {
			f = f.withPath(src.Skill.File)
		}
		out = append(out, f)
	}
	return out
}

func checkOrphaned(skills []*skill.Skill, active map[string]bool, configPath string) []Finding {
	if active == nil {
		return nil
	}
	where := "the loadout config"
	if configPath != "" {
		where = configPath
	}
	var out []Finding
	for _, s := range skills {
		if active[s.Name] {
			continue
		}
		out = append(out, newFinding(CategoryOrphaned, SeverityWarning, []string{s.Name},
			fmt.Sprintf("Skill '%s' exists in sources but is not enabled in any scope", s.Name),
			fmt.Sprintf("Add '%s' to global.skills or a project's skills in %s", s.Name, where),
		).withPath(s.Path))
	}
	return out
}

func checkNameMismatch(skills []*skill.Skill) []Finding {
	var out []Finding
	for _, s := range skills {
		if s.Path == "" || s.DirName() == s.Name {
			continue
		}
		out = append(out, newFinding(CategoryNameMismatch, SeverityError, []string{s.Name},
			fmt.Sprintf("Skill name '%s' does not match directory name '%s'", s.Name, s.DirName()),
			fmt.Sprintf("Rename the directory to '%s' or update the frontmatter name field", s.Name),
		).withPath(s.Path))
	}
	return out
}

func checkDescriptions(skills []*skill.Skill) []Finding {
	var out []Finding
	for _, s := range skills {
		desc := strings.TrimSpace(s.Description)
		if placeholder := findPlaceholder(desc); placeholder != "" {
			out = append(out, newFinding(CategoryPlaceholderDescription, SeverityWarning, []string{s.Name},
				fmt.Sprintf("Skill '%s' has a placeholder description: '%s'", s.Name, truncate(desc, 50)),
				fmt.Sprintf("Replace '%s' with a real description in %s", placeholder, skillFile(s)),
			).withPath(s.Path))
			continue
		}
		if len(desc) < MinDescriptionLength {
			message := fmt.Sprintf("Skill '%s' has an empty description", s.Name)
			if desc != "" {
				message = fmt.Sprintf("Skill '%s' has a very short description (%d chars): '%s'", s.Name, len(desc), desc)
			}
			out = append(out, newFinding(CategoryEmptyDescription, SeverityWarning, []string{s.Name},
				message,
				fmt.Sprintf("Describe what the skill does and when to use it in %s", skillFile(s)),
			).withPath(s.Path))
		}
	}
	return out
}

func checkPipelines(res *pipeline.Result) []Finding {
	var out []Finding
	for _, gap := range res.Gaps {
		declared := pipeline.FieldAfter
		if gap.Field == pipeline.FieldAfter {
			declared = pipeline.FieldBefore
		}
		out = append(out, newFinding(CategoryPipelineGap, SeverityWarning, []string{gap.Skill, gap.Peer, gap.Pipeline},
			fmt.Sprintf("Pipeline '%s': '%s' declares %s: [%s] but '%s' does not declare %s: [%s]",
				gap.Pipeline, gap.Peer, declared, gap.Skill, gap.Skill, gap.Field, gap.Peer),
			fmt.Sprintf("Add %s: [%s] to skill '%s' in pipeline '%s'", gap.Field, gap.Peer, gap.Skill, gap.Pipeline),
		))
	}
	for _, m := range res.Missing {
		out = append(out, newFinding(CategoryPipelineMissing, SeverityError, []string{m.Skill, m.Target, m.Pipeline},
			fmt.Sprintf("Pipeline '%s': '%s' declares %s: [%s] but that skill does not exist",
				m.Pipeline, m.Skill, m.Field, m.Target),
			fmt.Sprintf("Create the skill with `loadout new %s`, or remove it from the %s list of '%s'", m.Target, m.Field, m.Skill),
		))
	}
	for _, c := range res.Cycles {
		out = append(out, newFinding(CategoryPipelineCycle, SeverityInfo, append([]string{c.Pipeline}, c.Skills...),
			fmt.Sprintf("Pipeline '%s': %s are ordered in a cycle", c.Pipeline, strings.Join(quoteAll(c.Skills), ", ")),
			"Remove one after/before declaration so the stages have a start and an end",
		))
	}
	return out
}

// checkMetadata flags unannotated skills, but only in a partially
// annotated library.
func checkMetadata(skills []*skill.Skill) []Finding {
	annotated := false
	for _, s := range skills {
		if s.HasMetadata() {
			annotated = true
			break
		}
	}
	if !annotated {
		return nil
	}

	var out []Finding
	for _, s := range skills {
		if s.HasMetadata() {
			continue
		}
		out = append(out, newFinding(CategoryNoMetadata, SeverityInfo, []string{s.Name},
			fmt.Sprintf("Skill '%s' has no tags and is not in any pipeline", s.Name),
			fmt.Sprintf("Add tags: [<tag>] or pipeline metadata to %s", skillFile(s)),
		).withPath(s.Path))
	}
	return out
}

func checkLinks(issues []linker.Issue) []Finding {
	var out []Finding
	for _, issue := range issues {
		switch issue.Kind {
		case linker.IssueBrokenSymlink:
			out = append(out, newFinding(CategoryBrokenSymlink, SeverityError, []string{issue.Name},
				fmt.Sprintf("Broken symlink '%s': %s does not exist", issue.Name, issue.Target),
				"Run `loadout clean && loadout install` to rebuild symlinks",
			).withPath(issue.Path))
		case linker.IssueUnmanaged:
			out = append(out, newFinding(CategoryUnmanaged, SeverityWarning, []string{issue.Name},
				fmt.Sprintf("Unmanaged directory '%s' occupies a skill slot", issue.Name),
				"Remove the directory, or move it into a skill source so loadout can link it",
			).withPath(issue.Path))
		}
	}
	return out
}

func findPlaceholder(description string) string {
	for _, p := range placeholderDescriptions {
		if strings.Contains(description, p) {
			return p
		}
	}
	return ""
}

func skillFile(s *skill.Skill) string {
	if s.File != "" {
		return s.File
	}
	return filepath.Join(s.Name, skill.FileName)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "'" + v + "'"
	}
	return out
}
