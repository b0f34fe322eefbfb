package check

import (
	"fmt"
	"testing"

	"github.com/loadout-dev/loadout/internal/graph"
	"github.com/loadout-dev/loadout/internal/linker"
	"github.com/loadout-dev/loadout/internal/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func described(name, body string) *skill.Skill {
	return &skill.Skill{Name: name, Description: "A reasonably described skill", Body: body, BodyLine: 1}
}

func only(findings []Finding, category string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

func TestDanglingStructuredTag(t *testing.T) {
	findings := Evaluate(Input{Skills: []*skill.Skill{
		described("editor", `See <see ref="ghost-writer">the writer</see>.`),
	}})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, CategoryDangling, f.Category)
	assert.Equal(t, SeverityError, f.Severity)
	assert.Equal(t, []string{"editor", "ghost-writer"}, f.Subject)
	assert.Equal(t, "dangling:editor:ghost-writer", f.Key)
	assert.Contains(t, f.Fix, "loadout new ghost-writer")
}

func TestSuppressionHidesUnlessVerbose(t *testing.T) {
	in := Input{Skills: []*skill.Skill{
		described("editor", `<see ref="ghost-writer">`),
	}}
	ignore := []string{"dangling:editor:ghost-writer"}

	quiet := Run(in, Options{Ignore: ignore})
	assert.Empty(t, quiet.Visible())
	assert.Equal(t, 1, quiet.SuppressedCount())
	assert.Equal(t, 0, quiet.ExitCode())

	verbose := Run(in, Options{Ignore: ignore, Verbose: true})
	visible := verbose.Visible()
	require.Len(t, visible, 1)
	assert.True(t, visible[0].Suppressed)
	assert.Equal(t, "dangling:editor:ghost-writer", visible[0].IgnoredBy)
	assert.Equal(t, 0, verbose.ExitCode())

	plain := Run(in, Options{})
	assert.Equal(t, 1, plain.ExitCode())
	assert.Equal(t, 1, plain.Counts()[SeverityError])
}

func TestPipelineGapFinding(t *testing.T) {
	findings := Evaluate(Input{Skills: []*skill.Skill{
		{Name: "compile", Description: "Compile the final draft", Pipelines: map[string]skill.Stage{"pub": {Order: 2, After: []string{"spine"}}}},
		{Name: "spine", Description: "Build the story spine", Pipelines: map[string]skill.Stage{"pub": {Order: 1}}},
	}})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, CategoryPipelineGap, f.Category)
	assert.Equal(t, SeverityWarning, f.Severity)
	assert.Equal(t, []string{"spine", "compile", "pub"}, f.Subject)
	assert.Equal(t, "Add before: [compile] to skill 'spine' in pipeline 'pub'", f.Fix)
	assert.Contains(t, f.Message, "'compile' declares after: [spine]")
}

func TestPipelineMissingIsNotAlsoDangling(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "compile", Description: "Compile the final draft", Pipelines: map[string]skill.Stage{"pub": {Before: []string{"ship"}}}},
	}
	g := graph.FromSkills(skills)
	edge, ok := g.Edge("compile", "ship", graph.KindPipeline)
	require.True(t, ok)
	require.True(t, g.Nodes[edge.Target].Missing)

	findings := Evaluate(Input{Skills: skills, Graph: g})

	require.Len(t, findings, 1)
	assert.Equal(t, CategoryPipelineMissing, findings[0].Category)
	assert.Equal(t, "pipeline-missing:compile:ship:pub", findings[0].Key)
}

func TestPipelineCycleIsInfo(t *testing.T) {
	findings := Evaluate(Input{Skills: []*skill.Skill{
		{Name: "a", Description: "First of two", Pipelines: map[string]skill.Stage{"p": {After: []string{"b"}, Before: []string{"b"}}}},
		{Name: "b", Description: "Second of two", Pipelines: map[string]skill.Stage{"p": {After: []string{"a"}, Before: []string{"a"}}}},
	}})

	cycles := only(findings, CategoryPipelineCycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, SeverityInfo, cycles[0].Severity)
	assert.Equal(t, "pipeline-cycle:p:a:b", cycles[0].Key)
}

func TestNoMetadataOnlyWhenPartiallyAnnotated(t *testing.T) {
	none := []*skill.Skill{described("a", ""), described("b", "")}
	assert.Empty(t, only(Evaluate(Input{Skills: none}), CategoryNoMetadata))

	all := []*skill.Skill{described("a", ""), described("b", "")}
	all[0].Tags = []string{"x"}
	all[1].Pipelines = map[string]skill.Stage{"p": {}}
	assert.Empty(t, only(Evaluate(Input{Skills: all}), CategoryNoMetadata))

	partial := []*skill.Skill{described("a", ""), described("lonely", "")}
	partial[0].Tags = []string{"x"}
	got := only(Evaluate(Input{Skills: partial}), CategoryNoMetadata)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"lonely"}, got[0].Subject)
	assert.Equal(t, SeverityInfo, got[0].Severity)
}

func TestDescriptionChecks(t *testing.T) {
	findings := Evaluate(Input{Skills: []*skill.Skill{
		{Name: "blank"},
		{Name: "short", Description: "Edits"},
		{Name: "todo", Description: "TODO: write this properly later on"},
		{Name: "fine", Description: "Edit long-form posts"},
	}})

	empty := only(findings, CategoryEmptyDescription)
	require.Len(t, empty, 2)
	assert.Equal(t, "blank", empty[0].Subject[0])
	assert.Contains(t, empty[1].Message, "(5 chars)")

	placeholder := only(findings, CategoryPlaceholderDescription)
	require.Len(t, placeholder, 1)
	assert.Equal(t, "todo", placeholder[0].Subject[0])
}

func TestOrphanedAndNameMismatch(t *testing.T) {
	a := described("a", "")
	a.Path = "/skills/a"
	b := described("b", "")
	b.Path = "/skills/not-b"

	findings := Evaluate(Input{
		Skills: []*skill.Skill{a, b},
		Active: map[string]bool{"a": true},
	})

	orphaned := only(findings, CategoryOrphaned)
	require.Len(t, orphaned, 1)
	assert.Equal(t, "orphaned:b", orphaned[0].Key)

	mismatch := only(findings, CategoryNameMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, SeverityError, mismatch[0].Severity)
	assert.Contains(t, mismatch[0].Message, "not-b")

	assert.Empty(t, only(Evaluate(Input{Skills: []*skill.Skill{a, b}}), CategoryOrphaned))
}

func TestInvalidSkillsAndLinkIssues(t *testing.T) {
	findings := Evaluate(Input{
		Problems: []skill.Problem{
			{Path: "/skills/broken/SKILL.md", Err: skill.ErrMissingFrontmatter},
			{Path: "/skills/bad/SKILL.md", Err: fmt.Errorf("wrapped: %w", &skill.ValidationError{Field: "name", Message: "bad"})},
		},
		Links: []linker.Issue{
			{Kind: linker.IssueBrokenSymlink, Name: "gone", Path: "/t/gone", Target: "/skills/gone"},
			{Kind: linker.IssueUnmanaged, Name: "handmade", Path: "/t/handmade"},
		},
	})

	invalid := only(findings, CategoryInvalidSkill)
	require.Len(t, invalid, 2)
	assert.Equal(t, "invalid-skill:bad", invalid[0].Key)
	assert.Contains(t, invalid[0].Fix, "name field")
	assert.Contains(t, invalid[1].Fix, "frontmatter block")

	require.Len(t, only(findings, CategoryBrokenSymlink), 1)
	require.Len(t, only(findings, CategoryUnmanaged), 1)
}

func TestFindingsAreOrderedAndAlwaysCarryAFix(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "editor", Body: "<see ref=\"ghost\">\nuse `zeta`", Tags: []string{"x"}},
		{Name: "zeta", Description: "FIXME", Pipelines: map[string]skill.Stage{"p": {After: []string{"editor", "nope"}}}},
		{Name: "plain", Description: "Nothing special here"},
	}
	in := Input{Skills: skills, Active: map[string]bool{"editor": true}}

	first := Evaluate(in)
	require.NotEmpty(t, first)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, Evaluate(in))
	}
	for i, f := range first {
		assert.NotEmpty(t, f.Fix, f.Key)
		if i > 0 {
			assert.GreaterOrEqual(t, first[i-1].Severity, f.Severity)
		}
	}
	assert.Equal(t, SeverityError, first[0].Severity)
	assert.Equal(t, SeverityInfo, first[len(first)-1].Severity)
}

func TestMinSeverityFilter(t *testing.T) {
	in := Input{Skills: []*skill.Skill{
		{Name: "a", Description: "short", Tags: []string{"x"}},
		described("b", ""),
	}}

	all := Run(in, Options{})
	require.Len(t, all.Visible(), 2)

	warnings := Run(in, Options{MinSeverity: SeverityWarning})
	require.Len(t, warnings.Visible(), 1)
	assert.Equal(t, CategoryEmptyDescription, warnings.Visible()[0].Category)
}

func TestUnusedIgnores(t *testing.T) {
	report := Run(Input{Skills: []*skill.Skill{described("a", "")}}, Options{Ignore: []string{"orphaned:*"}})
	assert.Equal(t, []string{"orphaned:*"}, report.UnusedIgnores)
}

func TestEmptyLibrary(t *testing.T) {
	report := Run(Input{}, Options{})
	assert.Empty(t, report.Findings)
	assert.Equal(t, 0, report.ExitCode())
}

func TestParseSeverity(t *testing.T) {
	for input, want := range map[string]Severity{"error": SeverityError, "WARN": SeverityWarning, "warning": SeverityWarning, "info": SeverityInfo} {
		got, err := ParseSeverity(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}
