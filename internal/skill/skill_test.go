package skill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterMinimal(t *testing.T) {
	content := "---\nname: my-skill\ndescription: A test skill\n---\n\n# My Skill\nContent here."

	fm, body, bodyLine, err := ParseFrontmatter(content)
	require.NoError(t, err)
	require.Equal(t, "my-skill", fm.Name)
	require.Equal(t, "A test skill", fm.Description)
	require.Equal(t, "\n# My Skill\nContent here.", body)
	require.Equal(t, 5, bodyLine)
}

func TestParseFrontmatterTagsAndPipeline(t *testing.T) {
	content := `---
name: compile
description: Compile the final draft
tags: [writing, publish]
pipeline:
  pub:
    stage: build
    order: 3
    after: [spine]
    before: [ship]
---
body`

	fm, _, _, err := ParseFrontmatter(content)
	require.NoError(t, err)
	require.Equal(t, []string{"writing", "publish"}, fm.Tags)
	require.Equal(t, Stage{Stage: "build", Order: 3, After: []string{"spine"}, Before: []string{"ship"}}, fm.Pipeline["pub"])
}

func TestParseFrontmatterErrors(t *testing.T) {
	_, _, _, err := ParseFrontmatter("# no frontmatter")
	require.ErrorIs(t, err, ErrMissingFrontmatter)

	_, _, _, err = ParseFrontmatter("---\nname: ok\n")
	require.ErrorIs(t, err, ErrMissingFrontmatter)

	_, _, _, err = ParseFrontmatter("---\nname: [unclosed\n---\n")
	require.Error(t, err)

	_, _, _, err = ParseFrontmatter("---\nname: Bad_Name\ndescription: x\n---\n")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "name", verr.Field)
}

func TestParseFrontmatterAllowsEmptyDescription(t *testing.T) {
	fm, _, _, err := ParseFrontmatter("---\nname: quiet\ndescription: \"\"\n---\n")
	require.NoError(t, err)
	require.Error(t, fm.Validate())
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"a", true},
		{"skill-review", true},
		{"v2-api", true},
		{"", false},
		{"-lead", false},
		{"trail-", false},
		{"double--dash", false},
		{"Upper", false},
		{string(make([]byte, 65)), false},
	}
	for _, tc := range cases {
		err := ValidateName(tc.name)
		if tc.valid {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestDiscoverFirstMatchWinsAndSkipsHidden(t *testing.T) {
	primary := t.TempDir()
	secondary := t.TempDir()

	writeSkill(t, filepath.Join(primary, "test-skill"), "test-skill", "Primary copy")
	writeSkill(t, filepath.Join(primary, "category", "nested-skill"), "nested-skill", "Nested skill")
	writeSkill(t, filepath.Join(primary, ".hidden", "secret"), "secret", "Hidden skill")
	writeSkill(t, filepath.Join(secondary, "test-skill"), "test-skill", "Secondary copy")
	writeSkill(t, filepath.Join(secondary, "other-skill"), "other-skill", "Only in secondary")
	writeFile(t, filepath.Join(secondary, "broken", FileName), "no frontmatter")

	lib, err := Discover(context.Background(), []string{primary, secondary, "/nonexistent/source"})
	require.NoError(t, err)

	byName := Map(lib.Skills)
	require.Len(t, lib.Skills, 3)
	require.Equal(t, "Primary copy", byName["test-skill"].Description)
	require.Contains(t, byName, "nested-skill")
	require.Contains(t, byName, "other-skill")
	require.NotContains(t, byName, "secret")

	require.Len(t, lib.Shadowed, 1)
	require.Equal(t, secondary, lib.Shadowed[0].Source)

	require.Len(t, lib.Problems, 1)
	require.ErrorIs(t, lib.Problems[0].Err, ErrMissingFrontmatter)
}

func TestResolve(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeSkill(t, filepath.Join(first, "shared"), "shared", "From first")
	writeSkill(t, filepath.Join(second, "shared"), "shared", "From second")
	writeSkill(t, filepath.Join(second, "deep", "only-second"), "only-second", "Deep")

	s, err := Resolve([]string{first, second}, "shared")
	require.NoError(t, err)
	require.Equal(t, "From first", s.Description)

	s, err = Resolve([]string{first, second}, "only-second")
	require.NoError(t, err)
	require.Equal(t, "only-second", s.DirName())

	_, err = Resolve([]string{first}, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSkillMetadataHelpers(t *testing.T) {
	s := &Skill{Name: "a", Tags: []string{"x"}, Pipelines: map[string]Stage{"p2": {}, "p1": {}}}
	require.True(t, s.HasMetadata())
	require.True(t, s.HasTag("x"))
	require.False(t, s.HasTag("y"))
	require.True(t, s.InPipeline("p1"))
	require.Equal(t, []string{"p1", "p2"}, s.PipelineNames())

	bare := &Skill{Name: "b"}
	require.False(t, bare.HasMetadata())
}

func writeSkill(t *testing.T, dir, name, description string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, FileName), "---\nname: "+name+"\ndescription: "+description+"\n---\n\n# "+name+"\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
