// Package scaffold creates new skills from a template.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/skill"
)

var ErrNoSource = errors.New("no skill source directories configured")

// Options customize the generated frontmatter.
type Options struct {
	Description string
	Tags        []string
}

type header struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

// New writes name/SKILL.md under sourceDir and returns its path. It refuses
// invalid names and never overwrites an existing skill directory.
func New(sourceDir, name string, opts Options) (string, error) {
	if sourceDir == "" {
		return "", ErrNoSource
	}
	if err := skill.ValidateName(name); err != nil {
		return "", err
	}

	dir := filepath.Join(sourceDir, name)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("skill directory already exists: %s", dir)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to inspect %s: %w", dir, err)
	}

	content, err := BuildSkillContent(name, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, skill.FileName)
	if err := fileutil.WriteNew(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// BuildSkillContent renders the SKILL.md template. An empty description
// becomes a placeholder that `loadout check` reports until it is replaced.
func BuildSkillContent(name string, opts Options) (string, error) {
	description := strings.TrimSpace(opts.Description)
	if description == "" {
		description = "Description here"
	}
	if err := skill.ValidateDescription(description); err != nil {
		return "", err
	}

	fm, err := yaml.Marshal(header{Name: name, Description: description, Tags: opts.Tags})
	if err != nil {
		return "", fmt.Errorf("failed to render frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(fileutil.EnsureTrailingNewline(string(fm)))
	if len(opts.Tags) == 0 {
		b.WriteString("# tags: []\n")
	}
	b.WriteString("# pipeline:\n")
	b.WriteString("#   <name>:\n")
	b.WriteString("#     stage: <stage>\n")
	b.WriteString("#     order: 1\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", name)
	b.WriteString(body)
	return b.String(), nil
}

const body = `## Instructions

Write the instructions for the agent here: when to use this skill, the
steps to follow, and the rules that always apply.

## Related skills

| Skill | Purpose |
|-------|---------|
`
