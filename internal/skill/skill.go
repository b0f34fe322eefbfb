// Package skill loads SKILL.md documents from source directories.
//
// A skill is a directory holding a SKILL.md file: YAML frontmatter between
// two "---" lines followed by free-form Markdown instructions.
//
//	---
//	name: blog-edit
//	description: Edit long-form blog posts for structure and voice.
//	tags: [writing]
//	pipeline:
//	  publish:
//	    stage: edit
//	    order: 2
//	    after: [story-spine]
//	---
//
// Skills are discovered from every configured source in priority order;
// the first skill found with a given name wins.
package skill

import (
	"path/filepath"
	"sort"
)

// FileName is the document every skill directory must contain.
const FileName = "SKILL.md"

// Stage declares a skill's position inside one named pipeline.
type Stage struct {
	Stage  string   `yaml:"stage" json:"stage"`
	Order  int      `yaml:"order" json:"order"`
	After  []string `yaml:"after,omitempty" json:"after,omitempty"`
	Before []string `yaml:"before,omitempty" json:"before,omitempty"`
}

// Skill is an immutable, fully loaded skill record.
type Skill struct {
	Name        string
	Description string

	// Body is the Markdown content after the frontmatter. BodyLine is the
	// 1-indexed line of SKILL.md where Body starts.
	Body     string
	BodyLine int

	Tags      []string
	Pipelines map[string]Stage

	// Path is the skill directory, File the SKILL.md inside it, and Source
	// the configured source root it was discovered under.
	Path   string
	File   string
	Source string

	Frontmatter Frontmatter
}

// DirName returns the base name of the skill directory.
func (s *Skill) DirName() string {
	return filepath.Base(s.Path)
}

// HasTags reports whether the skill declares at least one tag.
func (s *Skill) HasTags() bool {
	return len(s.Tags) > 0
}

// HasTag reports whether the skill carries tag.
func (s *Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// InPipeline reports whether the skill declares a stage in pipeline.
func (s *Skill) InPipeline(pipeline string) bool {
	_, ok := s.Pipelines[pipeline]
	return ok
}

// HasMetadata reports whether the skill has tags or pipeline membership.
func (s *Skill) HasMetadata() bool {
	return s.HasTags() || len(s.Pipelines) > 0
}

// PipelineNames returns the pipelines the skill belongs to, sorted.
func (s *Skill) PipelineNames() []string {
	names := make([]string, 0, len(s.Pipelines))
	for name := range s.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns the sorted names of skills.
func Names(skills []*Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Map indexes skills by name. Earlier entries win on duplicates.
func Map(skills []*Skill) map[string]*Skill {
	out := make(map[string]*Skill, len(skills))
	for _, s := range skills {
		if _, exists := out[s.Name]; exists {
			continue
		}
		out[s.Name] = s
	}
	return out
}
