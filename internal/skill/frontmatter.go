package skill

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	MaxNameLength        = 64
	MaxDescriptionLength = 1024
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var ErrMissingFrontmatter = errors.New("SKILL.md does not contain YAML frontmatter delimiters (---)")

// ValidationError describes a frontmatter field that breaks a constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Frontmatter is the YAML header of a SKILL.md file. Fields other than
// name, description, tags and pipeline are carried for tools that read them
// but are not interpreted here.
type Frontmatter struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Tags        []string         `yaml:"tags,omitempty"`
	Pipeline    map[string]Stage `yaml:"pipeline,omitempty"`

	DisableModelInvocation *bool             `yaml:"disable-model-invocation,omitempty"`
	UserInvocable          *bool             `yaml:"user-invocable,omitempty"`
	AllowedTools           any               `yaml:"allowed-tools,omitempty"`
	Context                string            `yaml:"context,omitempty"`
	Agent                  string            `yaml:"agent,omitempty"`
	Model                  string            `yaml:"model,omitempty"`
	ArgumentHint           string            `yaml:"argument-hint,omitempty"`
	License                string            `yaml:"license,omitempty"`
	Compatibility          string            `yaml:"compatibility,omitempty"`
	Metadata               map[string]string `yaml:"metadata,omitempty"`
}

// ParseFrontmatter splits content into its frontmatter and body. bodyLine is
// the 1-indexed line on which the body starts.
func ParseFrontmatter(content string) (fm Frontmatter, body string, bodyLine int, err error) {
	header, body, bodyLine, err := splitFrontmatter(content)
	if err != nil {
		return Frontmatter{}, "", 0, err
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return Frontmatter{}, "", 0, fmt.Errorf("invalid YAML frontmatter: %w", err)
	}
	fm.Name = strings.TrimSpace(fm.Name)
	if err := ValidateName(fm.Name); err != nil {
		return Frontmatter{}, "", 0, err
	}
	return fm, body, bodyLine, nil
}

// Validate checks every constrained frontmatter field.
func (f Frontmatter) Validate() error {
	if err := ValidateName(f.Name); err != nil {
		return err
	}
	return ValidateDescription(f.Description)
}

// ValidateName enforces the skill name format.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("length %d (must be 1-%d characters)", len(name), MaxNameLength),
		}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("%q must be lowercase alphanumeric words joined by hyphens", name),
		}
	}
	return nil
}

// ValidateDescription enforces the description length bounds.
func ValidateDescription(description string) error {
	n := len(strings.TrimSpace(description))
	if n == 0 || n > MaxDescriptionLength {
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("length %d (must be 1-%d characters)", n, MaxDescriptionLength),
		}
	}
	return nil
}

func splitFrontmatter(content string) (header, body string, bodyLine int, err error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			start = i
			break
		}
	}
	if start == -1 {
		return "", "", 0, ErrMissingFrontmatter
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", "", 0, ErrMissingFrontmatter
	}

	header = strings.Join(lines[start+1:end], "\n")
	body = strings.Join(lines[end+1:], "\n")
	return header, body, end + 2, nil
}
