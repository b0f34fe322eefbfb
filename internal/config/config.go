// Package config loads loadout.yaml / loadout.hcl and resolves its paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	EnvConfig = "LOADOUT_CONFIG"
	AppDir    = "loadout"
)

// ProjectSubdirs are the skill discovery directories each agent tool reads
// inside a project.
var ProjectSubdirs = []string{
	filepath.Join(".claude", "skills"),
	filepath.Join(".opencode", "skills"),
	filepath.Join(".agents", "skills"),
}

var candidateNames = []string{"loadout.yaml", "loadout.yml", "loadout.hcl"}

var ErrNoConfig = errors.New("no loadout config found")

// Config is the complete loadout configuration.
type Config struct {
	Sources  Sources             `yaml:"sources"`
	Global   Global              `yaml:"global"`
	Projects map[string]*Project `yaml:"projects,omitempty"`
	Check    Check               `yaml:"check,omitempty"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-"`
}

// Sources lists skill source directories in priority order.
type Sources struct {
	Skills []string `yaml:"skills"`
}

// Global holds the skills linked into every global target.
type Global struct {
	Targets []string `yaml:"targets"`
	Skills  []string `yaml:"skills"`
}

// Project holds per-project skills. Inherit defaults to true.
type Project struct {
	Skills  []string `yaml:"skills"`
	Inherit *bool    `yaml:"inherit,omitempty"`
}

// Check configures the health-check engine.
type Check struct {
	Ignore []string `yaml:"ignore,omitempty"`
}

// Inherits reports whether global skills are linked into the project too.
func (p *Project) Inherits() bool {
	return p == nil || p.Inherit == nil || *p.Inherit
}

// Load resolves the config path and loads it. An explicit path wins over the
// environment and XDG conventions.
func Load(explicit string) (*Config, error) {
	path, err := ResolvePath(explicit)
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the config at path, choosing the format by extension.
func LoadFrom(path string) (*Config, error) {
	var cfg *Config
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = parseHCL(path)
	case ".yaml", ".yml", "":
		cfg, err = parseYAML(path)
	default:
		return nil, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	cfg.Path = path
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func parseYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolvePath finds the config file:
//  1. explicit (the --config flag)
//  2. $LOADOUT_CONFIG
//  3. $XDG_CONFIG_HOME/loadout/loadout.{yaml,yml,hcl}
//  4. ~/.config/loadout/loadout.{yaml,yml,hcl}
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return ExpandTilde(explicit)
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
		return ExpandTilde(env)
	}

	var dirs []string
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, AppDir))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dirs = append(dirs, filepath.Join(home, ".config", AppDir))

	for _, dir := range dirs {
		for _, name := range candidateNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNoConfig, strings.Join(dirs, ", "))
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func (c *Config) expandPaths() error {
	for i, source := range c.Sources.Skills {
		expanded, err := ExpandTilde(source)
		if err != nil {
			return err
		}
		c.Sources.Skills[i] = expanded
	}
	for i, target := range c.Global.Targets {
		expanded, err := ExpandTilde(target)
		if err != nil {
			return err
		}
		c.Global.Targets[i] = expanded
	}
	if len(c.Projects) > 0 {
		projects := make(map[string]*Project, len(c.Projects))
		for path, project := range c.Projects {
			expanded, err := ExpandTilde(path)
			if err != nil {
				return err
			}
			if project == nil {
				project = &Project{}
			}
			projects[expanded] = project
		}
		c.Projects = projects
	}
	return nil
}

// Validate rejects configuration the rest of the tool cannot act on.
func (c *Config) Validate() error {
	for _, pattern := range c.Check.Ignore {
		if err := ValidateIgnorePattern(pattern); err != nil {
			return err
		}
	}
	return nil
}

// ValidateIgnorePattern accepts an exact finding key or a key prefix
// followed by a single trailing "*", optionally negated with a leading "!".
func ValidateIgnorePattern(pattern string) error {
	if strings.TrimSpace(strings.TrimPrefix(pattern, "!")) == "" {
		return fmt.Errorf("empty check.ignore pattern")
	}
	if strings.ContainsAny(pattern, " \t\n") {
		return fmt.Errorf("check.ignore pattern %q contains whitespace", pattern)
	}
	if i := strings.Index(pattern, "*"); i != -1 && i != len(pattern)-1 {
		return fmt.Errorf("check.ignore pattern %q: '*' is only allowed as a trailing wildcard", pattern)
	}
	if strings.ContainsAny(pattern, "?[]{}\\") {
		return fmt.Errorf("check.ignore pattern %q contains unsupported characters", pattern)
	}
	return nil
}

// ProjectPaths returns configured project paths, sorted.
func (c *Config) ProjectPaths() []string {
	paths := make([]string, 0, len(c.Projects))
	for path := range c.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ProjectSkills returns the deduplicated, sorted skills active in a project,
// including inherited global skills.
func (c *Config) ProjectSkills(path string) []string {
	project := c.Projects[path]
	var names []string
	if project.Inherits() {
		names = append(names, c.Global.Skills...)
	}
	if project != nil {
		names = append(names, project.Skills...)
	}
	return sortedUnique(names)
}

// ActiveSkills returns every skill named by any scope.
func (c *Config) ActiveSkills() map[string]bool {
	active := make(map[string]bool)
	for _, name := range c.Global.Skills {
		active[name] = true
	}
	for _, project := range c.Projects {
		if project == nil {
			continue
		}
		for _, name := range project.Skills {
			active[name] = true
		}
	}
	return active
}

// ProjectTargets returns the agent discovery directories inside a project.
func ProjectTargets(projectPath string) []string {
	targets := make([]string, 0, len(ProjectSubdirs))
	for _, subdir := range ProjectSubdirs {
		targets = append(targets, filepath.Join(projectPath, subdir))
	}
	return targets
}

// AllTargets returns every global and project target directory.
func (c *Config) AllTargets() []string {
	targets := append([]string{}, c.Global.Targets...)
	for _, path := range c.ProjectPaths() {
		targets = append(targets, ProjectTargets(path)...)
	}
	return targets
}

func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
