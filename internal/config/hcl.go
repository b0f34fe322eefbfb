package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// hclFile mirrors Config in HCL block syntax:
//
//	sources {
//	  skills = ["~/.config/loadout/skills"]
//	}
//	global {
//	  targets = ["~/.claude/skills"]
//	  skills  = ["blog-edit"]
//	}
//	project "~/src/site" {
//	  skills  = ["compile"]
//	  inherit = false
//	}
//	check {
//	  ignore = ["orphaned:*"]
//	}
type hclFile struct {
	Sources  *hclSources   `hcl:"sources,block"`
	Global   *hclGlobal    `hcl:"global,block"`
	Projects []*hclProject `hcl:"project,block"`
	Check    *hclCheck     `hcl:"check,block"`
}

type hclSources struct {
	Skills []string `hcl:"skills,optional"`
}

type hclGlobal struct {
	Targets []string `hcl:"targets,optional"`
	Skills  []string `hcl:"skills,optional"`
}

type hclProject struct {
	Path    string   `hcl:"path,label"`
	Skills  []string `hcl:"skills,optional"`
	Inherit *bool    `hcl:"inherit,optional"`
}

type hclCheck struct {
	Ignore []string `hcl:"ignore,optional"`
}

func parseHCL(path string) (*Config, error) {
	var file hclFile
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := &Config{}
	if file.Sources != nil {
		cfg.Sources.Skills = file.Sources.Skills
	}
	if file.Global != nil {
		cfg.Global.Targets = file.Global.Targets
		cfg.Global.Skills = file.Global.Skills
	}
	if file.Check != nil {
		cfg.Check.Ignore = file.Check.Ignore
	}
	for _, p := range file.Projects {
		if cfg.Projects == nil {
			cfg.Projects = make(map[string]*Project, len(file.Projects))
		}
		if _, dup := cfg.Projects[p.Path]; dup {
			return nil, fmt.Errorf("failed to parse config file %s: duplicate project %q", path, p.Path)
		}
		cfg.Projects[p.Path] = &Project{Skills: p.Skills, Inherit: p.Inherit}
	}
	return cfg, nil
}
