// Package linker places skills into agent discovery directories as
// symlinks and keeps track of which directories it owns.
//
// A target directory is managed once it contains a MarkerFile. Only
// managed directories are ever cleaned, and only symlinks inside them are
// removed.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/loadout-dev/loadout/internal/config"
	"github.com/loadout-dev/loadout/internal/fileutil"
)

// MarkerFile marks a target directory as managed by loadout.
const MarkerFile = ".managed-by-loadout"

var ErrUnmanagedTarget = errors.New("target exists and is not managed by loadout")

// Action describes what Link did, or would do in a dry run.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Placement is one skill that should be linked into one target directory.
type Placement struct {
	Skill  string
	Target string
	Scope  string // "global" or the project path
}

// LinkPath returns where the symlink for the placement lives.
func (p Placement) LinkPath() string {
	return filepath.Join(p.Target, p.Skill)
}

// Plan returns every placement the configuration asks for: global skills
// into each global target, and each project's skills (plus inherited global
// skills) into each of its agent directories.
func Plan(cfg *config.Config) []Placement {
	var out []Placement
	for _, target := range cfg.Global.Targets {
		for _, name := range fileutil.DedupeStrings(cfg.Global.Skills) {
			out = append(out, Placement{Skill: name, Target: target, Scope: "global"})
		}
	}
	for _, project := range cfg.ProjectPaths() {
		names := cfg.ProjectSkills(project)
		for _, target := range config.ProjectTargets(project) {
			for _, name := range names {
				out = append(out, Placement{Skill: name, Target: target, Scope: project})
			}
		}
	}
	return out
}

// Link symlinks skillPath into targetDir under name, creating the directory
// and its marker. An existing symlink pointing elsewhere is replaced; any
// other existing entry fails with ErrUnmanagedTarget. With dryRun nothing
// is written but the returned action is accurate.
func Link(name, skillPath, targetDir string, dryRun bool) (Action, error) {
	linkPath := filepath.Join(targetDir, name)

	action := ActionCreated
	info, err := os.Lstat(linkPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		current, err := os.Readlink(linkPath)
		if err != nil {
			return "", fmt.Errorf("failed to read symlink %s: %w", linkPath, err)
		}
		if current == skillPath {
			return ActionUnchanged, nil
		}
		action = ActionUpdated
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrUnmanagedTarget, linkPath)
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to inspect %s: %w", linkPath, err)
	}

	if dryRun {
		return action, nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}
	if err := fileutil.WriteIfMissing(filepath.Join(targetDir, MarkerFile), nil, 0o644); err != nil {
		return "", fmt.Errorf("failed to create marker in %s: %w", targetDir, err)
	}
	if action == ActionUpdated {
		if err := os.Remove(linkPath); err != nil {
			return "", fmt.Errorf("failed to remove stale symlink %s: %w", linkPath, err)
		}
	}
	if err := os.Symlink(skillPath, linkPath); err != nil {
		return "", fmt.Errorf("failed to create symlink %s: %w", linkPath, err)
	}
	return action, nil
}

// Clean removes every symlink from a managed target directory, then the
// marker, then the directory itself if nothing else is left. Unmanaged
// directories are left alone. It returns the removed (or, with dryRun,
// removable) link paths.
func Clean(targetDir string, dryRun bool) ([]string, error) {
	if !IsManaged(targetDir) {
		return nil, nil
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", targetDir, err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(targetDir, entry.Name())
		if !dryRun {
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("failed to remove symlink %s: %w", path, err)
			}
		}
		removed = append(removed, path)
	}
	if dryRun {
		return removed, nil
	}

	if err := os.Remove(filepath.Join(targetDir, MarkerFile)); err != nil && !os.IsNotExist(err) {
		return removed, fmt.Errorf("failed to remove marker in %s: %w", targetDir, err)
	}
	remaining, err := os.ReadDir(targetDir)
	if err != nil {
		return removed, err
	}
	if len(remaining) == 0 {
		if err := os.Remove(targetDir); err != nil {
			return removed, fmt.Errorf("failed to remove empty directory %s: %w", targetDir, err)
		}
	}
	return removed, nil
}

// IsManaged reports whether targetDir carries the loadout marker.
func IsManaged(targetDir string) bool {
	_, err := os.Stat(filepath.Join(targetDir, MarkerFile))
	return err == nil
}

// IssueKind classifies a problem found in a target directory.
type IssueKind string

const (
	IssueBrokenSymlink IssueKind = "broken-symlink"
	IssueUnmanaged     IssueKind = "unmanaged"
)

// Issue is a problem with one entry of a target directory.
type Issue struct {
	Kind   IssueKind
	Name   string
	Path   string
	Target string // symlink destination, for broken symlinks
}

// Inspect reports symlinks whose destination no longer exists and real
// directories that occupy a skill slot without being managed. A missing
// target directory has no issues.
func Inspect(targetDir string) ([]Issue, error) {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", targetDir, err)
	}

	var issues []Issue
	for _, entry := range entries {
		path := filepath.Join(targetDir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			if _, err := os.Stat(path); err != nil {
				dest, _ := os.Readlink(path)
				issues = append(issues, Issue{Kind: IssueBrokenSymlink, Name: entry.Name(), Path: path, Target: dest})
			}
			continue
		}
		if !entry.IsDir() {
			continue
		}
		if !IsManaged(path) {
			issues = append(issues, Issue{Kind: IssueUnmanaged, Name: entry.Name(), Path: path})
		}
	}
	return issues, nil
}

// InspectAll runs Inspect over every target, sorted by path.
func InspectAll(targets []string) ([]Issue, error) {
	var issues []Issue
	for _, target := range fileutil.DedupeStrings(targets) {
		found, err := Inspect(target)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues, nil
}
