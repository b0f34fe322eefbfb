package skill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/loadout-dev/loadout/internal/logging"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("skill not found in any source directory")

const readConcurrency = 8

// Problem records a SKILL.md that could not be loaded.
type Problem struct {
	Path string
	Err  error
}

// Library is the result of discovering skills across all sources.
type Library struct {
	// Skills holds the winning skill for each name, in source priority order.
	Skills []*Skill

	// Shadowed holds skills hidden by an earlier skill with the same name.
	Shadowed []*Skill

	Problems []Problem
}

// Load reads and parses one SKILL.md file. source is the configured root the
// file was found under and may be empty.
func Load(file, source string) (*Skill, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	fm, body, bodyLine, err := ParseFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(fm.Tags))
	for _, tag := range fm.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	pipelines := make(map[string]Stage, len(fm.Pipeline))
	for name, stage := range fm.Pipeline {
		pipelines[name] = stage
	}

	return &Skill{
		Name:        fm.Name,
		Description: strings.TrimSpace(fm.Description),
		Body:        body,
		BodyLine:    bodyLine,
		Tags:        tags,
		Pipelines:   pipelines,
		Path:        filepath.Dir(file),
		File:        file,
		Source:      source,
		Frontmatter: fm,
	}, nil
}

// FindFiles returns every SKILL.md below source, skipping hidden
// directories. A missing source yields no files.
func FindFiles(source string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", source)
	}

	matches, err := doublestar.Glob(os.DirFS(source), "**/"+FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if isHidden(match) {
			continue
		}
		files = append(files, filepath.Join(source, filepath.FromSlash(match)))
	}
	sort.Strings(files)
	return files, nil
}

// Discover loads every skill under sources. Files are read concurrently but
// resolution is deterministic: sources are ranked in the order given and
// paths within a source lexically.
func Discover(ctx context.Context, sources []string) (*Library, error) {
	logger := logging.FromContext(ctx)

	type candidate struct {
		file   string
		source string
	}
	var candidates []candidate
	for _, source := range sources {
		files, err := FindFiles(source)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logger.Debug("no skills in source", "source", source)
		}
		for _, file := range files {
			candidates = append(candidates, candidate{file: file, source: source})
		}
	}

	loaded := make([]*Skill, len(candidates))
	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loaded[i], errs[i] = Load(c.file, c.source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lib := &Library{}
	seen := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		if errs[i] != nil {
			logger.Warn("failed to load skill", "path", c.file, "error", errs[i])
			lib.Problems = append(lib.Problems, Problem{Path: c.file, Err: errs[i]})
			continue
		}
		s := loaded[i]
		if seen[s.Name] {
			logger.Debug("skill shadowed by earlier source", "skill", s.Name, "path", s.File)
			lib.Shadowed = append(lib.Shadowed, s)
			continue
		}
		seen[s.Name] = true
		lib.Skills = append(lib.Skills, s)
	}
	logger.Debug("discovered skills", "count", len(lib.Skills), "problems", len(lib.Problems))
	return lib, nil
}

// Resolve returns the first skill whose directory is named name, searching
// sources in order.
func Resolve(sources []string, name string) (*Skill, error) {
	for _, source := range sources {
		files, err := FindFiles(source)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if filepath.Base(filepath.Dir(file)) != name {
				continue
			}
			return Load(file, source)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func isHidden(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
