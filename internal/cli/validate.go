package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loadout-dev/loadout/internal/skill"
	"github.com/spf13/cobra"
)

// validation is the outcome for one SKILL.md.
type validation struct {
	Name string
	Path string
	Err  error
}

// RunValidate checks frontmatter for every skill in the configured sources,
// every skill under a directory, or one skill by name.
func RunValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var results []validation
	switch {
	case len(args) == 1 && isDir(args[0]):
		fmt.Fprintln(out, headerStyle.Sprintf("Validating skills in: %s", args[0]))
		found, err := validateSource(args[0])
		if err != nil {
			return err
		}
		results = found
	case len(args) == 1:
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headerStyle.Sprintf("Validating skill: %s", args[0]))
		s, err := skill.Resolve(cfg.Sources.Skills, args[0])
		if errors.Is(err, skill.ErrNotFound) {
			return err
		}
		results = append(results, validateLoaded(args[0], s, err))
	default:
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headerStyle.Sprint("Validating all skills from configured sources..."))
		for _, source := range cfg.Sources.Skills {
			found, err := validateSource(source)
			if err != nil {
				return err
			}
			results = append(results, found...)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "  %s %s - %v\n", errorStyle.Sprint(xmark), r.Name, r.Err)
			continue
		}
		fmt.Fprintf(out, "  %s %s %s\n", successStyle.Sprint(checkmark), r.Name, mutedStyle.Sprintf("(%s)", r.Path))
	}

	fmt.Fprintln(out)
	if failed > 0 {
		fmt.Fprintln(out, errorStyle.Sprintf("%s %d errors in %d skills", xmark, failed, len(results)))
		return &ExitError{Code: 1}
	}
	fmt.Fprintln(out, successStyle.Sprintf("%s %d skills validated", checkmark, len(results)))
	return nil
}

func validateSource(source string) ([]validation, error) {
	files, err := skill.FindFiles(source)
	if err != nil {
		return nil, err
	}
	results := make([]validation, 0, len(files))
	for _, file := range files {
		s, err := skill.Load(file, source)
		results = append(results, validateLoaded(filepath.Base(filepath.Dir(file)), s, err))
	}
	return results, nil
}

func validateLoaded(fallbackName string, s *skill.Skill, loadErr error) validation {
	if loadErr != nil {
		return validation{Name: fallbackName, Err: loadErr}
	}
	v := validation{Name: s.Name, Path: s.Path}
	if err := s.Frontmatter.Validate(); err != nil {
		v.Err = err
	} else if s.DirName() != s.Name {
		v.Err = fmt.Errorf("directory %q does not match name %q", s.DirName(), s.Name)
	}
	return v
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
