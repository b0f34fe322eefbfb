package check

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks findings. Higher is worse.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Label is the upper-case heading used in text output.
func (s Severity) Label() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity accepts error, warning (or warn) and info, case-insensitive.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info", "":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q (expected error, warning or info)", value)
	}
}

// Categories.
const (
	CategoryDangling               = "dangling"
	CategoryOrphaned               = "orphaned"
	CategoryPipelineGap            = "pipeline-gap"
	CategoryPipelineMissing        = "pipeline-missing"
	CategoryPipelineCycle          = "pipeline-cycle"
	CategoryNoMetadata             = "no-metadata"
	CategoryEmptyDescription       = "empty-description"
	CategoryPlaceholderDescription = "placeholder-description"
	CategoryNameMismatch           = "name-mismatch"
	CategoryInvalidSkill           = "invalid-skill"
	CategoryBrokenSymlink          = "broken-symlink"
	CategoryUnmanaged              = "unmanaged"
)

// Finding is one diagnostic. Key is "category:subject[0]:subject[1]..." and
// is what check.ignore patterns match against.
type Finding struct {
	Category   string   `json:"category"`
	Severity   Severity `json:"severity"`
	Subject    []string `json:"subject"`
	Message    string   `json:"message"`
	Fix        string   `json:"fix"`
	Key        string   `json:"key"`
	Path       string   `json:"path,omitempty"`
	Suppressed bool     `json:"suppressed,omitempty"`
	IgnoredBy  string   `json:"ignored_by,omitempty"`
}

func newFinding(category string, severity Severity, subject []string, message, fix string) Finding {
	return Finding{
		Category: category,
		Severity: severity,
		Subject:  subject,
		Message:  message,
		Fix:      fix,
		Key:      Key(category, subject...),
	}
}

func (f Finding) withPath(path string) Finding {
	f.Path = path
	return f
}

// Key builds a suppression key.
func Key(category string, subject ...string) string {
	return strings.Join(append([]string{category}, subject...), ":")
}

// Sort orders findings by severity (errors first), category and subject.
func Sort(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if c := compareSubjects(a.Subject, b.Subject); c != 0 {
			return c < 0
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Message < b.Message
	})
}

func compareSubjects(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
