// Package ignore matches finding keys against configured suppression
// patterns.
package ignore

import (
	"strings"

	"github.com/gobwas/glob"
)

type rule struct {
	pattern string
	negated bool
	glob    glob.Glob
}

// Matcher applies check.ignore patterns with "last rule wins" behavior. A
// pattern matches a key exactly or, with a trailing "*", by prefix. A
// leading "!" re-enables keys matched by an earlier pattern.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from the configured patterns. Blank patterns
// and patterns that fail to compile are skipped; config loading rejects
// them before they get here.
func NewMatcher(patterns []string) *Matcher {
	rules := make([]rule, 0, len(patterns))
	for _, line := range patterns {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// ShouldIgnore reports whether key is suppressed.
func (m *Matcher) ShouldIgnore(key string) bool {
	_, ok := m.Match(key)
	return ok
}

// Match returns the pattern that suppresses key, if any.
func (m *Matcher) Match(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	matched := ""
	ignored := false
	for _, rule := range m.rules {
		if rule.glob.Match(key) {
			ignored = !rule.negated
			matched = rule.pattern
		}
	}
	if !ignored {
		return "", false
	}
	return matched, true
}

// Unused returns the non-negated patterns that match none of keys, in
// configuration order.
func (m *Matcher) Unused(keys []string) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, rule := range m.rules {
		if rule.negated {
			continue
		}
		used := false
		for _, key := range keys {
			if rule.glob.Match(key) {
				used = true
				break
			}
		}
		if !used {
			out = append(out, rule.pattern)
		}
	}
	return out
}

// Len returns the number of active rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return rule{}, false
	}

	parsed := rule{pattern: line}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if line == "" {
		return rule{}, false
	}

	g, err := glob.Compile(line)
	if err != nil {
		return rule{}, false
	}
	parsed.glob = g
	return parsed, true
}
