// Package crossref finds mentions of other skills inside a SKILL.md body.
//
// Four independent rules are applied and their results unioned:
//
//   - table: rows of a pipe table under a "Related skills" or
//     "Integration" heading
//   - backtick: an inline code span equal to a skill name
//   - phrase: "invoke the X skill", "load X first", "use X"
//   - xml-tag: an explicit <see ref="x"> marker
//
// The heuristic rules only report names from the known set. The xml-tag
// rule is a declaration, so its targets are kept even when unknown and
// later surface as dangling edges.
package crossref

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Method identifies the rule that detected a reference.
type Method string

const (
	MethodTable    Method = "table"
	MethodBacktick Method = "backtick"
	MethodPhrase   Method = "phrase"
	MethodXMLTag   Method = "xml-tag"
)

// Reference is one detection of Target inside the body of Source. Line is
// the 1-indexed line of the SKILL.md file.
type Reference struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Method Method `json:"method"`
	Line   int    `json:"line"`
}

const phraseWindow = 3

var (
	backtickSpan = regexp.MustCompile("`([^`\n]+)`")
	seeRef       = regexp.MustCompile(`<see\s+ref="([a-z0-9]+(?:-[a-z0-9]+)*)"\s*/?>`)

	phraseTriggers = map[string]bool{"invoke": true, "load": true, "use": true}
	articles       = map[string]bool{"the": true, "a": true, "an": true}
)

// Extractor matches bodies against a fixed set of known skill names. It
// holds a markdown parser and is not safe for concurrent use.
type Extractor struct {
	known   map[string]bool
	outline *outliner
}

// NewExtractor returns an Extractor for the given skill names.
func NewExtractor(known []string) *Extractor {
	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	return &Extractor{known: set, outline: newOutliner()}
}

// Extract is a convenience wrapper around a one-off Extractor.
func Extract(source, body string, firstLine int, known []string) []Reference {
	return NewExtractor(known).Extract(source, body, firstLine)
}

// Extract returns the references found in body, which starts on line
// firstLine of its file. Self-references are dropped. The result is sorted
// by line, target and method, with duplicates removed.
func (e *Extractor) Extract(source, body string, firstLine int) []Reference {
	if firstLine < 1 {
		firstLine = 1
	}
	offset := firstLine - 1

	seen := make(map[Reference]bool)
	var refs []Reference
	add := func(target string, method Method, line int) {
		if target == source {
			return
		}
		ref := Reference{Source: source, Target: target, Method: method, Line: line + offset}
		if seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	for _, row := range e.outline.relatedRows([]byte(body)) {
		for _, token := range tokenize(row.text) {
			if e.known[token] {
				add(token, MethodTable, row.line)
			}
		}
	}

	for i, line := range strings.Split(body, "\n") {
		lineNo := i + 1
		for _, m := range backtickSpan.FindAllStringSubmatch(line, -1) {
			if name := m[1]; e.known[name] {
				add(name, MethodBacktick, lineNo)
			}
		}
		for _, name := range e.phraseTargets(line) {
			add(name, MethodPhrase, lineNo)
		}
		for _, m := range seeRef.FindAllStringSubmatch(line, -1) {
			add(m[1], MethodXMLTag, lineNo)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Line != refs[j].Line {
			return refs[i].Line < refs[j].Line
		}
		if refs[i].Target != refs[j].Target {
			return refs[i].Target < refs[j].Target
		}
		return refs[i].Method < refs[j].Method
	})
	return refs
}

// phraseTargets returns known names appearing within phraseWindow tokens
// after a trigger word. Articles do not count towards the window.
func (e *Extractor) phraseTargets(line string) []string {
	tokens := tokenize(line)
	var out []string
	for i, token := range tokens {
		if !phraseTriggers[strings.ToLower(token)] {
			continue
		}
		counted := 0
		for j := i + 1; j < len(tokens) && counted < phraseWindow; j++ {
			next := tokens[j]
			if articles[strings.ToLower(next)] {
				continue
			}
			counted++
			if e.known[next] {
				out = append(out, next)
			}
		}
	}
	return out
}

// tokenize splits text into runs of letters, digits, hyphens and
// underscores. Markdown punctuation such as backticks and pipes separates
// tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
	})
}

// Targets returns the distinct targets of refs, sorted.
func Targets(refs []Reference) []string {
	seen := make(map[string]bool, len(refs))
	var out []string
	for _, ref := range refs {
		if seen[ref.Target] {
			continue
		}
		seen[ref.Target] = true
		out = append(out, ref.Target)
	}
	sort.Strings(out)
	return out
}
