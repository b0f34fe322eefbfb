// Package pipeline cross-checks the ordering skills declare inside named
// pipelines.
package pipeline

import (
	"sort"

	"github.com/loadout-dev/loadout/internal/skill"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

const (
	FieldAfter  = "after"
	FieldBefore = "before"
)

// Member is one skill's stage inside a pipeline.
type Member struct {
	Skill string      `json:"skill"`
	Stage skill.Stage `json:"stage"`
}

// Pipeline is a named workflow with its members ordered by (order, name).
// Duplicate or non-sequential order values are kept as declared.
type Pipeline struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// Has reports whether name is a member of the pipeline.
func (p *Pipeline) Has(name string) bool {
	_, ok := p.member(name)
	return ok
}

func (p *Pipeline) member(name string) (Member, bool) {
	for _, m := range p.Members {
		if m.Skill == name {
			return m, true
		}
	}
	return Member{}, false
}

// Gap is a one-sided ordering declaration. Skill is the member missing the
// back-reference and Field the list it should add Peer to: when A declares
// after: [B] and B has no before: [A], Skill is B, Peer is A and Field is
// "before".
type Gap struct {
	Pipeline string `json:"pipeline"`
	Skill    string `json:"skill"`
	Peer     string `json:"peer"`
	Field    string `json:"field"`
}

// MissingRef is an after/before entry naming a skill that does not exist.
type MissingRef struct {
	Pipeline string `json:"pipeline"`
	Skill    string `json:"skill"`
	Target   string `json:"target"`
	Field    string `json:"field"`
}

// Cycle is a set of members whose after/before declarations order them
// circularly.
type Cycle struct {
	Pipeline string   `json:"pipeline"`
	Skills   []string `json:"skills"`
}

// Result is the outcome of validating every pipeline.
type Result struct {
	Pipelines []*Pipeline  `json:"pipelines"`
	Gaps      []Gap        `json:"gaps"`
	Missing   []MissingRef `json:"missing"`
	Cycles    []Cycle      `json:"cycles"`
}

// Get returns the pipeline called name.
func (r *Result) Get(name string) (*Pipeline, bool) {
	for _, p := range r.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns the pipeline names, sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Pipelines))
	for _, p := range r.Pipelines {
		names = append(names, p.Name)
	}
	return names
}

// Only returns the subset of the result belonging to pipeline name.
func (r *Result) Only(name string) *Result {
	out := &Result{Gaps: []Gap{}, Missing: []MissingRef{}, Cycles: []Cycle{}}
	for _, p := range r.Pipelines {
		if p.Name == name {
			out.Pipelines = append(out.Pipelines, p)
		}
	}
	for _, g := range r.Gaps {
		if g.Pipeline == name {
			out.Gaps = append(out.Gaps, g)
		}
	}
	for _, m := range r.Missing {
		if m.Pipeline == name {
			out.Missing = append(out.Missing, m)
		}
	}
	for _, c := range r.Cycles {
		if c.Pipeline == name {
			out.Cycles = append(out.Cycles, c)
		}
	}
	return out
}

// Validate groups stage declarations by pipeline and checks them for
// reciprocity, existence and cycles. Only the first skill with a given name
// is considered.
func Validate(skills []*skill.Skill) *Result {
	known := skill.Map(skills)

	byName := make(map[string]*Pipeline)
	for _, s := range skills {
		if known[s.Name] != s {
			continue
		}
		for name, stage := range s.Pipelines {
			p, ok := byName[name]
			if !ok {
				p = &Pipeline{Name: name}
				byName[name] = p
			}
			p.Members = append(p.Members, Member{Skill: s.Name, Stage: stage})
		}
	}

	res := &Result{
		Pipelines: make([]*Pipeline, 0, len(byName)),
		Gaps:      []Gap{},
		Missing:   []MissingRef{},
		Cycles:    []Cycle{},
	}
	for _, p := range byName {
		sort.SliceStable(p.Members, func(i, j int) bool {
			if p.Members[i].Stage.Order != p.Members[j].Stage.Order {
				return p.Members[i].Stage.Order < p.Members[j].Stage.Order
			}
			return p.Members[i].Skill < p.Members[j].Skill
		})
		res.Pipelines = append(res.Pipelines, p)
	}
	sort.Slice(res.Pipelines, func(i, j int) bool {
		return res.Pipelines[i].Name < res.Pipelines[j].Name
	})

	for _, p := range res.Pipelines {
		res.Gaps = append(res.Gaps, gaps(p)...)
		res.Missing = append(res.Missing, missing(p, known)...)
		res.Cycles = append(res.Cycles, cycles(p)...)
	}
	return res
}

func gaps(p *Pipeline) []Gap {
	var out []Gap
	for _, m := range p.Members {
		for _, other := range dedupe(m.Stage.After) {
			peer, ok := p.member(other)
			if !ok || other == m.Skill {
				continue
			}
			if !containsName(peer.Stage.Before, m.Skill) {
				out = append(out, Gap{Pipeline: p.Name, Skill: other, Peer: m.Skill, Field: FieldBefore})
			}
		}
		for _, other := range dedupe(m.Stage.Before) {
			peer, ok := p.member(other)
			if !ok || other == m.Skill {
				continue
			}
			if !containsName(peer.Stage.After, m.Skill) {
				out = append(out, Gap{Pipeline: p.Name, Skill: other, Peer: m.Skill, Field: FieldAfter})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Skill != out[j].Skill {
			return out[i].Skill < out[j].Skill
		}
		if out[i].Peer != out[j].Peer {
			return out[i].Peer < out[j].Peer
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func missing(p *Pipeline, known map[string]*skill.Skill) []MissingRef {
	var out []MissingRef
	for _, m := range p.Members {
		for _, field := range []string{FieldAfter, FieldBefore} {
			names := m.Stage.After
			if field == FieldBefore {
				names = m.Stage.Before
			}
			for _, name := range dedupe(names) {
				if _, ok := known[name]; ok {
					continue
				}
				out = append(out, MissingRef{Pipeline: p.Name, Skill: m.Skill, Target: name, Field: field})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Skill != out[j].Skill {
			return out[i].Skill < out[j].Skill
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// cycles finds strongly connected components of more than one member in
// the pipeline's ordering graph, where an edge X -> Y means X runs first.
func cycles(p *Pipeline) []Cycle {
	ids := make(map[string]int64, len(p.Members))
	names := make([]string, len(p.Members))
	g := simple.NewDirectedGraph()
	for i, m := range p.Members {
		ids[m.Skill] = int64(i)
		names[i] = m.Skill
		g.AddNode(simple.Node(i))
	}
	link := func(from, to string) {
		f, okF := ids[from]
		t, okT := ids[to]
		if !okF || !okT || f == t {
			return
		}
		g.SetEdge(g.NewEdge(simple.Node(f), simple.Node(t)))
	}
	for _, m := range p.Members {
		for _, after := range m.Stage.After {
			link(after, m.Skill)
		}
		for _, before := range m.Stage.Before {
			link(m.Skill, before)
		}
	}

	var out []Cycle
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, names[n.ID()])
		}
		sort.Strings(members)
		out = append(out, Cycle{Pipeline: p.Name, Skills: members})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Skills[0] < out[j].Skills[0] })
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
