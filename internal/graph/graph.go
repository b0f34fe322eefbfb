// Package graph builds the directed skill reference graph and analyzes its
// topology.
package graph

import (
	"sort"

	"github.com/loadout-dev/loadout/internal/skill"
)

// Kind distinguishes inferred body references from declared pipeline order.
type Kind string

const (
	KindCrossRef Kind = "crossref"
	KindPipeline Kind = "pipeline"
)

// Pipeline edge methods.
const (
	MethodAfter  = "after"
	MethodBefore = "before"
)

// Node is a skill in the graph. Missing nodes are placeholders for names
// that were referenced but never discovered; they have no Skill and never
// have outgoing edges.
type Node struct {
	Name     string
	Missing  bool
	Skill    *skill.Skill
	OutEdges []string // names this node references
	InEdges  []string // names referencing this node
}

// EdgeKey identifies an edge. A pair of nodes carries at most one edge per
// kind.
type EdgeKey struct {
	Source string
	Target string
	Kind   Kind
}

// Edge is a deduplicated reference. Methods and Lines keep every detection
// that collapsed into it; Pipelines names the pipelines a pipeline edge was
// declared in.
type Edge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Kind      Kind     `json:"kind"`
	Methods   []string `json:"methods"`
	Lines     []int    `json:"lines,omitempty"`
	Pipelines []string `json:"pipelines,omitempty"`
}

// Key returns the edge's dedup key.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Kind: e.Kind}
}

// Graph is the skill reference multigraph.
type Graph struct {
	Nodes map[string]*Node
	edges map[EdgeKey]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		edges: make(map[EdgeKey]*Edge),
	}
}

// AddSkill adds a known skill node, upgrading a missing placeholder with the
// same name.
func (g *Graph) AddSkill(s *skill.Skill) *Node {
	if node, ok := g.Nodes[s.Name]; ok {
		node.Missing = false
		node.Skill = s
		return node
	}
	node := &Node{Name: s.Name, Skill: s}
	g.Nodes[s.Name] = node
	return node
}

// ensureNode returns the node for name, creating a missing placeholder.
func (g *Graph) ensureNode(name string) *Node {
	if node, ok := g.Nodes[name]; ok {
		return node
	}
	node := &Node{Name: name, Missing: true}
	g.Nodes[name] = node
	return node
}

// addEdge records one detection. Self references and edges from unknown
// sources are ignored.
func (g *Graph) addEdge(source, target string, kind Kind, method string, line int, pipeline string) {
	if source == target {
		return
	}
	src, ok := g.Nodes[source]
	if !ok || src.Missing {
		return
	}
	dst := g.ensureNode(target)

	key := EdgeKey{Source: source, Target: target, Kind: kind}
	edge, ok := g.edges[key]
	if !ok {
		edge = &Edge{Source: source, Target: target, Kind: kind}
		g.edges[key] = edge
		src.OutEdges = append(src.OutEdges, target)
		dst.InEdges = append(dst.InEdges, source)
	}
	edge.Methods = append(edge.Methods, method)
	if line > 0 {
		edge.Lines = append(edge.Lines, line)
	}
	if pipeline != "" {
		edge.Pipelines = append(edge.Pipelines, pipeline)
	}
}

// Edge returns the edge for key, if any.
func (g *Graph) Edge(source, target string, kind Kind) (*Edge, bool) {
	edge, ok := g.edges[EdgeKey{Source: source, Target: target, Kind: kind}]
	return edge, ok
}

// Edges returns every edge sorted by source, target and kind.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	sortEdges(edges)
	return edges
}

// EdgesFrom returns the edges leaving name, sorted.
func (g *Graph) EdgesFrom(name string) []*Edge {
	var edges []*Edge
	for _, edge := range g.edges {
		if edge.Source == name {
			edges = append(edges, edge)
		}
	}
	sortEdges(edges)
	return edges
}

// Names returns every node name, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedNodes returns every node ordered by name.
func (g *Graph) SortedNodes() []*Node {
	names := g.Names()
	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, g.Nodes[name])
	}
	return nodes
}

// MissingNames returns the names of placeholder nodes, sorted.
func (g *Graph) MissingNames() []string {
	var names []string
	for name, node := range g.Nodes {
		if node.Missing {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// KnownCount returns the number of non-missing nodes.
func (g *Graph) KnownCount() int {
	n := 0
	for _, node := range g.Nodes {
		if !node.Missing {
			n++
		}
	}
	return n
}

func (g *Graph) normalizeEdges() {
	for _, node := range g.Nodes {
		node.OutEdges = dedupeAndSort(node.OutEdges)
		node.InEdges = dedupeAndSort(node.InEdges)
	}
	for _, edge := range g.edges {
		edge.Methods = dedupeAndSort(edge.Methods)
		edge.Pipelines = dedupeAndSort(edge.Pipelines)
		edge.Lines = dedupeInts(edge.Lines)
	}
}

func sortEdges(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Kind < edges[j].Kind
	})
}

func dedupeAndSort(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func dedupeInts(values []int) []int {
	if len(values) == 0 {
		return values
	}
	seen := make(map[int]bool, len(values))
	out := make([]int, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Ints(out)
	return out
}
