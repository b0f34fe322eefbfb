package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Topology is the structural summary of a graph.
//
// Clusters partition every node, missing placeholders and isolated
// singletons included. Roots, Leaves and Bridges only ever name known
// skills: roots have no incoming edge, leaves no outgoing edge, and
// bridges have both. A fully isolated skill is a root and a leaf.
type Topology struct {
	Clusters [][]string `json:"clusters"`
	Roots    []string   `json:"roots"`
	Leaves   []string   `json:"leaves"`
	Bridges  []string   `json:"bridges"`
}

// Analyze computes the topology of g. Edge kinds are not distinguished.
func Analyze(g *Graph) *Topology {
	t := &Topology{
		Clusters: clusters(g),
		Roots:    []string{},
		Leaves:   []string{},
		Bridges:  []string{},
	}
	for _, node := range g.SortedNodes() {
		if node.Missing {
			continue
		}
		in, out := len(node.InEdges), len(node.OutEdges)
		if in == 0 {
			t.Roots = append(t.Roots, node.Name)
		}
		if out == 0 {
			t.Leaves = append(t.Leaves, node.Name)
		}
		if in > 0 && out > 0 {
			t.Bridges = append(t.Bridges, node.Name)
		}
	}
	return t
}

// clusters returns the weakly connected components of g. Members are
// sorted by name; clusters by size, largest first, then by first member.
func clusters(g *Graph) [][]string {
	names := g.Names()
	ids := make(map[string]int64, len(names))
	dg := simple.NewDirectedGraph()
	for i, name := range names {
		ids[name] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	for _, edge := range g.edges {
		dg.SetEdge(dg.NewEdge(simple.Node(ids[edge.Source]), simple.Node(ids[edge.Target])))
	}

	components := topo.ConnectedComponents(gonum.Undirect{G: dg})
	out := make([][]string, 0, len(components))
	for _, component := range components {
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, names[n.ID()])
		}
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// IsRoot reports whether name is a root.
func (t *Topology) IsRoot(name string) bool { return contains(t.Roots, name) }

// IsLeaf reports whether name is a leaf.
func (t *Topology) IsLeaf(name string) bool { return contains(t.Leaves, name) }

// IsBridge reports whether name is a bridge.
func (t *Topology) IsBridge(name string) bool { return contains(t.Bridges, name) }

// ClusterOf returns the index of the cluster containing name, or -1.
func (t *Topology) ClusterOf(name string) int {
	for i, cluster := range t.Clusters {
		if contains(cluster, name) {
			return i
		}
	}
	return -1
}

func contains(sorted []string, name string) bool {
	i := sort.SearchStrings(sorted, name)
	return i < len(sorted) && sorted[i] == name
}
