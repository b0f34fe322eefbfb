package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/loadout-dev/loadout/internal/graph"
)

// Text writes a summary followed by an adjacency listing.
func Text(w io.Writer, g *graph.Graph, topo *graph.Topology) error {
	var b strings.Builder
	edges := g.Edges()

	b.WriteString("# Skill Dependency Graph\n\n")
	fmt.Fprintf(&b, "Skills: %d\n", g.KnownCount())
	fmt.Fprintf(&b, "Missing: %d\n", len(g.MissingNames()))
	fmt.Fprintf(&b, "Edges: %d\n", len(edges))
	fmt.Fprintf(&b, "Clusters: %d\n", len(topo.Clusters))
	fmt.Fprintf(&b, "Roots: %d\n", len(topo.Roots))
	fmt.Fprintf(&b, "Leaves: %d\n", len(topo.Leaves))
	fmt.Fprintf(&b, "Bridges: %d\n\n", len(topo.Bridges))

	b.WriteString("## Dependencies\n\n")
	for _, node := range g.SortedNodes() {
		if node.Missing {
			fmt.Fprintf(&b, "%s: (missing)\n", node.Name)
			continue
		}
		out := g.EdgesFrom(node.Name)
		if len(out) == 0 {
			fmt.Fprintf(&b, "%s: (none)\n", node.Name)
			continue
		}
		targets := make([]string, 0, len(out))
		for _, edge := range out {
			targets = append(targets, describeTarget(g, edge))
		}
		fmt.Fprintf(&b, "%s: %s\n", node.Name, strings.Join(targets, ", "))
	}

	if len(topo.Clusters) > 0 {
		b.WriteString("\n## Clusters\n\n")
		for i, cluster := range topo.Clusters {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(cluster, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeTarget(g *graph.Graph, edge *graph.Edge) string {
	var notes []string
	if edge.Kind == graph.KindPipeline {
		notes = append(notes, edgeLabel(edge))
	} else {
		notes = append(notes, strings.Join(edge.Methods, "+"))
	}
	if node := g.Nodes[edge.Target]; node != nil && node.Missing {
		notes = append(notes, "missing")
	}
	return fmt.Sprintf("%s (%s)", edge.Target, strings.Join(notes, ", "))
}
