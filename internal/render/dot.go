package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/loadout-dev/loadout/internal/graph"
)

// DOT writes a Graphviz digraph. Roots are blue, leaves green and bridges
// orange; missing skills are dashed red. Pipeline edges are dashed blue and
// labelled with their pipelines.
func DOT(w io.Writer, g *graph.Graph, topo *graph.Topology) error {
	var b strings.Builder
	b.WriteString("digraph SkillGraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, node := range g.SortedNodes() {
		if node.Missing {
			fmt.Fprintf(&b, "  %s [style=\"rounded,dashed\", color=red, fontcolor=red, label=%s];\n",
				quote(node.Name), quote(node.Name+" (missing)"))
			continue
		}
		fmt.Fprintf(&b, "  %s [fillcolor=%s, style=\"rounded,filled\"];\n", quote(node.Name), nodeColor(topo, node.Name))
	}

	edges := g.Edges()
	if len(edges) > 0 {
		b.WriteString("\n")
	}
	for _, edge := range edges {
		if edge.Kind == graph.KindPipeline {
			fmt.Fprintf(&b, "  %s -> %s [style=dashed, color=blue, label=%s];\n",
				quote(edge.Source), quote(edge.Target), quote(edgeLabel(edge)))
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s;\n", quote(edge.Source), quote(edge.Target))
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodeColor(topo *graph.Topology, name string) string {
	switch {
	case topo.IsRoot(name):
		return "lightblue"
	case topo.IsLeaf(name):
		return "lightgreen"
	case topo.IsBridge(name):
		return "orange"
	default:
		return "white"
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
