package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/loadout-dev/loadout/internal/graph"
)

// Mermaid writes a flowchart. Cross-references are solid arrows, pipeline
// edges dotted arrows labelled "pipeline", and missing skills use the
// "missing" class.
func Mermaid(w io.Writer, g *graph.Graph, _ *graph.Topology) error {
	var b strings.Builder
	b.WriteString("graph LR\n")

	missing := false
	for _, node := range g.SortedNodes() {
		if node.Missing {
			missing = true
			fmt.Fprintf(&b, "  %s[\"%s (missing)\"]:::missing\n", mermaidID(node.Name), mermaidLabel(node.Name))
			continue
		}
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidID(node.Name), mermaidLabel(node.Name))
	}

	for _, edge := range g.Edges() {
		arrow := "-->"
		if edge.Kind == graph.KindPipeline {
			arrow = "-.->|pipeline|"
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mermaidID(edge.Source), arrow, mermaidID(edge.Target))
	}

	if missing {
		b.WriteString("  classDef missing stroke:#d33,stroke-dasharray:5 5\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// mermaidID maps a name to a node id. Missing skills come from unvalidated
// frontmatter, so anything outside [A-Za-z0-9_] becomes "_" and the "n_"
// prefix keeps ids clear of keywords such as "end".
func mermaidID(name string) string {
	var b strings.Builder
	b.WriteString("n_")
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func mermaidLabel(name string) string {
	return strings.ReplaceAll(name, `"`, "#quot;")
}
