// Package render projects a skill graph into DOT, plain text, JSON and
// Mermaid. Every format is a pure projection of the same filtered graph.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/loadout-dev/loadout/internal/graph"
)

// Format selects a renderer.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatDOT, FormatText, FormatJSON, FormatMermaid}

// ParseFormat validates a --format value.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return FormatDOT, nil
	}
	for _, f := range Formats {
		if f == normalized {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unsupported format %q (expected %s)", value, strings.Join(names, ", "))
}

// Render filters g, analyzes the result and writes it in format.
func Render(w io.Writer, format Format, g *graph.Graph, filter graph.Filter) error {
	sub := g.Filter(filter)
	topo := graph.Analyze(sub)
	switch format {
	case FormatDOT:
		return DOT(w, sub, topo)
	case FormatText:
		return Text(w, sub, topo)
	case FormatJSON:
		return JSON(w, sub, topo)
	case FormatMermaid:
		return Mermaid(w, sub, topo)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// edgeLabel summarizes why a pipeline edge exists.
func edgeLabel(edge *graph.Edge) string {
	if edge.Kind != graph.KindPipeline || len(edge.Pipelines) == 0 {
		return string(edge.Kind)
	}
	return "pipeline: " + strings.Join(edge.Pipelines, ", ")
}
