package render

import (
	"io"

	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/graph"
)

// Document is the JSON form of a graph.
type Document struct {
	Nodes    []NodeDoc     `json:"nodes"`
	Edges    []*graph.Edge `json:"edges"`
	Clusters [][]string    `json:"clusters"`
	Roots    []string      `json:"roots"`
	Leaves   []string      `json:"leaves"`
}

// NodeDoc describes one node. Cluster indexes Document.Clusters.
type NodeDoc struct {
	ID        string   `json:"id"`
	Missing   bool     `json:"missing,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Pipelines []string `json:"pipelines,omitempty"`
	IsRoot    bool     `json:"is_root"`
	IsLeaf    bool     `json:"is_leaf"`
	IsBridge  bool     `json:"is_bridge"`
	Cluster   int      `json:"cluster"`
}

// NewDocument builds the JSON document for g.
func NewDocument(g *graph.Graph, topo *graph.Topology) *Document {
	doc := &Document{
		Nodes:    make([]NodeDoc, 0, len(g.Nodes)),
		Edges:    g.Edges(),
		Clusters: topo.Clusters,
		Roots:    topo.Roots,
		Leaves:   topo.Leaves,
	}
	for _, node := range g.SortedNodes() {
		nd := NodeDoc{
			ID:       node.Name,
			Missing:  node.Missing,
			IsRoot:   topo.IsRoot(node.Name),
			IsLeaf:   topo.IsLeaf(node.Name),
			IsBridge: topo.IsBridge(node.Name),
			Cluster:  topo.ClusterOf(node.Name),
		}
		if node.Skill != nil {
			nd.Tags = node.Skill.Tags
			nd.Pipelines = node.Skill.PipelineNames()
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}

// JSON writes the graph as an indented JSON document.
func JSON(w io.Writer, g *graph.Graph, topo *graph.Topology) error {
	return fileutil.PrintJSON(w, NewDocument(g, topo))
}
