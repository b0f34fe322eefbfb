package graph

// Filter selects the skills a render is restricted to. A zero Filter
// selects everything.
type Filter struct {
	Tag      string
	Pipeline string
}

// IsZero reports whether the filter selects every node.
func (f Filter) IsZero() bool {
	return f.Tag == "" && f.Pipeline == ""
}

func (f Filter) match(node *Node) bool {
	if f.IsZero() {
		return true
	}
	if node.Missing || node.Skill == nil {
		return false
	}
	if f.Tag != "" && !node.Skill.HasTag(f.Tag) {
		return false
	}
	if f.Pipeline != "" && !node.Skill.InPipeline(f.Pipeline) {
		return false
	}
	return true
}

// Filter returns the subgraph of nodes matching f. Edges touching a removed
// node are dropped. Missing placeholders have no owning skill, so any
// non-zero filter removes them.
func (g *Graph) Filter(f Filter) *Graph {
	if f.IsZero() {
		return g
	}

	out := New()
	for name, node := range g.Nodes {
		if f.match(node) {
			out.Nodes[name] = &Node{Name: name, Missing: node.Missing, Skill: node.Skill}
		}
	}
	for key, edge := range g.edges {
		src, srcOK := out.Nodes[edge.Source]
		dst, dstOK := out.Nodes[edge.Target]
		if !srcOK || !dstOK {
			continue
		}
		copied := *edge
		out.edges[key] = &copied
		src.OutEdges = append(src.OutEdges, edge.Target)
		dst.InEdges = append(dst.InEdges, edge.Source)
	}
	out.normalizeEdges()
	return out
}
