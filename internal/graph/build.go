package graph

import (
	"github.com/loadout-dev/loadout/internal/crossref"
	"github.com/loadout-dev/loadout/internal/skill"
)

// Build assembles the graph from skills and their extracted references.
//
// Every skill becomes a node. A pipeline "after: [X]" declared by S adds
// the edge X -> S, and "before: [Y]" adds S -> Y. Targets that are not
// known skills become missing placeholder nodes. An "after" naming an
// unknown skill cannot produce an edge because a missing node is never a
// source; the placeholder is still added so it shows up in renders.
func Build(skills []*skill.Skill, refs []crossref.Reference) *Graph {
	g := New()
	for _, s := range skills {
		if _, ok := g.Nodes[s.Name]; ok {
			continue
		}
		g.AddSkill(s)
	}

	for _, ref := range refs {
		g.addEdge(ref.Source, ref.Target, KindCrossRef, string(ref.Method), ref.Line, "")
	}

	for _, s := range skills {
		if g.Nodes[s.Name].Skill != s {
			continue
		}
		for _, pipeline := range s.PipelineNames() {
			stage := s.Pipelines[pipeline]
			for _, after := range stage.After {
				if after == s.Name {
					continue
				}
				if node, ok := g.Nodes[after]; !ok || node.Missing {
					g.ensureNode(after)
					continue
				}
				g.addEdge(after, s.Name, KindPipeline, MethodAfter, 0, pipeline)
			}
			for _, before := range stage.Before {
				g.addEdge(s.Name, before, KindPipeline, MethodBefore, 0, pipeline)
			}
		}
	}

	g.normalizeEdges()
	return g
}

// FromSkills extracts cross-references from every skill body and builds the
// graph.
func FromSkills(skills []*skill.Skill) *Graph {
	return Build(skills, ExtractAll(skills))
}

// ExtractAll runs the reference extractor over every skill body.
func ExtractAll(skills []*skill.Skill) []crossref.Reference {
	extractor := crossref.NewExtractor(skill.Names(skills))
	var refs []crossref.Reference
	for _, s := range skills {
		refs = append(refs, extractor.Extract(s.Name, s.Body, s.BodyLine)...)
	}
	return refs
}
