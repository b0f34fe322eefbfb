package graph

import (
	"reflect"
	"testing"

	"github.com/loadout-dev/loadout/internal/crossref"
	"github.com/loadout-dev/loadout/internal/skill"
)

func TestBuildDeduplicatesDetectionsOfOnePair(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "blog-edit", BodyLine: 5, Body: "Use `story-spine` first.\n\n## Related skills\n\n| Skill | Why |\n|---|---|\n| `story-spine` | structure |\n"},
		{Name: "story-spine"},
	}

	g := FromSkills(skills)

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d: %+v", len(edges), edges)
	}
	edge := edges[0]
	if edge.Source != "blog-edit" || edge.Target != "story-spine" || edge.Kind != KindCrossRef {
		t.Fatalf("unexpected edge %+v", edge)
	}
	want := []string{"backtick", "phrase", "table"}
	if !reflect.DeepEqual(edge.Methods, want) {
		t.Fatalf("expected methods %v, got %v", want, edge.Methods)
	}
	if edge.Lines[0] != 5 {
		t.Fatalf("expected first detection on file line 5, got %v", edge.Lines)
	}
}

func TestBuildKeepsOneEdgePerKind(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "spine", Pipelines: map[string]skill.Stage{"pub": {Order: 1, Before: []string{"compile"}}}},
		{Name: "compile", Pipelines: map[string]skill.Stage{"pub": {Order: 2, After: []string{"spine"}}}},
	}
	refs := []crossref.Reference{
		{Source: "spine", Target: "compile", Method: crossref.MethodXMLTag, Line: 3},
	}

	g := Build(skills, refs)

	if len(g.Edges()) != 2 {
		t.Fatalf("expected crossref and pipeline edge, got %+v", g.Edges())
	}
	pipe, ok := g.Edge("spine", "compile", KindPipeline)
	if !ok {
		t.Fatalf("missing pipeline edge")
	}
	if !reflect.DeepEqual(pipe.Methods, []string{MethodAfter, MethodBefore}) {
		t.Fatalf("expected after+before methods, got %v", pipe.Methods)
	}
	if !reflect.DeepEqual(pipe.Pipelines, []string{"pub"}) {
		t.Fatalf("expected pipeline pub, got %v", pipe.Pipelines)
	}
	if _, ok := g.Edge("spine", "compile", KindCrossRef); !ok {
		t.Fatalf("missing crossref edge")
	}
	if got := g.Nodes["spine"].OutEdges; !reflect.DeepEqual(got, []string{"compile"}) {
		t.Fatalf("expected adjacency collapsed across kinds, got %v", got)
	}
}

func TestBuildMaterializesMissingTargets(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "editor", Body: `<see ref="ghost-writer">`},
		{Name: "compile", Pipelines: map[string]skill.Stage{"pub": {After: []string{"phantom"}, Before: []string{"ship"}}}},
	}

	g := FromSkills(skills)

	for _, name := range []string{"ghost-writer", "phantom", "ship"} {
		node, ok := g.Nodes[name]
		if !ok || !node.Missing {
			t.Fatalf("expected missing placeholder for %s", name)
		}
		if len(node.OutEdges) != 0 {
			t.Fatalf("missing node %s must not be a source", name)
		}
	}
	if _, ok := g.Edge("editor", "ghost-writer", KindCrossRef); !ok {
		t.Fatalf("expected dangling crossref edge")
	}
	if _, ok := g.Edge("compile", "ship", KindPipeline); !ok {
		t.Fatalf("expected dangling pipeline edge")
	}
	if len(g.Nodes["phantom"].InEdges) != 0 {
		t.Fatalf("after on an unknown skill must not create an edge")
	}
	if got := g.MissingNames(); !reflect.DeepEqual(got, []string{"ghost-writer", "phantom", "ship"}) {
		t.Fatalf("unexpected missing names %v", got)
	}
	if g.KnownCount() != 2 {
		t.Fatalf("expected 2 known nodes, got %d", g.KnownCount())
	}
}

func TestBuildDropsSelfReferencesAndShadowedDuplicates(t *testing.T) {
	first := &skill.Skill{Name: "a", Pipelines: map[string]skill.Stage{"p": {After: []string{"a"}, Before: []string{"a"}}}}
	dup := &skill.Skill{Name: "a", Body: "use b"}
	g := Build([]*skill.Skill{first, dup, {Name: "b"}}, []crossref.Reference{{Source: "a", Target: "a"}})

	if len(g.Edges()) != 0 {
		t.Fatalf("expected no edges, got %+v", g.Edges())
	}
	if g.Nodes["a"].Skill != first {
		t.Fatalf("expected first skill to own the node")
	}
}

func TestAnalyzeTwoClusters(t *testing.T) {
	refs := []crossref.Reference{
		{Source: "a", Target: "b"}, {Source: "b", Target: "a"},
		{Source: "c", Target: "d"}, {Source: "d", Target: "c"},
	}
	g := Build(namedSkills("a", "b", "c", "d"), refs)

	topo := Analyze(g)

	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(topo.Clusters, want) {
		t.Fatalf("expected clusters %v, got %v", want, topo.Clusters)
	}
	if len(topo.Roots) != 0 || len(topo.Leaves) != 0 {
		t.Fatalf("mutual references leave no roots or leaves, got %v / %v", topo.Roots, topo.Leaves)
	}
}

func TestAnalyzeClustersPartitionEveryNode(t *testing.T) {
	refs := []crossref.Reference{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "e", Target: "ghost"},
	}
	g := Build(namedSkills("a", "b", "c", "d", "e"), refs)

	topo := Analyze(g)

	seen := map[string]int{}
	for _, cluster := range topo.Clusters {
		for _, name := range cluster {
			seen[name]++
		}
	}
	if len(seen) != len(g.Nodes) {
		t.Fatalf("expected %d nodes across clusters, got %d", len(g.Nodes), len(seen))
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("node %s appears in %d clusters", name, count)
		}
	}
	want := [][]string{{"a", "b", "c"}, {"e", "ghost"}, {"d"}}
	if !reflect.DeepEqual(topo.Clusters, want) {
		t.Fatalf("expected clusters %v, got %v", want, topo.Clusters)
	}
}

func TestAnalyzeRootsAndLeaves(t *testing.T) {
	refs := []crossref.Reference{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "ghost"},
	}
	g := Build(namedSkills("a", "b", "c", "lonely"), refs)

	topo := Analyze(g)

	if !reflect.DeepEqual(topo.Roots, []string{"a", "lonely"}) {
		t.Fatalf("unexpected roots %v", topo.Roots)
	}
	if !reflect.DeepEqual(topo.Leaves, []string{"lonely"}) {
		t.Fatalf("unexpected leaves %v", topo.Leaves)
	}
	if !reflect.DeepEqual(topo.Bridges, []string{"b", "c"}) {
		t.Fatalf("unexpected bridges %v", topo.Bridges)
	}
	if !topo.IsRoot("lonely") || !topo.IsLeaf("lonely") {
		t.Fatalf("isolated skill must be both root and leaf")
	}
	if topo.IsRoot("ghost") || topo.IsLeaf("ghost") {
		t.Fatalf("missing nodes are never roots or leaves")
	}
	if topo.ClusterOf("ghost") != topo.ClusterOf("a") {
		t.Fatalf("missing node must share the cluster of its referrer")
	}
}

func TestAnalyzeEmptyGraph(t *testing.T) {
	topo := Analyze(New())
	if len(topo.Clusters) != 0 || len(topo.Roots) != 0 {
		t.Fatalf("expected empty topology, got %+v", topo)
	}
}

func TestFilterByTagAndPipeline(t *testing.T) {
	skills := []*skill.Skill{
		{Name: "a", Tags: []string{"writing"}, Pipelines: map[string]skill.Stage{"pub": {}}},
		{Name: "b", Tags: []string{"writing"}},
		{Name: "c", Pipelines: map[string]skill.Stage{"pub": {}}},
	}
	refs := []crossref.Reference{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "ghost"},
	}
	g := Build(skills, refs)

	writing := g.Filter(Filter{Tag: "writing"})
	if !reflect.DeepEqual(writing.Names(), []string{"a", "b"}) {
		t.Fatalf("unexpected tag-filtered nodes %v", writing.Names())
	}
	if len(writing.Edges()) != 1 || writing.Edges()[0].Target != "b" {
		t.Fatalf("unexpected tag-filtered edges %+v", writing.Edges())
	}

	pub := g.Filter(Filter{Pipeline: "pub"})
	if !reflect.DeepEqual(pub.Names(), []string{"a", "c"}) {
		t.Fatalf("unexpected pipeline-filtered nodes %v", pub.Names())
	}
	if !reflect.DeepEqual(pub.Nodes["a"].OutEdges, []string{"c"}) {
		t.Fatalf("unexpected adjacency %v", pub.Nodes["a"].OutEdges)
	}

	if g.Filter(Filter{}) != g {
		t.Fatalf("zero filter should return the graph unchanged")
	}
	if len(g.Edges()) != 3 {
		t.Fatalf("filtering must not mutate the source graph")
	}
}

func namedSkills(names ...string) []*skill.Skill {
	skills := make([]*skill.Skill, 0, len(names))
	for _, name := range names {
		skills = append(skills, &skill.Skill{Name: name})
	}
	return skills
}
