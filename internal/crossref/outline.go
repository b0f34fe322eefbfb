package crossref

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
)

var relatedHeadings = []string{"related skill", "integration"}

// tableRow is the raw text of one pipe table body row. line is 1-indexed
// relative to the parsed text.
type tableRow struct {
	line int
	text string
}

// outliner recovers document structure (headings and pipe tables) with the
// tree-sitter markdown block grammar.
type outliner struct {
	parser *sitter.Parser
}

func newOutliner() *outliner {
	p := sitter.NewParser()
	p.SetLanguage(markdown.GetLanguage())
	return &outliner{parser: p}
}

// relatedRows returns the body rows of every pipe table that follows a
// related-skills heading, up to the next heading of any level.
func (o *outliner) relatedRows(content []byte) []tableRow {
	if len(content) == 0 {
		return nil
	}
	if content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}

	tree, err := o.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	defer tree.Close()

	w := &outlineWalker{content: content}
	w.walk(tree.RootNode())
	return w.rows
}

type outlineWalker struct {
	content   []byte
	inRelated bool
	rows      []tableRow
}

func (w *outlineWalker) walk(node *sitter.Node) {
	switch node.Type() {
	case "atx_heading", "setext_heading":
		w.inRelated = isRelatedHeading(node.Content(w.content))
		return
	case "pipe_table_row":
		if w.inRelated {
			w.rows = append(w.rows, tableRow{
				line: int(node.StartPoint().Row) + 1,
				text: node.Content(w.content),
			})
		}
		return
	case "pipe_table_header", "pipe_table_delimiter_row":
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i))
	}
}

func isRelatedHeading(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range relatedHeadings {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
