package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/pkg/collection"
)

// MermaidOptions controls Mermaid diagram output formatting.
type MermaidOptions struct {
	// Direction sets the diagram direction: TD (top-down), LR (left-right),
	// BT (bottom-top), RL (right-left). Default is TD.
	Direction string
	// Limit windows the top-level nodes.
	Limit limiter.Config
}

// mermaidBuilder tracks state during diagram generation.
type mermaidBuilder struct {
	lines []string
	ids   map[collection.Key]string
}

// FormatAsMermaid renders the link structure of c as a Mermaid flowchart:
// solid edges from parent to child, dotted edges along next-sibling links.
func FormatAsMermaid(c *collection.Collection, opts MermaidOptions) string {
	if opts.Direction == "" {
		opts.Direction = "TD"
	}
	b := &mermaidBuilder{
		lines: []string{fmt.Sprintf("graph %s", opts.Direction)},
		ids:   map[collection.Key]string{},
	}

	var top []*collection.Node
	for n := range c.All() {
		top = append(top, n)
	}
	top = limiter.Apply(opts.Limit, top)
	for _, n := range top {
		b.addSubtree(c, n)
	}
	b.addSiblingEdges(top)
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *mermaidBuilder) id(key collection.Key) string {
	if id, ok := b.ids[key]; ok {
		return id
	}
	id := fmt.Sprintf("n%d", len(b.ids))
	b.ids[key] = id
	return id
}

func (b *mermaidBuilder) addSubtree(c *collection.Collection, n *collection.Node) {
	b.lines = append(b.lines, fmt.Sprintf("    %s%s", b.id(n.Key), shape(n)))

	var kids []*collection.Node
	for kid := range c.Children(n.Key) {
		b.addSubtree(c, kid)
		b.lines = append(b.lines, fmt.Sprintf("    %s --> %s", b.id(n.Key), b.id(kid.Key)))
		kids = append(kids, kid)
	}
	b.addSiblingEdges(kids)
}

func (b *mermaidBuilder) addSiblingEdges(nodes []*collection.Node) {
	for i := 1; i < len(nodes); i++ {
		b.lines = append(b.lines, fmt.Sprintf("    %s -.-> %s", b.id(nodes[i-1].Key), b.id(nodes[i].Key)))
	}
}

// shape picks a node shape by type: sections are subroutines, headers are
// stadiums, separators are circles, items are boxes.
func shape(n *collection.Node) string {
	text := escapeMermaid(label(n) + " [" + string(n.Key) + "]")
	switch n.Type {
	case collection.TypeSection:
		return fmt.Sprintf("[[%q]]", text)
	case collection.TypeHeader:
		return fmt.Sprintf("([%q])", text)
	case collection.TypeSeparator:
		return fmt.Sprintf("((%q))", text)
	}
	return fmt.Sprintf("[%q]", text)
}

// escapeMermaid makes a label safe inside a quoted Mermaid node.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}
