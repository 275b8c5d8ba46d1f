package formatter

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/pkg/collection"
)

// separatorRule is how separators appear in tree and list output.
const separatorRule = "────"

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// ShowKeys appends each node's key.
	ShowKeys bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	NoColor  bool
	// Title labels the root; "." when empty.
	Title string
	// Limit windows the top-level nodes.
	Limit limiter.Config
}

// FormatAsTree renders c as an ASCII tree. Sections and items with
// children become branches, headers are styled labels, separators are a
// rule.
func FormatAsTree(c *collection.Collection, opts TreeOptions) string {
	tree := treeprint.New()
	if opts.Title != "" {
		tree = treeprint.NewWithRoot(opts.Title)
	}

	var top []*collection.Node
	for n := range c.All() {
		top = append(top, n)
	}
	for _, n := range limiter.Apply(opts.Limit, top) {
		addTreeNode(tree, c, n, opts, 0)
	}
	return tree.String()
}

func addTreeNode(branch treeprint.Tree, c *collection.Collection, n *collection.Node, opts TreeOptions, depth int) {
	text := treeLabel(n, opts)
	if n.FirstChildKey == "" {
		branch.AddNode(text)
		return
	}
	if opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth {
		branch.AddBranch(text).AddNode("...")
		return
	}
	child := branch.AddBranch(text)
	for kid := range c.Children(n.Key) {
		if redundantHeader(c, kid) {
			continue
		}
		addTreeNode(child, c, kid, opts, depth+1)
	}
}

func treeLabel(n *collection.Node, opts TreeOptions) string {
	var text string
	switch n.Type {
	case collection.TypeSeparator:
		text = render(separatorStyle, separatorRule, opts.NoColor)
	case collection.TypeHeader, collection.TypeSection:
		text = render(headerStyle, label(n), opts.NoColor)
	default:
		text = render(textStyle, label(n), opts.NoColor)
	}
	if opts.ShowKeys {
		text += " " + render(keyStyle, "["+string(n.Key)+"]", opts.NoColor)
	}
	return strings.TrimSpace(text)
}
