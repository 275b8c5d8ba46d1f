package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/pkg/collection"
)

// ListOptions controls list output formatting.
type ListOptions struct {
	NoColor  bool
	ShowKeys bool
	// KeyWidth fixes the key column width; 0 fits the longest key.
	KeyWidth int
	// Focus marks one node with a cursor.
	Focus collection.Key
	// Limit windows the listed nodes.
	Limit limiter.Config
}

// FormatAsList renders c one node per line in document order, indented by
// level. Separators render as a rule.
func FormatAsList(c *collection.Collection, opts ListOptions) string {
	nodes := limiter.Apply(opts.Limit, listed(c))
	if len(nodes) == 0 {
		return ""
	}

	keyWidth := opts.KeyWidth
	if opts.ShowKeys && keyWidth <= 0 {
		for _, n := range nodes {
			keyWidth = max(keyWidth, runewidth.StringWidth(string(n.Key)))
		}
	}

	var b strings.Builder
	for _, n := range nodes {
		focused := opts.Focus != "" && n.Key == opts.Focus
		if focused {
			b.WriteString(render(focusStyle, "> ", opts.NoColor))
		} else {
			b.WriteString("  ")
		}
		if opts.ShowKeys {
			k := runewidth.FillRight(truncate(string(n.Key), keyWidth), keyWidth)
			b.WriteString(render(keyStyle, k, opts.NoColor))
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("  ", n.Level))
		b.WriteString(listText(n, focused, opts.NoColor))
		b.WriteString("\n")
	}
	return b.String()
}

// ListIndex returns the line of key in an unwindowed list, or -1.
func ListIndex(c *collection.Collection, key collection.Key) int {
	for i, n := range listed(c) {
		if n.Key == key {
			return i
		}
	}
	return -1
}

// ListLen returns the number of lines in an unwindowed list.
func ListLen(c *collection.Collection) int {
	return len(listed(c))
}

func listed(c *collection.Collection) []*collection.Node {
	var visible []*collection.Node
	for _, n := range walk(c) {
		if !redundantHeader(c, n) {
			visible = append(visible, n)
		}
	}
	return visible
}

func listText(n *collection.Node, focused, noColor bool) string {
	switch {
	case n.Type == collection.TypeSeparator:
		return render(separatorStyle, separatorRule, noColor)
	case focused:
		return render(focusStyle, label(n), noColor)
	case n.Type == collection.TypeHeader || n.Type == collection.TypeSection:
		return render(headerStyle, label(n), noColor)
	}
	return render(textStyle, label(n), noColor)
}
