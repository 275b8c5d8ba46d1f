// Package formatter renders collections for the terminal and for export.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/pkg/collection"
	"github.com/oakwood-commons/colx/pkg/loader"
)

// Format names an output format.
type Format string

const (
	FormatTree    Format = "tree"
	FormatList    Format = "list"
	FormatKeys    Format = "keys"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMermaid Format = "mermaid"
)

// ValidFormats contains all valid output format values.
var ValidFormats = []Format{FormatTree, FormatList, FormatKeys, FormatJSON, FormatYAML, FormatTOML, FormatMermaid}

// ValidateFormat returns an error if the format is invalid. Empty means
// the default (tree).
func ValidateFormat(f string) error {
	if f == "" {
		return nil
	}
	for _, valid := range ValidFormats {
		if Format(f) == valid {
			return nil
		}
	}
	names := make([]string, len(ValidFormats))
	for i, v := range ValidFormats {
		names[i] = string(v)
	}
	return fmt.Errorf("invalid output format %q: valid values are %s", f, strings.Join(names, ", "))
}

var (
	defaultHeaderColor    = lipgloss.Color("12")
	defaultKeyColor       = lipgloss.Color("14")
	defaultTextColor      = lipgloss.Color("252")
	defaultSeparatorColor = lipgloss.Color("240")
	defaultFocusColor     = lipgloss.Color("205")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	textStyle      lipgloss.Style
	separatorStyle lipgloss.Style
	focusStyle     lipgloss.Style
)

// Colors controls the rendered colors. Nil fields fall back to the
// defaults (ANSI 256 codes).
type Colors struct {
	Header    color.Color
	Key       color.Color
	Text      color.Color
	Separator color.Color
	Focus     color.Color
}

func applyTheme(tc Colors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(pick(tc.Header, defaultHeaderColor))
	keyStyle = lipgloss.NewStyle().Foreground(pick(tc.Key, defaultKeyColor))
	textStyle = lipgloss.NewStyle().Foreground(pick(tc.Text, defaultTextColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.Separator, defaultSeparatorColor))
	focusStyle = lipgloss.NewStyle().Bold(true).Foreground(pick(tc.Focus, defaultFocusColor))
}

// SetTheme overrides the global styles. Callers can pass zero-valued
// fields to fall back to formatter defaults.
func SetTheme(tc Colors) {
	applyTheme(tc)
}

//nolint:gochecknoinits // initialize default theme for package consumers
func init() {
	applyTheme(Colors{})
}

// Options selects and tunes an output format.
type Options struct {
	Format   Format
	NoColor  bool
	ShowKeys bool
	// KeyWidth is the key column width for list output (0 = fit longest key).
	KeyWidth int
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// Title labels the tree root.
	Title string
	// Focus highlights one node in list output.
	Focus collection.Key
	// Limit windows the rendered records: nodes in document order for list
	// and keys, top-level entries otherwise.
	Limit limiter.Config
}

// Render formats c according to opts.Format.
func Render(c *collection.Collection, opts Options) (string, error) {
	if err := opts.Limit.Validate(); err != nil {
		return "", err
	}
	switch opts.Format {
	case FormatTree, "":
		return FormatAsTree(c, TreeOptions{
			ShowKeys: opts.ShowKeys, MaxDepth: opts.MaxDepth, NoColor: opts.NoColor,
			Title: opts.Title, Limit: opts.Limit,
		}), nil
	case FormatList:
		return FormatAsList(c, ListOptions{
			ShowKeys: opts.ShowKeys, KeyWidth: opts.KeyWidth, NoColor: opts.NoColor,
			Focus: opts.Focus, Limit: opts.Limit,
		}), nil
	case FormatKeys:
		return FormatAsKeys(c, opts.Limit), nil
	case FormatMermaid:
		return FormatAsMermaid(c, MermaidOptions{Limit: opts.Limit}), nil
	}

	doc := loader.Export(c)
	doc.Name = opts.Title
	doc.Items = limiter.Apply(opts.Limit, doc.Items)
	switch opts.Format {
	case FormatJSON:
		return FormatAsJSON(doc)
	case FormatYAML:
		return FormatAsYAML(doc, YAMLFormatOptions{LiteralBlockStrings: true})
	case FormatTOML:
		return FormatAsTOML(doc)
	}
	return "", ValidateFormat(string(opts.Format))
}

// FormatAsKeys lists node keys in document order, one per line.
func FormatAsKeys(c *collection.Collection, limit limiter.Config) string {
	var b strings.Builder
	for _, n := range limiter.Apply(limit, walk(c)) {
		b.WriteString(string(n.Key))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAsJSON renders an exported document as indented JSON.
func FormatAsJSON(doc *loader.Document) (string, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// FormatAsTOML renders an exported document as TOML.
func FormatAsTOML(doc *loader.Document) (string, error) {
	out, err := toml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func walk(c *collection.Collection) []*collection.Node {
	var nodes []*collection.Node
	for n := range c.Walk() {
		nodes = append(nodes, n)
	}
	return nodes
}

// label returns the display text of a node.
func label(n *collection.Node) string {
	switch {
	case n.Label != "":
		return n.Label
	case n.TextValue != "":
		return n.TextValue
	case n.Type == collection.TypeSection:
		return "(section)"
	}
	return "(" + string(n.Type) + ")"
}

// redundantHeader reports a header repeating its section's title, which
// tree and list output already show on the section itself.
func redundantHeader(c *collection.Collection, n *collection.Node) bool {
	if n.Type != collection.TypeHeader {
		return false
	}
	parent := c.Item(n.ParentKey)
	return parent != nil && parent.Type == collection.TypeSection && label(parent) == label(n)
}

// truncate shortens s to maxWidth display cells, adding an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func render(style lipgloss.Style, s string, noColor bool) string {
	if noColor {
		return s
	}
	return style.Render(s)
}
