package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/colx/pkg/collection"
)

var (
	// ErrDuplicateKey is returned when two entries resolve to the same key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidEntry is returned for entries that cannot become nodes.
	ErrInvalidEntry = errors.New("invalid entry")
)

// headerSuffix names the header node generated from a section title.
const headerSuffix = "/header"

// Build turns doc into a committed, validated collection. Entries without
// an id get a key from their position ("2.0" is the first child of the
// third top-level entry). A section title becomes a leading header child.
func Build(doc *Document) (*collection.Collection, error) {
	if doc == nil {
		return collection.Empty(), nil
	}
	b := &builder{b: collection.NewBuilder(), seen: map[collection.Key]string{}}
	first, last, err := b.chain(doc.Items, nil, "")
	if err != nil {
		return nil, err
	}
	c, err := b.b.Commit(first, last)
	if err != nil {
		return nil, err
	}
	if err := collection.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

type builder struct {
	b *collection.Builder
	// seen maps each key to the entry path that claimed it.
	seen map[collection.Key]string
}

// chain adds entries as one sibling chain under parent and returns the
// chain's boundary keys.
func (b *builder) chain(entries []Entry, parent *collection.Node, path string) (collection.Key, collection.Key, error) {
	level := 0
	var parentKey collection.Key
	if parent != nil {
		level = parent.Level + 1
		parentKey = parent.Key
	}

	var nodes []*collection.Node
	if parent != nil && parent.Type == collection.TypeSection && parent.TextValue != "" {
		h := collection.NewNode(collection.TypeHeader, parent.Key+headerSuffix)
		h.Level = level
		h.ParentKey = parentKey
		h.TextValue = parent.TextValue
		h.Label = parent.TextValue
		if err := b.claim(h.Key, path+"/title"); err != nil {
			return "", "", err
		}
		nodes = append(nodes, h)
	}

	for i, e := range entries {
		p := strconv.Itoa(i)
		if path != "" {
			p = path + "." + p
		}
		n, err := b.node(e, p)
		if err != nil {
			return "", "", err
		}
		n.Level = level
		n.ParentKey = parentKey
		nodes = append(nodes, n)
		if len(e.Items) > 0 || n.Type == collection.TypeSection {
			if n.FirstChildKey, n.LastChildKey, err = b.chain(e.Items, n, p); err != nil {
				return "", "", err
			}
			n.HasChildNodes = n.FirstChildKey != ""
		}
	}

	for i, n := range nodes {
		n.Index = i
		if i > 0 {
			n.PrevKey = nodes[i-1].Key
			nodes[i-1].NextKey = n.Key
		}
	}
	for _, n := range nodes {
		if err := b.b.AddNode(n); err != nil {
			return "", "", err
		}
	}
	if len(nodes) == 0 {
		return "", "", nil
	}
	return nodes[0].Key, nodes[len(nodes)-1].Key, nil
}

func (b *builder) node(e Entry, path string) (*collection.Node, error) {
	typ, err := entryType(e)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", path, err)
	}

	key := collection.Key(e.ID)
	if key == "" {
		key = collection.Key(path)
	}
	if err := b.claim(key, path); err != nil {
		return nil, err
	}

	n := collection.NewNode(typ, key)
	n.Value = e.Value
	switch typ {
	case collection.TypeSeparator:
		if len(e.Items) > 0 || e.Text != "" {
			return nil, fmt.Errorf("entry %s: separator cannot carry text or items: %w", path, ErrInvalidEntry)
		}
	case collection.TypeSection:
		n.TextValue = e.Title
		n.Label = e.Title
	default:
		n.TextValue = e.Text
		n.Label = e.Label
		if n.Label == "" {
			n.Label = e.Text
		}
	}
	return n, nil
}

func (b *builder) claim(key collection.Key, path string) error {
	if prev, ok := b.seen[key]; ok {
		return fmt.Errorf("key %q used by entries %s and %s: %w", key, prev, path, ErrDuplicateKey)
	}
	b.seen[key] = path
	return nil
}

func entryType(e Entry) (collection.NodeType, error) {
	switch t := collection.NodeType(strings.ToLower(strings.TrimSpace(e.Type))); t {
	case "":
		if e.Title != "" {
			return collection.TypeSection, nil
		}
		return collection.TypeItem, nil
	case collection.TypeHeader:
		if len(e.Items) > 0 {
			return "", fmt.Errorf("header cannot have items: %w", ErrInvalidEntry)
		}
		return t, nil
	default:
		return t, nil
	}
}

// Export converts c back into a document. Headers generated from a
// section title fold back into the title; a section whose generated header
// was filtered out is exported without a title, so building the result
// again yields the same nodes.
func Export(c *collection.Collection) *Document {
	doc := &Document{Items: []Entry{}}
	for n := range c.All() {
		doc.Items = append(doc.Items, exportNode(c, n))
	}
	return doc
}

func exportNode(c *collection.Collection, n *collection.Node) Entry {
	e := Entry{ID: string(n.Key), Value: n.Value}
	switch n.Type {
	case collection.TypeSection:
		e.Type = string(n.Type)
		if h := c.Item(n.Key + headerSuffix); h != nil && h.ParentKey == n.Key {
			e.Title = n.TextValue
		}
	case collection.TypeSeparator:
		e.Type = string(n.Type)
	default:
		if n.Type != collection.TypeItem {
			e.Type = string(n.Type)
		}
		e.Text = n.TextValue
		if n.Label != n.TextValue {
			e.Label = n.Label
		}
	}
	for child := range c.Children(n.Key) {
		if n.Type == collection.TypeSection && child.Type == collection.TypeHeader && child.Key == n.Key+headerSuffix {
			continue
		}
		e.Items = append(e.Items, exportNode(c, child))
	}
	return e
}
