package collection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// shape describes a node and its children for building test collections.
type shape struct {
	typ  NodeType
	key  Key
	text string
	kids []shape
}

func item(key Key, text string, kids ...shape) shape {
	return shape{typ: TypeItem, key: key, text: text, kids: kids}
}

func section(key Key, kids ...shape) shape {
	return shape{typ: TypeSection, key: key, kids: kids}
}

func header(key Key, text string) shape {
	return shape{typ: TypeHeader, key: key, text: text}
}

func separator(key Key) shape {
	return shape{typ: TypeSeparator, key: key}
}

// buildCollection links the shapes into a committed collection.
func buildCollection(t *testing.T, roots ...shape) *Collection {
	t.Helper()
	b := NewBuilder()
	first, last := addChain(t, b, "", 0, roots)
	c, err := b.Commit(first, last)
	require.NoError(t, err)
	require.NoError(t, Validate(c))
	return c
}

func addChain(t *testing.T, b *Builder, parent Key, level int, shapes []shape) (Key, Key) {
	t.Helper()
	var prev *Node
	for i, s := range shapes {
		n := NewNode(s.typ, s.key)
		n.TextValue = s.text
		n.Level = level
		n.Index = i
		n.ParentKey = parent
		if prev != nil {
			prev.NextKey = n.Key
			n.PrevKey = prev.Key
		}
		if len(s.kids) > 0 {
			n.HasChildNodes = true
			n.FirstChildKey, n.LastChildKey = addChain(t, b, n.Key, level+1, s.kids)
		}
		require.NoError(t, b.AddNode(n))
		prev = n
	}
	if len(shapes) == 0 {
		return "", ""
	}
	return shapes[0].key, shapes[len(shapes)-1].key
}

func containsFold(query string) Predicate {
	q := strings.ToLower(query)
	return func(text string) bool {
		return strings.Contains(strings.ToLower(text), q)
	}
}

func topKeys(c *Collection) []Key {
	var keys []Key
	for n := range c.All() {
		keys = append(keys, n.Key)
	}
	return keys
}

func childKeys(c *Collection, key Key) []Key {
	var keys []Key
	for n := range c.Children(key) {
		keys = append(keys, n.Key)
	}
	return keys
}

func walkKeys(c *Collection) []Key {
	var keys []Key
	for n := range c.Walk() {
		keys = append(keys, n.Key)
	}
	return keys
}
