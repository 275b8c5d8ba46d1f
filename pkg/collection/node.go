// Package collection implements an ordered, doubly-linked store for
// hierarchical UI collections (menus, listboxes, trees) and a structural
// filter over it.
//
// Nodes live in an arena keyed by Key. Every relation between nodes
// (parent, siblings, first and last child) is a Key reference rather than a
// pointer, so cloning a snapshot is a cheap copy of the key map.
//
// A Collection is immutable once committed and may be shared between
// goroutines without locking. Construction happens through a Builder, which
// is owned by exactly one goroutine until Commit.
package collection

// Key identifies a node within a collection. The empty key means "no node".
type Key string

// NodeType discriminates the kind of entry a Node represents.
// The set is open; callers may define additional types.
type NodeType string

const (
	TypeItem      NodeType = "item"
	TypeSection   NodeType = "section"
	TypeSeparator NodeType = "separator"
	TypeHeader    NodeType = "header"
)

// IsContainer reports whether document-order navigation descends into
// nodes of this type. Items own their children (e.g. tree rows) but are not
// walked into; sections and other structural types are.
func (t NodeType) IsContainer() bool {
	return t != TypeItem
}

// Node is one entry of a collection. Nodes returned from a Collection are
// shared between snapshots and must be treated as read-only; use Clone to
// derive a modified copy.
type Node struct {
	Type          NodeType
	Key           Key
	Value         any
	Level         int
	HasChildNodes bool
	TextValue     string
	Label         string
	Index         int

	ParentKey     Key
	PrevKey       Key
	NextKey       Key
	FirstChildKey Key
	LastChildKey  Key

	Props map[string]any
}

// NewNode returns a node of the given type and key with all links empty.
func NewNode(typ NodeType, key Key) *Node {
	return &Node{Type: typ, Key: key}
}

// Clone returns a shallow copy of the node. Value and Props are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
