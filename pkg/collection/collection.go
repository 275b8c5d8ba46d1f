package collection

import (
	"fmt"
	"iter"
	"maps"
)

// Collection is a committed, read-only snapshot of linked nodes.
//
// Order is carried by the link fields of each node, not by the key map: the
// top-level chain runs from FirstKey through NextKey links, and every node
// with children owns a chain from FirstChildKey to LastChildKey.
type Collection struct {
	nodes    map[Key]*Node
	firstKey Key
	lastKey  Key
	frozen   bool
}

// Empty returns a frozen collection with no nodes.
func Empty() *Collection {
	return &Collection{nodes: map[Key]*Node{}, frozen: true}
}

// Size returns the number of nodes in the collection, at every level.
func (c *Collection) Size() int {
	return len(c.nodes)
}

// Frozen reports whether the snapshot was sealed by Commit. Snapshots
// committed with WithoutFreeze report false but are still never mutated.
func (c *Collection) Frozen() bool {
	return c.frozen
}

// Keys yields every key in storage order. The order is unspecified and does
// not follow document order.
func (c *Collection) Keys() iter.Seq[Key] {
	return maps.Keys(c.nodes)
}

// All yields the top-level nodes from FirstKey following NextKey links.
func (c *Collection) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := c.nodes[c.firstKey]; node != nil; node = c.next(node) {
			if !yield(node) {
				return
			}
		}
	}
}

// Children yields the direct children of the node at key. The sequence is
// empty when the key is unknown or the node has no children.
func (c *Collection) Children(key Key) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		parent := c.nodes[key]
		if parent == nil {
			return
		}
		for node := c.nodes[parent.FirstChildKey]; node != nil; node = c.next(node) {
			if !yield(node) {
				return
			}
		}
	}
}

// Walk yields every reachable node in document order, as navigated by
// KeyAfter starting at FirstKey.
func (c *Collection) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for key := c.firstKey; key != ""; key = c.KeyAfter(key) {
			node := c.nodes[key]
			if node == nil || !yield(node) {
				return
			}
		}
	}
}

// Item returns the node stored under key, or nil.
func (c *Collection) Item(key Key) *Node {
	return c.nodes[key]
}

// At is not supported by the linked store; positional access requires a walk.
func (c *Collection) At(index int) (*Node, error) {
	return nil, fmt.Errorf("collection: At(%d): %w", index, ErrNotImplemented)
}

// FirstKey returns the first top-level key.
func (c *Collection) FirstKey() Key {
	return c.firstKey
}

// LastKey returns the last key in document order: the deepest last
// descendant of the last top-level node.
func (c *Collection) LastKey() Key {
	node := c.nodes[c.lastKey]
	for node != nil && node.LastChildKey != "" {
		child := c.nodes[node.LastChildKey]
		if child == nil {
			break
		}
		node = child
	}
	if node == nil {
		return ""
	}
	return node.Key
}

// KeyBefore returns the key preceding key in document order. When a previous
// sibling exists the walk descends through its last children while the node
// is a container; otherwise the parent key is returned. Unknown keys yield "".
func (c *Collection) KeyBefore(key Key) Key {
	node := c.nodes[key]
	if node == nil {
		return ""
	}

	if node.PrevKey != "" {
		node = c.nodes[node.PrevKey]
		for node != nil && node.Type.IsContainer() && node.LastChildKey != "" {
			node = c.nodes[node.LastChildKey]
		}
		if node == nil {
			return ""
		}
		return node.Key
	}

	return node.ParentKey
}

// KeyAfter returns the key following key in document order. Containers with
// children step into their first child; otherwise the next sibling of the
// node or of its nearest ancestor that has one is returned. Unknown keys
// yield "".
func (c *Collection) KeyAfter(key Key) Key {
	node := c.nodes[key]
	if node == nil {
		return ""
	}

	if node.Type.IsContainer() && node.FirstChildKey != "" {
		return node.FirstChildKey
	}

	for node != nil {
		if node.NextKey != "" {
			return node.NextKey
		}
		if node.ParentKey == "" {
			return ""
		}
		node = c.nodes[node.ParentKey]
	}

	return ""
}

// Clone returns an unfrozen builder holding the same node references and
// boundary keys. The snapshot itself is left untouched.
func (c *Collection) Clone() *Builder {
	return &Builder{
		nodes:    maps.Clone(c.nodes),
		firstKey: c.firstKey,
		lastKey:  c.lastKey,
	}
}

func (c *Collection) next(node *Node) *Node {
	if node.NextKey == "" {
		return nil
	}
	return c.nodes[node.NextKey]
}
