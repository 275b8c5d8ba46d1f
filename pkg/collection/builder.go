package collection

import (
	"fmt"
	"maps"
)

// Builder owns a collection under construction. Nodes are added and linked
// by the caller, then Commit seals them into a Collection. A Builder is not
// safe for concurrent use.
//
// AddNode and RemoveNode only touch the key map. Keeping prev/next/child
// links consistent is the caller's job; Validate can check the result.
type Builder struct {
	nodes    map[Key]*Node
	firstKey Key
	lastKey  Key
	frozen   bool
	// shared is set while the key map is aliased by a snapshot committed
	// with WithoutFreeze; the next mutation copies the map first.
	shared bool
}

// NewBuilder returns an empty, unfrozen builder.
func NewBuilder() *Builder {
	return &Builder{nodes: map[Key]*Node{}}
}

// CommitOption configures Commit.
type CommitOption func(*commitOptions)

type commitOptions struct {
	freeze bool
}

// WithoutFreeze commits without sealing the builder. It is meant for
// pre-rendering environments that build a collection once and never
// interact with it; the builder may keep being mutated and committed.
func WithoutFreeze() CommitOption {
	return func(o *commitOptions) {
		o.freeze = false
	}
}

// Size returns the number of nodes currently held.
func (b *Builder) Size() int {
	return len(b.nodes)
}

// Frozen reports whether Commit has sealed the builder.
func (b *Builder) Frozen() bool {
	return b.frozen
}

// FirstKey returns the first top-level key carried over by Clone or set by
// the last commit.
func (b *Builder) FirstKey() Key {
	return b.firstKey
}

// LastKey returns the last top-level key carried over by Clone or set by
// the last commit.
func (b *Builder) LastKey() Key {
	return b.lastKey
}

// Item returns the node stored under key, or nil. The node may be shared
// with a committed snapshot; change it through Update.
func (b *Builder) Item(key Key) *Node {
	return b.nodes[key]
}

// AddNode stores node under its key, replacing any node with the same key.
func (b *Builder) AddNode(node *Node) error {
	if b.frozen {
		return fmt.Errorf("add node: %w", ErrFrozen)
	}
	if node == nil {
		return fmt.Errorf("add node: nil node: %w", ErrInvalidNode)
	}
	if node.Key == "" {
		return fmt.Errorf("add node: empty key: %w", ErrInvalidNode)
	}
	b.own()
	b.nodes[node.Key] = node
	return nil
}

// RemoveNode deletes the node stored under key. Removing an unknown key is
// not an error.
func (b *Builder) RemoveNode(key Key) error {
	if b.frozen {
		return fmt.Errorf("remove node %q: %w", key, ErrFrozen)
	}
	b.own()
	delete(b.nodes, key)
	return nil
}

// Update replaces the node under key with a modified copy. The stored node
// is never mutated in place, so snapshots sharing it are unaffected.
func (b *Builder) Update(key Key, fn func(*Node)) error {
	if b.frozen {
		return fmt.Errorf("update node %q: %w", key, ErrFrozen)
	}
	node := b.nodes[key]
	if node == nil {
		return fmt.Errorf("update node %q: unknown key: %w", key, ErrInvalidNode)
	}
	node = node.Clone()
	fn(node)
	if node.Key != key {
		return fmt.Errorf("update node %q: key changed to %q: %w", key, node.Key, ErrInvalidNode)
	}
	b.own()
	b.nodes[key] = node
	return nil
}

// Commit sets the top-level boundary keys and returns the resulting
// snapshot. Unless WithoutFreeze is given the builder is frozen afterwards
// and every further mutation or commit fails with ErrFrozen.
func (b *Builder) Commit(firstKey, lastKey Key, opts ...CommitOption) (*Collection, error) {
	if b.frozen {
		return nil, fmt.Errorf("commit: %w", ErrFrozen)
	}

	o := commitOptions{freeze: true}
	for _, opt := range opts {
		opt(&o)
	}

	if b.nodes == nil {
		b.nodes = map[Key]*Node{}
	}
	b.firstKey = firstKey
	b.lastKey = lastKey
	b.frozen = o.freeze
	b.shared = !o.freeze

	return &Collection{
		nodes:    b.nodes,
		firstKey: firstKey,
		lastKey:  lastKey,
		frozen:   o.freeze,
	}, nil
}

// own makes sure the key map is not aliased by a committed snapshot.
func (b *Builder) own() {
	switch {
	case b.nodes == nil:
		b.nodes = map[Key]*Node{}
	case b.shared:
		b.nodes = maps.Clone(b.nodes)
		b.shared = false
	}
}
