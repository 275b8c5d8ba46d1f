package collection

import "fmt"

// Validate checks the structural invariants of a committed collection:
// every chain is linear and acyclic with reciprocal prev/next links, child
// chains point back at their parent and match its first/last child keys,
// the top-level chain runs from FirstKey to the stored last key, and every
// stored node is reachable. Failures wrap ErrInvalidStructure.
func Validate(c *Collection) error {
	if c == nil {
		return fmt.Errorf("nil collection: %w", ErrInvalidStructure)
	}
	v := validator{c: c, seen: make(map[Key]bool, len(c.nodes))}

	if len(c.nodes) == 0 {
		if c.firstKey != "" || c.lastKey != "" {
			return fmt.Errorf("empty collection has boundary keys %q..%q: %w", c.firstKey, c.lastKey, ErrInvalidStructure)
		}
		return nil
	}

	if err := v.chain("", c.firstKey, c.lastKey); err != nil {
		return err
	}
	if len(v.seen) != len(c.nodes) {
		for key := range c.nodes {
			if !v.seen[key] {
				return fmt.Errorf("node %q is not reachable: %w", key, ErrInvalidStructure)
			}
		}
	}
	return nil
}

type validator struct {
	c    *Collection
	seen map[Key]bool
}

// chain walks the sibling chain owned by parent (the empty key for the top
// level) and recurses into each node's children.
func (v *validator) chain(parent, first, last Key) error {
	if first == "" || last == "" {
		if first != last {
			return fmt.Errorf("chain of %q has first %q but last %q: %w", parent, first, last, ErrInvalidStructure)
		}
		return nil
	}

	var prev *Node
	for key := first; key != ""; {
		node := v.c.nodes[key]
		if node == nil {
			return fmt.Errorf("chain of %q references missing node %q: %w", parent, key, ErrInvalidStructure)
		}
		if v.seen[key] {
			return fmt.Errorf("node %q is linked more than once: %w", key, ErrInvalidStructure)
		}
		v.seen[key] = true

		if node.Key != key {
			return fmt.Errorf("node stored under %q has key %q: %w", key, node.Key, ErrInvalidStructure)
		}
		if node.ParentKey != parent {
			return fmt.Errorf("node %q has parent %q, want %q: %w", key, node.ParentKey, parent, ErrInvalidStructure)
		}
		wantPrev := Key("")
		if prev != nil {
			wantPrev = prev.Key
		}
		if node.PrevKey != wantPrev {
			return fmt.Errorf("node %q has prev %q, want %q: %w", key, node.PrevKey, wantPrev, ErrInvalidStructure)
		}
		if err := v.chain(node.Key, node.FirstChildKey, node.LastChildKey); err != nil {
			return err
		}

		prev = node
		key = node.NextKey
	}

	if prev.Key != last {
		return fmt.Errorf("chain of %q ends at %q, want %q: %w", parent, prev.Key, last, ErrInvalidStructure)
	}
	return nil
}
