package collection

import "fmt"

// Predicate reports whether a node's text value is retained by a filter.
// It must be pure and synchronous.
type Predicate func(textValue string) bool

// PredicateE is a Predicate that can fail. The first error aborts FilterE.
type PredicateE func(textValue string) (bool, error)

// Filter returns a new frozen collection holding the items whose text
// matches, together with the sections and separators needed to keep the
// result structurally valid:
//
//   - a section with children survives when its last matching child is not
//     a header, and keeps only its matching children in their original
//     order; a childless section is tested like an item;
//   - a separator survives only between two surviving sections;
//   - descendants of a surviving node are filtered with the same predicate.
//
// The receiver is never modified. Panics raised by match are not recovered.
func (c *Collection) Filter(match Predicate) *Collection {
	out, _ := c.FilterE(func(text string) (bool, error) {
		return match(text), nil
	})
	return out
}

// FilterE is Filter with a fallible predicate. On error no collection is
// returned.
func (c *Collection) FilterE(match PredicateE) (*Collection, error) {
	f := &filterPass{
		src:   c,
		match: match,
		nodes: make(map[Key]*Node),
	}
	if err := f.run(); err != nil {
		return nil, err
	}

	out := &Collection{nodes: f.nodes, firstKey: f.firstKey, frozen: true}
	if f.lastNode != nil {
		out.lastKey = f.lastNode.Key
	}
	return out, nil
}

type filterPass struct {
	src   *Collection
	match PredicateE
	nodes map[Key]*Node

	firstKey Key
	// lastNode is the last node appended to the top-level chain.
	lastNode *Node
	// lastSeparator is the most recently retained top-level separator.
	lastSeparator *Node
}

func (f *filterPass) run() error {
	for node := range f.src.All() {
		switch {
		case node.Type == TypeSection && node.FirstChildKey != "":
			section, subtree, err := f.section(node)
			if err != nil {
				return err
			}
			if section == nil {
				continue
			}
			f.appendTop(section)
			f.store(subtree)

		case node.Type == TypeSeparator:
			// Separators divide sections; one that does not follow a
			// retained section has nothing to divide.
			if f.lastNode == nil || f.lastNode.Type != TypeSection {
				continue
			}
			separator := node.Clone()
			f.appendTop(separator)
			f.lastSeparator = separator

		default:
			ok, err := f.test(node)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			clone, subtree, err := f.subtree(node)
			if err != nil {
				return err
			}
			if node.Type != TypeSection {
				f.dropPendingSeparator()
			}
			f.appendTop(clone)
			f.store(subtree)
		}
	}

	f.dropTrailingSeparator()
	return nil
}

// dropTrailingSeparator removes the last retained separator when nothing was
// linked after it and rewires the section before it to end the chain.
func (f *filterPass) dropTrailingSeparator() {
	separator := f.lastSeparator
	if separator == nil || separator.NextKey != "" {
		return
	}
	if prev := f.nodes[separator.PrevKey]; prev != nil {
		prev.NextKey = ""
		if f.lastNode == separator {
			// Separators are only retained after a section, so that
			// section becomes the tail.
			f.lastNode = prev
		}
	}
	delete(f.nodes, separator.Key)
}

// dropPendingSeparator unlinks a separator at the end of the chain so the
// next node links to the section before it.
func (f *filterPass) dropPendingSeparator() {
	separator := f.lastNode
	if separator == nil || separator.Type != TypeSeparator {
		return
	}
	prev := f.nodes[separator.PrevKey]
	prev.NextKey = ""
	f.lastNode = prev
	if f.lastSeparator == separator {
		f.lastSeparator = nil
	}
	delete(f.nodes, separator.Key)
}

// section filters the children of a section. It returns a nil section when
// nothing survives or the last survivor is a header, in which case none of
// the section's nodes are kept.
func (f *filterPass) section(node *Node) (*Node, []*Node, error) {
	children, subtree, err := f.children(node)
	if err != nil {
		return nil, nil, err
	}
	if len(children) == 0 || children[len(children)-1].Type == TypeHeader {
		return nil, nil, nil
	}

	section := node.Clone()
	section.HasChildNodes = true
	section.FirstChildKey = children[0].Key
	section.LastChildKey = children[len(children)-1].Key
	return section, subtree, nil
}

// subtree clones a retained node and filters its descendants.
func (f *filterPass) subtree(node *Node) (*Node, []*Node, error) {
	clone := node.Clone()
	if node.FirstChildKey == "" {
		return clone, nil, nil
	}

	children, subtree, err := f.children(node)
	if err != nil {
		return nil, nil, err
	}
	if len(children) == 0 {
		clone.HasChildNodes = false
		clone.FirstChildKey, clone.LastChildKey = "", ""
		return clone, nil, nil
	}
	clone.HasChildNodes = true
	clone.FirstChildKey = children[0].Key
	clone.LastChildKey = children[len(children)-1].Key
	return clone, subtree, nil
}

// children returns the matching direct children of parent relinked into a
// fresh chain, and every retained node below parent (direct children
// included) ready to be stored.
func (f *filterPass) children(parent *Node) ([]*Node, []*Node, error) {
	var (
		chain []*Node
		all   []*Node
		prev  *Node
	)
	for child := range f.src.Children(parent.Key) {
		ok, err := f.test(child)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}

		clone, subtree, err := f.subtree(child)
		if err != nil {
			return nil, nil, err
		}
		clone.NextKey = ""
		if prev != nil && prev.ParentKey == clone.ParentKey {
			prev.NextKey = clone.Key
			clone.PrevKey = prev.Key
		} else {
			clone.PrevKey = ""
		}
		prev = clone

		chain = append(chain, clone)
		all = append(all, clone)
		all = append(all, subtree...)
	}
	return chain, all, nil
}

func (f *filterPass) appendTop(node *Node) {
	if f.lastNode == nil {
		node.PrevKey = ""
		f.firstKey = node.Key
	} else {
		f.lastNode.NextKey = node.Key
		node.PrevKey = f.lastNode.Key
	}
	node.NextKey = ""
	f.nodes[node.Key] = node
	f.lastNode = node
}

func (f *filterPass) store(nodes []*Node) {
	for _, n := range nodes {
		f.nodes[n.Key] = n
	}
}

func (f *filterPass) test(node *Node) (bool, error) {
	ok, err := f.match(node.TextValue)
	if err != nil {
		return false, fmt.Errorf("filter node %q: %w", node.Key, err)
	}
	return ok, nil
}
