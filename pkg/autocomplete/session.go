// Package autocomplete keeps a filtered view of a collection in step with
// an input value, the way a combobox does while the user types.
package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oakwood-commons/colx/pkg/collection"
	"github.com/oakwood-commons/colx/pkg/logger"
	"github.com/oakwood-commons/colx/pkg/match"
)

// ErrSuperseded is returned by SetInput when a newer call published first.
var ErrSuperseded = errors.New("input superseded by a newer value")

// PredicateFunc builds the predicate for one input value.
type PredicateFunc func(query string) (collection.PredicateE, error)

// View is one published state of a session. Views are immutable.
type View struct {
	Input      string
	Collection *collection.Collection
	// Focus is the active descendant, or "" when nothing is focused.
	Focus      collection.Key
	Generation uint64
}

// Session filters a source collection as its input changes. Readers call
// View without locking; writers are serialized.
type Session struct {
	mu        sync.Mutex
	source    *collection.Collection
	predicate PredicateFunc
	wrap      bool
	input     string
	gen       uint64

	view atomic.Pointer[View]
}

// Option configures a Session.
type Option func(*Session)

// WithPredicate sets the predicate factory. The default is a base
// sensitivity contains match.
func WithPredicate(fn PredicateFunc) Option {
	return func(s *Session) {
		s.predicate = fn
	}
}

// WithMatcher uses pkg/match with the given mode and sensitivity.
func WithMatcher(mode match.Mode, sensitivity match.Sensitivity) Option {
	return WithPredicate(func(query string) (collection.PredicateE, error) {
		p, err := match.New(mode, query, match.WithSensitivity(sensitivity))
		if err != nil {
			return nil, err
		}
		return lift(p), nil
	})
}

// WithWrap makes focus movement wrap around at either end.
func WithWrap(wrap bool) Option {
	return func(s *Session) {
		s.wrap = wrap
	}
}

func lift(p collection.Predicate) collection.PredicateE {
	return func(text string) (bool, error) {
		return p(text), nil
	}
}

// New creates a session over source and publishes the view for an empty
// input.
func New(ctx context.Context, source *collection.Collection, opts ...Option) (*Session, error) {
	if source == nil {
		source = collection.Empty()
	}
	s := &Session{source: source}
	WithMatcher(match.ModeContains, match.SensitivityBase)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.view.Store(&View{Collection: source})
	if _, err := s.SetInput(ctx, ""); err != nil {
		return nil, err
	}
	return s, nil
}

// View returns the latest published view.
func (s *Session) View() *View {
	return s.view.Load()
}

// Source returns the unfiltered collection.
func (s *Session) Source() *collection.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SetInput filters the source for value and publishes the result. Calls
// may overlap; only the most recent one publishes and earlier ones return
// ErrSuperseded. Typing forward focuses the first item, deleting clears the
// focus.
func (s *Session) SetInput(ctx context.Context, value string) (*View, error) {
	lgr := logger.ForComponent(logger.FromContext(ctx), "autocomplete")

	s.mu.Lock()
	s.gen++
	gen := s.gen
	source := s.source
	factory := s.predicate
	s.mu.Unlock()

	pred, err := factory(value)
	if err != nil {
		return nil, fmt.Errorf("build predicate for %q: %w", value, err)
	}
	filtered, err := source.FilterE(pred)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		lgr.V(1).Info("discarding stale filter result", "input", value, "generation", gen, "latest", s.gen)
		return nil, ErrSuperseded
	}

	prev := s.view.Load()
	focus := nextFocus(prev, value, filtered)
	s.input = value
	v := &View{Input: value, Collection: filtered, Focus: focus, Generation: gen}
	s.view.Store(v)

	lgr.V(1).Info("published filter result", "input", value, "generation", gen, "size", filtered.Size(), "focus", string(focus))
	return v, nil
}

func nextFocus(prev *View, value string, filtered *collection.Collection) collection.Key {
	switch {
	case len(value) < len(prev.Input):
		return ""
	case value != prev.Input:
		return firstItem(filtered)
	case prev.Focus != "" && isItem(filtered.Item(prev.Focus)):
		return prev.Focus
	}
	return ""
}

// SetSource replaces the source collection and re-applies the current
// input. The focus survives when its key is still present.
func (s *Session) SetSource(ctx context.Context, source *collection.Collection) (*View, error) {
	if source == nil {
		source = collection.Empty()
	}
	s.mu.Lock()
	s.source = source
	input := s.input
	s.mu.Unlock()
	return s.SetInput(ctx, input)
}

// Selected returns the focused node, or nil.
func (s *Session) Selected() *collection.Node {
	v := s.View()
	if v.Focus == "" {
		return nil
	}
	return v.Collection.Item(v.Focus)
}

// FocusNext moves focus to the next item in document order. With nothing
// focused it focuses the first item.
func (s *Session) FocusNext() collection.Key {
	return s.moveFocus(func(v *View) collection.Key {
		if v.Focus == "" {
			return firstItem(v.Collection)
		}
		if k := seekItem(v.Collection, v.Focus, v.Collection.KeyAfter); k != "" {
			return k
		}
		if s.wrap {
			return firstItem(v.Collection)
		}
		return v.Focus
	})
}

// FocusPrev moves focus to the previous item in document order. With
// nothing focused it focuses the last item.
func (s *Session) FocusPrev() collection.Key {
	return s.moveFocus(func(v *View) collection.Key {
		if v.Focus == "" {
			return lastItem(v.Collection)
		}
		if k := seekItem(v.Collection, v.Focus, v.Collection.KeyBefore); k != "" {
			return k
		}
		if s.wrap {
			return lastItem(v.Collection)
		}
		return v.Focus
	})
}

// FocusFirst focuses the first item.
func (s *Session) FocusFirst() collection.Key {
	return s.moveFocus(func(v *View) collection.Key { return firstItem(v.Collection) })
}

// FocusLast focuses the last item.
func (s *Session) FocusLast() collection.Key {
	return s.moveFocus(func(v *View) collection.Key { return lastItem(v.Collection) })
}

// ClearFocus removes the focus.
func (s *Session) ClearFocus() {
	s.moveFocus(func(*View) collection.Key { return "" })
}

func (s *Session) moveFocus(pick func(*View) collection.Key) collection.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.view.Load()
	next := *cur
	next.Focus = pick(cur)
	s.view.Store(&next)
	return next.Focus
}

func isItem(n *collection.Node) bool {
	return n != nil && n.Type == collection.TypeItem
}

func seekItem(c *collection.Collection, from collection.Key, step func(collection.Key) collection.Key) collection.Key {
	for k := step(from); k != ""; k = step(k) {
		if isItem(c.Item(k)) {
			return k
		}
	}
	return ""
}

func firstItem(c *collection.Collection) collection.Key {
	k := c.FirstKey()
	if k == "" || isItem(c.Item(k)) {
		return k
	}
	return seekItem(c, k, c.KeyAfter)
}

func lastItem(c *collection.Collection) collection.Key {
	k := c.LastKey()
	if k == "" || isItem(c.Item(k)) {
		return k
	}
	return seekItem(c, k, c.KeyBefore)
}
