// Package core is the library entry point tying loading, matching,
// filtering and rendering together with pluggable parts.
package core

import (
	"context"
	"fmt"
	"io"

	"github.com/oakwood-commons/colx/internal/cel"
	"github.com/oakwood-commons/colx/internal/formatter"
	"github.com/oakwood-commons/colx/pkg/autocomplete"
	"github.com/oakwood-commons/colx/pkg/collection"
	"github.com/oakwood-commons/colx/pkg/loader"
	"github.com/oakwood-commons/colx/pkg/match"
)

// Matcher builds a predicate for one query.
type Matcher interface {
	Predicate(query string) (collection.PredicateE, error)
}

// Renderer formats a collection for output.
type Renderer interface {
	Render(c *collection.Collection, opts formatter.Options) (string, error)
}

// Engine provides a minimal shared API for loading, filtering, and rendering collections.
type Engine struct {
	Matcher  Matcher
	Renderer Renderer
}

// Option configures the Engine.
type Option func(*Engine) error

// WithMatcher sets a custom matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) error {
		e.Matcher = m
		return nil
	}
}

// WithMatch uses text matching with the given mode and sensitivity.
func WithMatch(mode match.Mode, sensitivity match.Sensitivity) Option {
	return func(e *Engine) error {
		if _, err := match.New(mode, "", match.WithSensitivity(sensitivity)); err != nil {
			return err
		}
		e.Matcher = textMatcher{mode: mode, sensitivity: sensitivity}
		return nil
	}
}

// WithExpression matches with a CEL expression over text and query.
func WithExpression(expr string) Option {
	return func(e *Engine) error {
		prg, err := cel.Compile(expr)
		if err != nil {
			return err
		}
		e.Matcher = exprMatcher{prg: prg}
		return nil
	}
}

// WithRenderer sets a custom renderer.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) error {
		e.Renderer = r
		return nil
	}
}

// New creates an Engine with defaults: contains matching at base
// sensitivity and the built-in formatter.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		Matcher:  textMatcher{mode: match.ModeContains, sensitivity: match.SensitivityBase},
		Renderer: defaultRenderer{},
	}
	for _, opt := range opts {
		if err := opt(engine); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// LoadFile reads and builds a collection document.
func LoadFile(path string) (*collection.Collection, error) {
	c, _, err := loader.LoadFile(path)
	return c, err
}

// LoadReader reads and builds a collection document from r.
func LoadReader(r io.Reader) (*collection.Collection, error) {
	c, _, err := loader.LoadReader(r)
	return c, err
}

// Predicate returns the engine's predicate for query.
func (e *Engine) Predicate(query string) (collection.PredicateE, error) {
	if e == nil || e.Matcher == nil {
		return nil, fmt.Errorf("matcher is not configured")
	}
	return e.Matcher.Predicate(query)
}

// Filter returns the structural filter of c for query.
func (e *Engine) Filter(c *collection.Collection, query string) (*collection.Collection, error) {
	p, err := e.Predicate(query)
	if err != nil {
		return nil, err
	}
	return c.FilterE(p)
}

// Render formats c.
func (e *Engine) Render(c *collection.Collection, opts formatter.Options) (string, error) {
	if e == nil || e.Renderer == nil {
		return "", fmt.Errorf("renderer is not configured")
	}
	return e.Renderer.Render(c, opts)
}

// NewSession starts an autocomplete session over c using the engine's
// matcher.
func (e *Engine) NewSession(ctx context.Context, c *collection.Collection, opts ...autocomplete.Option) (*autocomplete.Session, error) {
	all := append([]autocomplete.Option{autocomplete.WithPredicate(e.Predicate)}, opts...)
	return autocomplete.New(ctx, c, all...)
}

type textMatcher struct {
	mode        match.Mode
	sensitivity match.Sensitivity
}

func (m textMatcher) Predicate(query string) (collection.PredicateE, error) {
	p, err := match.New(m.mode, query, match.WithSensitivity(m.sensitivity))
	if err != nil {
		return nil, err
	}
	return func(text string) (bool, error) { return p(text), nil }, nil
}

type exprMatcher struct {
	prg *cel.Program
}

func (m exprMatcher) Predicate(query string) (collection.PredicateE, error) {
	return m.prg.Predicate(query), nil
}

type defaultRenderer struct{}

func (defaultRenderer) Render(c *collection.Collection, opts formatter.Options) (string, error) {
	return formatter.Render(c, opts)
}
