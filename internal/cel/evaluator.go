package cel

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/colx/pkg/collection"
)

const (
	// TextVar is bound to the text value of the node under test.
	TextVar = "text"
	// QueryVar is bound to the current input value.
	QueryVar = "query"
)

// Evaluator compiles filter expressions against a shared CEL environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the text and query variables and
// the strings extension library.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newFilterEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// GetEnvironment returns the CEL environment for introspection
func (e *Evaluator) GetEnvironment() *cel.Env {
	return e.env
}

func newFilterEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 3+len(opts))
	allOpts = append(allOpts,
		cel.Variable(TextVar, cel.StringType),
		cel.Variable(QueryVar, cel.StringType),
		celext.Strings(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Program is a compiled boolean filter expression.
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression must produce a bool
// (or dyn, checked at evaluation time).
// Example: text.lowerAscii().startsWith(query.lowerAscii())
func (e *Evaluator) Compile(expr string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("compilation error: empty expression")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compilation error: expression %q returns %s, want bool", expr, out)
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Compile compiles expr with a fresh default evaluator.
func Compile(expr string) (*Program, error) {
	e, err := NewEvaluator()
	if err != nil {
		return nil, err
	}
	return e.Compile(expr)
}

// String returns the source expression.
func (p *Program) String() string {
	return p.expr
}

// Eval evaluates the expression for one text value.
func (p *Program) Eval(text, query string) (bool, error) {
	val, _, err := p.prg.Eval(map[string]interface{}{
		TextVar:  text,
		QueryVar: query,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := val.(types.Bool)
	if !ok {
		return false, fmt.Errorf("eval error: expression %q returned %s, want bool", p.expr, val.Type())
	}
	return bool(b), nil
}

// Predicate binds query and returns a predicate suitable for
// collection.FilterE. Evaluation errors abort the filter.
func (p *Program) Predicate(query string) collection.PredicateE {
	return func(text string) (bool, error) {
		return p.Eval(text, query)
	}
}
