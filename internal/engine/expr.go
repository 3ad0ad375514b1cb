package engine

import (
	"fmt"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/gridx/internal/dataset"
)

// ExprFilter is the advanced filter mode: one CEL expression compiled once
// and evaluated per record. The record's fields are bound to the `rec`
// variable as a dyn map. Compiled programs are safe for concurrent use, so
// worker and synchronous paths share a single ExprFilter.
type ExprFilter struct {
	source  string
	program cel.Program
}

func newExprEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("rec", cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

// CompileExpr parses and type-checks source. A bad expression is an
// EvaluationError: a caller bug, surfaced immediately.
func CompileExpr(source string) (*ExprFilter, error) {
	env, err := newExprEnv()
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}
	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, &EvaluationError{Operator: "expr", Reason: issues.Err().Error()}
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}
	return &ExprFilter{source: source, program: program}, nil
}

// Source returns the original expression text.
func (e *ExprFilter) Source() string { return e.source }

// Match evaluates the expression against one record. A non-boolean result is
// an EvaluationError.
func (e *ExprFilter) Match(rec dataset.Record) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{"rec": rec.Fields})
	if err != nil {
		return false, &EvaluationError{Operator: "expr", Reason: err.Error()}
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, &EvaluationError{Operator: "expr", Reason: fmt.Sprintf("expression returned %T, want bool", out.Value())}
	}
	return b, nil
}

// FilterExpr returns the records matching the compiled expression, preserving
// input order.
func FilterExpr(records []dataset.Record, expr *ExprFilter) ([]dataset.Record, error) {
	if expr == nil {
		out := make([]dataset.Record, len(records))
		copy(out, records)
		return out, nil
	}
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		ok, err := expr.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
