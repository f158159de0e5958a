// Package rowexec implements the physical operator runtime: a physical
// plan generator that lowers plan.Node into a Volcano-style row-iterator
// pipeline, plus the vectorized chunk-at-a-time alternative for table
// scans and simple aggregation. It is grounded on dolthub/go-mysql-server's
// sql/rowexec package for the shape of the thing (a DefaultBuilder
// dispatching by logical node type, wired into plan.Subquery via the
// ExecBuilder seam) and on the per-operator algorithms a physical executor
// needs (index-scan fast path, streaming group-by, materialize-then-sort).
package rowexec

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// withOuter wraps t with outer so a correlated predicate/projection
// evaluated against t can also reach the outer row's cells. Every operator
// that evaluates an expression applies this at the point of evaluation;
// the plain tuple (without outer spliced in) is still what gets handed to
// the next operator up, so only expression evaluation ever sees the
// composite.
func withOuter(outer, t row.Tuple) row.Tuple {
	if outer == nil {
		return t
	}
	return row.NewCompositeTuple(outer, t)
}

// evalAllTrue reports whether every predicate in preds evaluates truthy
// against t; a NULL or false result short-circuits to false, matching
// three-valued WHERE-clause semantics.
func evalAllTrue(preds []row.Expression, t row.Tuple) (bool, error) {
	for _, p := range preds {
		var v types.Value
		if err := p.GetValue(t, &v); err != nil {
			return false, err
		}
		if v.IsNull() || !v.Bool() {
			return false, nil
		}
	}
	return true, nil
}

// flattenAnd splits expr into its top-level AND conjuncts, so the physical
// scan lowering can examine each independently for an index-eligible
// equality.
func flattenAnd(expr row.Expression) []row.Expression {
	if conj, ok := expr.(*expression.Conjunction); ok && conj.Kind == expression.And {
		var out []row.Expression
		for _, c := range conj.Children {
			out = append(out, flattenAnd(c)...)
		}
		return out
	}
	return []row.Expression{expr}
}

// splitFieldConst reports whether cmp is an equality between a Field on
// tableName and an operand whose value is already known without a tuple
// (a literal, or a constant-folded expression) — the shape the index-scan
// fast path needs.
func splitFieldConst(cmp *expression.Comparison, tableName string) (*expression.Field, types.Value, bool) {
	if lf, ok := cmp.Left.(*expression.Field); ok && (lf.Table == "" || lf.Table == tableName) {
		var v types.Value
		if ok2, err := cmp.Right.TryGetValue(&v); err == nil && ok2 {
			return lf, v, true
		}
	}
	if rf, ok := cmp.Right.(*expression.Field); ok && (rf.Table == "" || rf.Table == tableName) {
		var v types.Value
		if ok2, err := cmp.Left.TryGetValue(&v); err == nil && ok2 {
			return rf, v, true
		}
	}
	return nil, types.Value{}, false
}
