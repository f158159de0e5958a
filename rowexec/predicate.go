package rowexec

import (
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// predicateIter is the physical Predicate operator: pulls from its child
// until a row satisfies Expr, passing the unwrapped child tuple upward
// (outer correlation is applied only at the point Expr is evaluated).
type predicateIter struct {
	child plan.RowIter
	expr  row.Expression
	outer row.Tuple
}

func (it *predicateIter) Next() (row.Tuple, error) {
	for {
		t, err := it.child.Next()
		if err != nil {
			return nil, err
		}
		var v types.Value
		if err := it.expr.GetValue(withOuter(it.outer, t), &v); err != nil {
			return nil, err
		}
		if v.IsNull() || !v.Bool() {
			continue
		}
		return t, nil
	}
}

func (it *predicateIter) Close() error { return it.child.Close() }
