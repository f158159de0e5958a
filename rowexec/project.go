package rowexec

import (
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/row"
)

// projectIter is the physical Projection operator: presents its child's
// row through Exprs without materializing eagerly, via an ExpressionTuple.
type projectIter struct {
	child plan.RowIter
	exprs []row.Expression
	outer row.Tuple
}

func (it *projectIter) Next() (row.Tuple, error) {
	t, err := it.child.Next()
	if err != nil {
		return nil, err
	}
	return row.NewExpressionTuple(it.exprs, withOuter(it.outer, t)), nil
}

func (it *projectIter) Close() error { return it.child.Close() }
