package rowexec

import (
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// nestedLoopJoinIter is the physical NestedLoopJoin operator: for every
// left row, reopen the right subtree fresh and drain it, combining each
// match into a CompositeTuple. Reopening per outer row is what lets a
// correlated predicate inside the right subtree see the current left row,
// via buildRight's outer threading — expressed as a build-time closure
// parameter here since these operators are stateless Go values rather
// than mutable objects with a parent-tuple setter.
type nestedLoopJoinIter struct {
	left      plan.RowIter
	buildRight func(leftTuple row.Tuple) (plan.RowIter, error)
	on        row.Expression
	outer     row.Tuple

	curLeft  row.Tuple
	curRight plan.RowIter
}

func (it *nestedLoopJoinIter) Next() (row.Tuple, error) {
	for {
		if it.curRight == nil {
			lt, err := it.left.Next()
			if err != nil {
				return nil, err
			}
			it.curLeft = lt
			rIter, err := it.buildRight(lt)
			if err != nil {
				return nil, err
			}
			it.curRight = rIter
		}

		rt, err := it.curRight.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				it.curRight.Close()
				it.curRight = nil
				continue
			}
			return nil, err
		}

		combined := row.NewCompositeTuple(it.curLeft, rt)
		if it.on != nil {
			var v types.Value
			if err := it.on.GetValue(withOuter(it.outer, combined), &v); err != nil {
				return nil, err
			}
			if v.IsNull() || !v.Bool() {
				continue
			}
		}
		return combined, nil
	}
}

func (it *nestedLoopJoinIter) Close() error {
	if it.curRight != nil {
		it.curRight.Close()
	}
	return it.left.Close()
}
