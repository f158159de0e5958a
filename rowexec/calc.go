package rowexec

import (
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// calcIter is the physical Calc operator: evaluates a constant expression
// list with no FROM clause and emits exactly one row.
type calcIter struct {
	exprs []row.Expression
	outer row.Tuple
	done  bool
}

func buildCalc(node *plan.Calc, outer row.Tuple) *calcIter {
	return &calcIter{exprs: node.Exprs, outer: outer}
}

func (it *calcIter) Next() (row.Tuple, error) {
	if it.done {
		return nil, rc.New(rc.RecordEOF, "")
	}
	it.done = true
	specs := make([]row.TupleCellSpec, len(it.exprs))
	values := make([]types.Value, len(it.exprs))
	for i, e := range it.exprs {
		var v types.Value
		if err := e.GetValue(it.outer, &v); err != nil {
			return nil, err
		}
		values[i] = v
		specs[i] = row.TupleCellSpec{Field: e.Name(), Alias: e.Alias()}
	}
	return row.NewValueListTuple(specs, values), nil
}

func (it *calcIter) Close() error { return nil }
