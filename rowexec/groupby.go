package rowexec

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

func newAccumulators(aggExprs []*expression.Aggregate) []expression.Accumulator {
	accs := make([]expression.Accumulator, len(aggExprs))
	for i, a := range aggExprs {
		accs[i] = expression.NewAccumulator(a.Func, a.ValueType())
	}
	return accs
}

func accumulateRow(aggExprs []*expression.Aggregate, accs []expression.Accumulator, t row.Tuple) error {
	for i, agg := range aggExprs {
		if agg.IsCountStar() {
			if csa, ok := accs[i].(expression.CountStarAccumulator); ok {
				csa.AccumulateAny()
				continue
			}
		}
		var v types.Value
		if err := agg.Child.GetValue(t, &v); err != nil {
			return err
		}
		if err := accs[i].Accumulate(v); err != nil {
			return err
		}
	}
	return nil
}

func aggSpecs(aggExprs []*expression.Aggregate) []row.TupleCellSpec {
	specs := make([]row.TupleCellSpec, len(aggExprs))
	for i, a := range aggExprs {
		specs[i] = row.TupleCellSpec{Field: a.Name(), Alias: a.Alias()}
	}
	return specs
}

// aggregateIter is the physical Aggregate (no-grouping) operator: drains
// its child into a single group, then emits exactly one row — even when
// the child produced zero rows, so that e.g. COUNT(*) over an empty table
// still reports 0 rather than no rows at all.
type aggregateIter struct {
	child    plan.RowIter
	aggExprs []*expression.Aggregate
	outer    row.Tuple
	emitted  bool
}

func (it *aggregateIter) Next() (row.Tuple, error) {
	if it.emitted {
		return nil, rc.New(rc.RecordEOF, "")
	}
	accs := newAccumulators(it.aggExprs)
	for {
		t, err := it.child.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				break
			}
			return nil, err
		}
		if err := accumulateRow(it.aggExprs, accs, withOuter(it.outer, t)); err != nil {
			return nil, err
		}
	}
	it.emitted = true
	values := make([]types.Value, len(accs))
	for i, acc := range accs {
		values[i] = acc.Evaluate()
	}
	return row.NewValueListTuple(aggSpecs(it.aggExprs), values), nil
}

func (it *aggregateIter) Close() error { return it.child.Close() }

// groupByIter is the physical streaming GroupBy operator: a
// previous-group-key/next-row state machine. The first Next call primes a
// one-row look-ahead buffer; each
// subsequent call consumes rows into the current group until the group key
// changes (or the child is exhausted), buffering the first row of the next
// group for the following call.
type groupByIter struct {
	child      plan.RowIter
	groupExprs []row.Expression
	aggExprs   []*expression.Aggregate
	outer      row.Tuple

	started    bool
	exhausted  bool
	pending    row.Tuple
	pendingKey []types.Value
}

func evalKey(exprs []row.Expression, t row.Tuple) ([]types.Value, error) {
	key := make([]types.Value, len(exprs))
	for i, e := range exprs {
		var v types.Value
		if err := e.GetValue(t, &v); err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}

func sameKey(a, b []types.Value) bool {
	for i := range a {
		if a[i].IsNull() && b[i].IsNull() {
			continue
		}
		if a[i].IsNull() != b[i].IsNull() {
			return false
		}
		c, err := a[i].Compare(b[i])
		if err != nil || c != 0 {
			return false
		}
	}
	return true
}

func (it *groupByIter) primeOne() error {
	t, err := it.child.Next()
	if err != nil {
		if rc.Is(err, rc.RecordEOF) {
			it.exhausted = true
			return nil
		}
		return err
	}
	key, err := evalKey(it.groupExprs, withOuter(it.outer, t))
	if err != nil {
		return err
	}
	it.pending = t
	it.pendingKey = key
	return nil
}

func (it *groupByIter) Next() (row.Tuple, error) {
	if !it.started {
		it.started = true
		if err := it.primeOne(); err != nil {
			return nil, err
		}
	}
	if it.exhausted {
		return nil, rc.New(rc.RecordEOF, "")
	}

	key := it.pendingKey
	accs := newAccumulators(it.aggExprs)
	if err := accumulateRow(it.aggExprs, accs, withOuter(it.outer, it.pending)); err != nil {
		return nil, err
	}
	it.pending = nil
	it.pendingKey = nil

	for {
		t, err := it.child.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				it.exhausted = true
				break
			}
			return nil, err
		}
		k, err := evalKey(it.groupExprs, withOuter(it.outer, t))
		if err != nil {
			return nil, err
		}
		if !sameKey(key, k) {
			it.pending = t
			it.pendingKey = k
			break
		}
		if err := accumulateRow(it.aggExprs, accs, withOuter(it.outer, t)); err != nil {
			return nil, err
		}
	}

	specs := make([]row.TupleCellSpec, 0, len(key)+len(accs))
	values := make([]types.Value, 0, len(key)+len(accs))
	for i, k := range key {
		var spec row.TupleCellSpec
		if f, ok := it.groupExprs[i].(*expression.Field); ok {
			spec = row.TupleCellSpec{Table: f.Table, Field: f.Column}
		} else {
			spec = row.TupleCellSpec{Field: it.groupExprs[i].Name(), Alias: it.groupExprs[i].Alias()}
		}
		specs = append(specs, spec)
		values = append(values, k)
	}
	for i, acc := range accs {
		specs = append(specs, row.TupleCellSpec{Field: it.aggExprs[i].Name(), Alias: it.aggExprs[i].Alias()})
		values = append(values, acc.Evaluate())
	}
	return row.NewValueListTuple(specs, values), nil
}

func (it *groupByIter) Close() error { return it.child.Close() }
