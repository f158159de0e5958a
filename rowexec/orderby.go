package rowexec

import (
	"sort"

	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// orderByIter is the physical OrderBy operator: materializes its child
// fully, sorts a permutation over it, then replays rows in that order
// through a SplicedTuple so the sort itself only ever moves int indices,
// never copies row payloads.
type orderByIter struct {
	child plan.RowIter
	units []plan.OrderUnit
	outer row.Tuple

	specs   []row.TupleCellSpec
	columns [][]types.Value
	pos     int
}

func (it *orderByIter) materialize() error {
	var rows [][]types.Value
	for {
		t, err := it.child.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				break
			}
			return err
		}
		n := t.CellNum()
		if it.specs == nil {
			it.specs = make([]row.TupleCellSpec, n)
			if nt, ok := t.(row.NamedTuple); ok {
				for i := 0; i < n; i++ {
					it.specs[i] = nt.SpecAt(i)
				}
			}
		}
		vals := make([]types.Value, n)
		for i := 0; i < n; i++ {
			v, err := t.CellAt(i)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		rows = append(rows, vals)
	}
	if err := it.child.Close(); err != nil {
		return err
	}

	keys := make([][]types.Value, len(rows))
	for ri, vals := range rows {
		rt := row.NewValueListTuple(it.specs, vals)
		eval := withOuter(it.outer, rt)
		k := make([]types.Value, len(it.units))
		for ui, u := range it.units {
			var v types.Value
			if err := u.Expr.GetValue(eval, &v); err != nil {
				return err
			}
			k[ui] = v
		}
		keys[ri] = k
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lessRows(keys[order[i]], keys[order[j]], it.units)
	})

	ncols := len(it.specs)
	if ncols == 0 && len(rows) > 0 {
		ncols = len(rows[0])
	}
	it.columns = make([][]types.Value, ncols)
	for c := 0; c < ncols; c++ {
		col := make([]types.Value, len(order))
		for outPos, origIdx := range order {
			col[outPos] = rows[origIdx][c]
		}
		it.columns[c] = col
	}
	return nil
}

// lessRows compares two evaluated sort-key rows unit by unit, applying
// the usual SQL NULL ordering: NULLs sort last under ASC, first under DESC. A
// Compare error on an incomparable pair is treated as a tie rather than
// propagated, since sort.SliceStable's comparator cannot return an error;
// such a pair should not arise once the binder has type-checked ORDER BY.
func lessRows(a, b []types.Value, units []plan.OrderUnit) bool {
	for i, u := range units {
		av, bv := a[i], b[i]
		if av.IsNull() || bv.IsNull() {
			if av.IsNull() && bv.IsNull() {
				continue
			}
			if av.IsNull() {
				return !u.Asc
			}
			return u.Asc
		}
		c, err := av.Compare(bv)
		if err != nil || c == 0 {
			continue
		}
		if u.Asc {
			return c < 0
		}
		return c > 0
	}
	return false
}

func (it *orderByIter) Next() (row.Tuple, error) {
	total := 0
	if len(it.columns) > 0 {
		total = len(it.columns[0])
	}
	if it.pos >= total {
		return nil, rc.New(rc.RecordEOF, "")
	}
	t := &row.SplicedTuple{Specs: it.specs, Columns: it.columns, Row: it.pos}
	it.pos++
	return t, nil
}

func (it *orderByIter) Close() error { return nil }
