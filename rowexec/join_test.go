package rowexec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/memtable"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/rowexec"
	"github.com/minidb/qcore/types"
)

func TestNestedLoopJoinMatchesOnCondition(t *testing.T) {
	db := memtable.NewDatabase("d")
	t1 := memtable.NewIntTable(db, "t1", "id")
	t2 := memtable.NewIntTable(db, "t2", "id", "val")
	insertInts(t, t1, []int{1}, []int{2})
	insertInts(t, t2, []int{1, 100}, []int{2, 200}, []int{3, 300})

	on := expression.NewComparison(expression.Eq,
		expression.NewField("t1", "id", types.Int, 4),
		expression.NewField("t2", "id", types.Int, 4))
	join := &plan.Join{Left: &plan.TableGet{Table: t1}, Right: &plan.TableGet{Table: t2}, On: on}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(join, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	got := map[int]int{}
	for {
		rt, err := iter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		v, _, err := rt.FindCell(row.TupleCellSpec{Table: "t1", Field: "id"})
		require.NoError(t, err)
		w, _, err := rt.FindCell(row.TupleCellSpec{Table: "t2", Field: "val"})
		require.NoError(t, err)
		got[v.Int()] = w.Int()
	}
	require.Equal(t, map[int]int{1: 100, 2: 200}, got)
}

// TestCorrelatedSubqueryExistsSeesOuterRow builds a Subquery whose inner
// predicate references the outer table's current row, verifying the
// outer-tuple threading nestedLoopJoinIter's buildRight closure and
// Subquery.open both rely on (withOuter composing outer with the inner
// child) resolves correctly.
func TestCorrelatedSubqueryExistsSeesOuterRow(t *testing.T) {
	db := memtable.NewDatabase("d")
	outer := memtable.NewIntTable(db, "outer_t", "id")
	inner := memtable.NewIntTable(db, "inner_t", "id")
	insertInts(t, outer, []int{1}, []int{2}, []int{3})
	insertInts(t, inner, []int{1}, []int{3})

	trx := memtable.NewTrx()

	// OrderBy over a bare TableGet preserves the child's (table, field)
	// qualified specs in its output (via RowTuple.SpecAt), which is what
	// lets the correlated Field below resolve against the outer row once
	// withOuter splices it in; a Predicate fused directly onto a TableGet
	// would instead filter row-locally with no way to reach outer.
	innerScan := &plan.OrderBy{
		Child: &plan.TableGet{Table: inner},
		Units: []plan.OrderUnit{{Expr: expression.NewField("inner_t", "id", types.Int, 4), Asc: true}},
	}
	correlated := expression.NewComparison(expression.Eq,
		expression.NewField("inner_t", "id", types.Int, 4),
		expression.NewField("outer_t", "id", types.Int, 4))
	innerNode := &plan.Predicate{Child: innerScan, Expr: correlated}

	sq := plan.NewSubquery(innerNode).WithExecBuilder(rowexec.DefaultBuilder{}).WithTrx(trx)

	outerIter, err := rowexec.DefaultBuilder{}.Build(&plan.TableGet{Table: outer}, trx, nil)
	require.NoError(t, err)
	defer outerIter.Close()

	var seen []int
	for {
		ot, err := outerIter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		has, err := sq.HasAnyRow(ot)
		require.NoError(t, err)
		if has {
			v, _, ferr := ot.FindCell(row.TupleCellSpec{Table: "outer_t", Field: "id"})
			require.NoError(t, ferr)
			seen = append(seen, v.Int())
		}
	}
	require.ElementsMatch(t, []int{1, 3}, seen)
}
