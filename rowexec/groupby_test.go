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

// TestStreamingGroupByRequiresPreSortedInput exercises the planner-mandated
// shape: GroupBy's child must already be sorted on GroupExprs, which is why
// it sits beneath an OrderBy here rather than the bare TableGet rows were
// inserted in.
func TestStreamingGroupByRequiresPreSortedInput(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "g", "v")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20}, []int{1, 5})

	g := expression.NewField("t", "g", types.Int, 4)
	v := expression.NewField("t", "v", types.Int, 4)
	sumAgg := expression.NewAggregate(expression.Sum, v, false)

	gb := &plan.GroupBy{
		Child: &plan.OrderBy{
			Child: &plan.TableGet{Table: tbl},
			Units: []plan.OrderUnit{{Expr: g, Asc: true}},
		},
		GroupExprs:     []row.Expression{g},
		AggregateExprs: []row.Expression{sumAgg},
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(gb, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	got := map[int]int{}
	for {
		rt, err := iter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		key, err := rt.CellAt(0)
		require.NoError(t, err)
		sum, err := rt.CellAt(1)
		require.NoError(t, err)
		got[key.Int()] = sum.Int()
	}
	require.Equal(t, map[int]int{1: 15, 2: 20}, got)
}

// TestNoGroupingAggregateEmitsOneRowOverEmptyInput verifies COUNT(*) over a
// table with no rows still reports a single row with count 0, rather than
// no rows at all — the distinguishing rule between Aggregate and GroupBy.
func TestNoGroupingAggregateEmitsOneRowOverEmptyInput(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")

	countStar := expression.NewAggregate(expression.Count, nil, true)
	gb := &plan.GroupBy{
		Child:          &plan.TableGet{Table: tbl},
		AggregateExprs: []row.Expression{countStar},
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(gb, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 0, v.Int())

	_, err = iter.Next()
	require.True(t, rc.Is(err, rc.RecordEOF))
}

func TestNoGroupingAggregateSumsAllRows(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	insertInts(t, tbl, []int{1}, []int{2}, []int{3})

	sumAgg := expression.NewAggregate(expression.Sum, expression.NewField("t", "a", types.Int, 4), false)
	gb := &plan.GroupBy{Child: &plan.TableGet{Table: tbl}, AggregateExprs: []row.Expression{sumAgg}}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(gb, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 6, v.Int())
}
