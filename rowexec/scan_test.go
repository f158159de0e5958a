package rowexec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/memtable"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/rowexec"
	"github.com/minidb/qcore/types"
)

func insertInts(t *testing.T, tbl *memtable.Table, rows ...[]int) {
	t.Helper()
	for _, r := range rows {
		vals := make([]types.Value, len(r))
		for i, v := range r {
			vals[i] = types.IntValue(v)
		}
		rec, err := tbl.MakeRecord(vals)
		require.NoError(t, err)
		require.NoError(t, tbl.InsertRecord(rec))
	}
}

func TestIndexScanEqualityFiltersToMatchingRow(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	tbl.CreateIndex("idx_a", "a")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20}, []int{3, 30})

	a := expression.NewField("t", "a", types.Int, 4)
	pred := &plan.Predicate{
		Child: &plan.TableGet{Table: tbl},
		Expr:  expression.NewComparison(expression.Eq, a, expression.NewLiteral(types.IntValue(2))),
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(pred, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(1)
	require.NoError(t, err)
	require.Equal(t, 2, v.Int())
	v, err = rt.CellAt(2)
	require.NoError(t, err)
	require.Equal(t, 20, v.Int())

	_, err = iter.Next()
	require.True(t, rc.Is(err, rc.RecordEOF))
}

func TestTableScanWithNonIndexedResidualPredicate(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20}, []int{3, 30})

	b := expression.NewField("t", "b", types.Int, 4)
	pred := &plan.Predicate{
		Child: &plan.TableGet{Table: tbl},
		Expr:  expression.NewComparison(expression.Gt, b, expression.NewLiteral(types.IntValue(15))),
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(pred, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	count := 0
	for {
		_, err := iter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)
}

func TestBareTableGetReturnsEveryRow(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	insertInts(t, tbl, []int{1}, []int{2}, []int{3})

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(&plan.TableGet{Table: tbl}, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	count := 0
	for {
		_, err := iter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 3, count)
}
