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
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

func TestInsertMaterializesRowsAndReportsAffectedCount(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")

	ins := &plan.Insert{
		Table: tbl,
		Rows: [][]row.Expression{
			{expression.NewLiteral(types.IntValue(1)), expression.NewLiteral(types.IntValue(2))},
			{expression.NewLiteral(types.IntValue(3)), expression.NewLiteral(types.IntValue(4))},
		},
	}
	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(ins, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 2, v.Int())

	scanner, err := tbl.GetRecordScanner(storage.ReadOnly)
	require.NoError(t, err)
	count := 0
	for {
		_, err := scanner.Next(nil)
		if err != nil {
			break
		}
		count++
	}
	require.Equal(t, 2, count)
}

func TestUpdateAppliesNewValuesToMatchingRowsOnly(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20})

	upd := &plan.Update{
		Child: &plan.Predicate{
			Child: &plan.TableGet{Table: tbl, ForUpdate: true},
			Expr:  expression.NewComparison(expression.Eq, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(1))),
		},
		Table:      tbl,
		Columns:    []string{"b"},
		ValueExprs: []row.Expression{expression.NewLiteral(types.IntValue(99))},
	}
	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(upd, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	affected, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 1, affected.Int())

	scanIter, err := rowexec.DefaultBuilder{}.Build(&plan.TableGet{Table: tbl}, trx, nil)
	require.NoError(t, err)
	defer scanIter.Close()
	found := map[int]int{}
	for {
		rowTuple, err := scanIter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		a, err := rowTuple.CellAt(1)
		require.NoError(t, err)
		b, err := rowTuple.CellAt(2)
		require.NoError(t, err)
		found[a.Int()] = b.Int()
	}
	require.Equal(t, map[int]int{1: 99, 2: 20}, found)
}

func TestUpdateRejectsNullForNonNullableColumn(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	meta := tbl.Meta()
	meta.Fields[meta.FieldIndex("b")].Nullable = false
	insertInts(t, tbl, []int{1, 10})

	upd := &plan.Update{
		Child: &plan.Predicate{
			Child: &plan.TableGet{Table: tbl, ForUpdate: true},
			Expr:  expression.NewComparison(expression.Eq, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(1))),
		},
		Table:      tbl,
		Columns:    []string{"b"},
		ValueExprs: []row.Expression{expression.NewLiteral(types.NullValue())},
	}
	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(upd, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	_, err = iter.Next()
	require.Error(t, err)
	require.True(t, rc.Is(err, rc.InvalidArgument))
}

// failNthUpdateTable wraps a real storage.Table and fails exactly its Nth
// UpdateRecord call, succeeding (by delegating through) every call before
// and after that point - including the reverse-replay calls updateIter
// issues once it sees the forced failure.
type failNthUpdateTable struct {
	storage.Table
	failOnCall int
	calls      int
}

func (f *failNthUpdateTable) UpdateRecord(old, newRec *storage.Record) error {
	f.calls++
	if f.calls == f.failOnCall {
		return rc.New(rc.Internal, "forced failure for row %d", f.calls)
	}
	return f.Table.UpdateRecord(old, newRec)
}

func TestUpdateRollsBackEarlierRowsWhenALaterRowFails(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20}, []int{3, 30})

	failing := &failNthUpdateTable{Table: tbl, failOnCall: 3}

	upd := &plan.Update{
		Child: &plan.Predicate{
			Child: &plan.TableGet{Table: failing, ForUpdate: true},
			Expr:  expression.NewComparison(expression.Ge, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(1))),
		},
		Table:      failing,
		Columns:    []string{"b"},
		ValueExprs: []row.Expression{expression.NewLiteral(types.IntValue(99))},
	}
	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(upd, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	_, err = iter.Next()
	require.Error(t, err)
	require.True(t, rc.Is(err, rc.Internal))

	scanIter, err := rowexec.DefaultBuilder{}.Build(&plan.TableGet{Table: tbl}, trx, nil)
	require.NoError(t, err)
	defer scanIter.Close()
	found := map[int]int{}
	for {
		rowTuple, err := scanIter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		a, err := rowTuple.CellAt(1)
		require.NoError(t, err)
		b, err := rowTuple.CellAt(2)
		require.NoError(t, err)
		found[a.Int()] = b.Int()
	}
	require.Equal(t, map[int]int{1: 10, 2: 20, 3: 30}, found)
}

func TestDeleteRemovesOnlyMatchingRows(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	insertInts(t, tbl, []int{1}, []int{2}, []int{3})

	del := &plan.Delete{
		Child: &plan.Predicate{
			Child: &plan.TableGet{Table: tbl, ForUpdate: true},
			Expr:  expression.NewComparison(expression.Ge, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(2))),
		},
		Table: tbl,
	}
	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(del, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	affected, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 2, affected.Int())

	scanner, err := tbl.GetRecordScanner(storage.ReadOnly)
	require.NoError(t, err)
	count := 0
	for {
		_, err := scanner.Next(nil)
		if err != nil {
			break
		}
		count++
	}
	require.Equal(t, 1, count)
}
