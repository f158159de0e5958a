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

func drainVec(t *testing.T, iter rowexec.VecIter, ncols int) [][]types.Value {
	t.Helper()
	var out [][]types.Value
	chunk := row.NewChunk(1024)
	for {
		err := iter.Next(chunk)
		if err != nil && !rc.Is(err, rc.RecordEOF) {
			require.NoError(t, err)
		}
		for r := 0; r < chunk.Count(); r++ {
			rowVals := make([]types.Value, ncols)
			for c := 0; c < ncols; c++ {
				rowVals[c] = chunk.ColumnAt(c).At(r)
			}
			out = append(out, rowVals)
		}
		if rc.Is(err, rc.RecordEOF) {
			break
		}
	}
	return out
}

func TestTableScanVecFiltersByResidualPredicate(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	insertInts(t, tbl, []int{1, 10}, []int{2, 20}, []int{3, 30})

	tg := &plan.TableGet{
		Table: tbl,
		Predicates: []row.Expression{
			expression.NewComparison(expression.Gt, expression.NewField("t", "b", types.Int, 4), expression.NewLiteral(types.IntValue(15))),
		},
	}

	iter, err := (rowexec.VecBuilder{}).BuildVec(tg, memtable.NewTrx())
	require.NoError(t, err)
	defer iter.Close()

	rows := drainVec(t, iter, 3)
	require.Len(t, rows, 2)
	require.Equal(t, 20, rows[0][2].Int())
	require.Equal(t, 30, rows[1][2].Int())
}

func TestProjectVecEvaluatesExpressionsOverChunks(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	insertInts(t, tbl, []int{1}, []int{2}, []int{3})

	proj := &plan.Projection{
		Child: &plan.TableGet{Table: tbl},
		Exprs: []row.Expression{
			expression.NewArithmetic(expression.Mul, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(10))),
		},
	}
	iter, err := (rowexec.VecBuilder{}).BuildVec(proj, memtable.NewTrx())
	require.NoError(t, err)
	defer iter.Close()

	rows := drainVec(t, iter, 1)
	got := map[int]bool{}
	for _, r := range rows {
		got[r[0].Int()] = true
	}
	require.Equal(t, map[int]bool{10: true, 20: true, 30: true}, got)
}

func TestAggregateVecEmitsOneRowOverEmptyInput(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")

	gb := &plan.GroupBy{
		Child:          &plan.TableGet{Table: tbl},
		AggregateExprs: []row.Expression{expression.NewAggregate(expression.Count, nil, true)},
	}
	iter, err := (rowexec.VecBuilder{}).BuildVec(gb, memtable.NewTrx())
	require.NoError(t, err)
	defer iter.Close()

	rows := drainVec(t, iter, 1)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0][0].Int())
}

// TestGroupByVecCarriesAGroupAcrossChunkBoundaries forces the same group key
// to span two storage chunks (the scanner batches every 1024 rows), so the
// only way every row lands in one emitted group is if groupByVecIter's carry
// state survives a pullAndGroup call that hits mid-group chunk exhaustion.
func TestGroupByVecCarriesAGroupAcrossChunkBoundaries(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "g", "v")
	rows := make([][]int, 0, 1100)
	for i := 0; i < 1100; i++ {
		rows = append(rows, []int{1, 1})
	}
	insertInts(t, tbl, rows...)
	insertInts(t, tbl, []int{2, 1})

	// VecBuilder has no vectorized OrderBy, so the pre-sort GroupBy
	// ordinarily needs is provided here by insertion order itself: every g=1
	// row lands before the single g=2 row, matching what a row-wise pipeline
	// would get from an OrderBy beneath it.
	g := expression.NewField("t", "g", types.Int, 4)
	v := expression.NewField("t", "v", types.Int, 4)
	gb := &plan.GroupBy{
		Child:          &plan.TableGet{Table: tbl},
		GroupExprs:     []row.Expression{g},
		AggregateExprs: []row.Expression{expression.NewAggregate(expression.Sum, v, false)},
	}
	iter, err := (rowexec.VecBuilder{}).BuildVec(gb, memtable.NewTrx())
	require.NoError(t, err)
	defer iter.Close()

	got := map[int]int{}
	for _, r := range drainVec(t, iter, 2) {
		got[r[0].Int()] = r[1].Int()
	}
	require.Equal(t, map[int]int{1: 1100, 2: 1}, got)
}

func TestExplainVecDescribesTreeWithoutRows(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")

	explain := &plan.Explain{Child: &plan.TableGet{Table: tbl}}
	iter, err := (rowexec.VecBuilder{}).BuildVec(explain, memtable.NewTrx())
	require.NoError(t, err)
	defer iter.Close()

	rows := drainVec(t, iter, 1)
	require.Len(t, rows, 1)
	require.Contains(t, rows[0][0].String(), "TableGet(t, scan)")
}
