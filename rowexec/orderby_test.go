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

func TestOrderByMultiKeyAscThenDesc(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")
	insertInts(t, tbl, []int{2, 5}, []int{1, 1}, []int{1, 2})

	ob := &plan.OrderBy{
		Child: &plan.TableGet{Table: tbl},
		Units: []plan.OrderUnit{
			{Expr: expression.NewField("t", "a", types.Int, 4), Asc: true},
			{Expr: expression.NewField("t", "b", types.Int, 4), Asc: false},
		},
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(ob, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	var got [][2]int
	for {
		rt, err := iter.Next()
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		require.NoError(t, err)
		a, err := rt.CellAt(1)
		require.NoError(t, err)
		b, err := rt.CellAt(2)
		require.NoError(t, err)
		got = append(got, [2]int{a.Int(), b.Int()})
	}
	require.Equal(t, [][2]int{{1, 2}, {1, 1}, {2, 5}}, got)
}

func TestOrderByNullOrderingAscLastDescFirst(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	rec1, err := tbl.MakeRecord([]types.Value{types.IntValue(1)})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(rec1))
	recNull, err := tbl.MakeRecord([]types.Value{types.NullValue()})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(recNull))
	rec2, err := tbl.MakeRecord([]types.Value{types.IntValue(2)})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(rec2))

	readOrder := func(asc bool) []interface{} {
		ob := &plan.OrderBy{
			Child: &plan.TableGet{Table: tbl},
			Units: []plan.OrderUnit{{Expr: expression.NewField("t", "a", types.Int, 4), Asc: asc}},
		}
		trx := memtable.NewTrx()
		iter, err := rowexec.DefaultBuilder{}.Build(ob, trx, nil)
		require.NoError(t, err)
		defer iter.Close()

		var out []interface{}
		for {
			rt, err := iter.Next()
			if rc.Is(err, rc.RecordEOF) {
				break
			}
			require.NoError(t, err)
			v, err := rt.CellAt(1)
			require.NoError(t, err)
			if v.IsNull() {
				out = append(out, nil)
			} else {
				out = append(out, v.Int())
			}
		}
		return out
	}

	require.Equal(t, []interface{}{1, 2, nil}, readOrder(true))
	require.Equal(t, []interface{}{nil, 2, 1}, readOrder(false))
}
