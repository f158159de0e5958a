package memtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/memtable"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

func TestInsertGetRecordRoundTrip(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a", "b")

	rec, err := tbl.MakeRecord([]types.Value{types.IntValue(1), types.IntValue(2)})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(rec))

	got, err := tbl.GetRecord(rec.RID)
	require.NoError(t, err)
	tuple := row.NewRowTuple(tbl, got)
	v, err := tuple.CellAt(1)
	require.NoError(t, err)
	require.Equal(t, 1, v.Int())
}

func TestUpdateRecordKeepsIndexCoherent(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	idx := tbl.CreateIndex("idx_a", "a")

	rec, err := tbl.MakeRecord([]types.Value{types.IntValue(1)})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(rec))

	newRec, err := tbl.MakeRecord([]types.Value{types.IntValue(5)})
	require.NoError(t, err)
	require.NoError(t, tbl.UpdateRecord(rec, newRec))

	rids, err := idx.Scan(nil, types.IntValue(5), types.IntValue(5), true, true)
	require.NoError(t, err)
	require.Len(t, rids, 1)

	rids, err = idx.Scan(nil, types.IntValue(1), types.IntValue(1), true, true)
	require.NoError(t, err)
	require.Empty(t, rids)
}

func TestRecordScannerDrainsAllRows(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	for i := 0; i < 3; i++ {
		rec, err := tbl.MakeRecord([]types.Value{types.IntValue(i)})
		require.NoError(t, err)
		require.NoError(t, tbl.InsertRecord(rec))
	}

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
	require.Equal(t, 3, count)
}

func TestNullValueRoundTrips(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	rec, err := tbl.MakeRecord([]types.Value{types.NullValue()})
	require.NoError(t, err)
	require.NoError(t, tbl.InsertRecord(rec))

	tuple := row.NewRowTuple(tbl, rec)
	v, err := tuple.CellAt(1)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}
