package rowexec

import (
	"github.com/sirupsen/logrus"

	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

var affectedRowsSpec = []row.TupleCellSpec{{Field: "rows_affected"}}

func affectedRowsRow(n int) row.Tuple {
	return row.NewValueListTuple(affectedRowsSpec, []types.Value{types.IntValue(n)})
}

// insertIter is the physical Insert operator: a leaf that, when pulled,
// materializes every VALUES row into a storage.Record (one value per
// visible column, handed to Table.MakeRecord, which leaves system and
// hidden columns to the storage layer) and inserts it through the
// transaction, then reports the affected row count as its single output
// row.
type insertIter struct {
	table storage.Table
	rows  [][]row.Expression
	trx   storage.Trx
	done  bool
}

func (it *insertIter) Next() (row.Tuple, error) {
	if it.done {
		return nil, rc.New(rc.RecordEOF, "")
	}
	it.done = true

	count := 0
	for _, exprs := range it.rows {
		values := make([]types.Value, len(exprs))
		for i, e := range exprs {
			if err := e.GetValue(nil, &values[i]); err != nil {
				return nil, err
			}
		}
		rec, err := it.table.MakeRecord(values)
		if err != nil {
			return nil, err
		}
		if err := it.trx.InsertRecord(it.table, rec); err != nil {
			return nil, err
		}
		count++
	}
	return affectedRowsRow(count), nil
}

func (it *insertIter) Close() error { return nil }

// deleteIter is the physical Delete operator: pulls every surviving row
// from Child (a TableGet(RW) -> [Predicate] chain over one table) and
// deletes it through the transaction.
type deleteIter struct {
	child plan.RowIter
	table storage.Table
	trx   storage.Trx
	done  bool
}

func (it *deleteIter) Next() (row.Tuple, error) {
	if it.done {
		return nil, rc.New(rc.RecordEOF, "")
	}
	it.done = true

	count := 0
	for {
		t, err := it.child.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				break
			}
			return nil, err
		}
		rt, ok := t.(*row.RowTuple)
		if !ok {
			return nil, rc.New(rc.Internal, "delete operator received a non-base-table row")
		}
		if err := it.trx.DeleteRecord(it.table, rt.Record); err != nil {
			return nil, err
		}
		count++
	}
	return affectedRowsRow(count), nil
}

func (it *deleteIter) Close() error { return it.child.Close() }

// updateIter is the physical Update operator: for every surviving row,
// construct a new record by applying Columns/ValueExprs over a copy of
// the old record's bytes, then hand both to Table.UpdateRecord, which
// keeps one row's own indexes coherent and rolls back to the old entry
// if the new one cannot be indexed (e.g. a unique-index conflict). That
// single-row rollback isn't enough on its own: if row 3 of a 3-row
// UPDATE fails, rows 1-2 are already applied and UpdateRecord has no
// notion of "this statement's earlier rows". So the operator itself
// keeps the pre-image (oldRecords) and post-image (newRecords) of every
// row it has successfully applied so far; on a later failure it replays
// UpdateRecord in reverse over exactly those rows, old-for-new, before
// surfacing the original error, restoring the pre-statement state.
type updateIter struct {
	child      plan.RowIter
	table      storage.Table
	columns    []string
	valueExprs []row.Expression
	done       bool
}

func (it *updateIter) Next() (row.Tuple, error) {
	if it.done {
		return nil, rc.New(rc.RecordEOF, "")
	}
	it.done = true

	meta := it.table.Meta()
	var oldRecords, newRecords []*storage.Record
	count := 0
	for {
		t, err := it.child.Next()
		if err != nil {
			if rc.Is(err, rc.RecordEOF) {
				break
			}
			return nil, err
		}
		rt, ok := t.(*row.RowTuple)
		if !ok {
			return nil, rc.New(rc.Internal, "update operator received a non-base-table row")
		}

		newData := make([]byte, len(rt.Record.Data))
		copy(newData, rt.Record.Data)
		newRec := &storage.Record{RID: rt.Record.RID, Data: newData}

		for i, col := range it.columns {
			fi := meta.FieldIndex(col)
			f := meta.Fields[fi]
			var v types.Value
			if err := it.valueExprs[i].GetValue(t, &v); err != nil {
				return nil, err
			}
			if v.IsNull() {
				if !f.Nullable {
					return nil, rc.New(rc.InvalidArgument, "column %q is not nullable", f.Name)
				}
				newRec.SetNull(meta, fi, true)
				continue
			}
			if v.Kind() != f.Kind {
				cast, err := v.Typecast(f.Kind)
				if err != nil {
					return nil, rc.Wrap(rc.SchemaFieldTypeMismatch, err, f.Name)
				}
				v = cast
			}
			newRec.SetNull(meta, fi, false)
			if err := row.EncodeCell(f, v, newRec.Data); err != nil {
				return nil, err
			}
		}

		if string(newRec.Data) == string(rt.Record.Data) {
			// byte-identical to the old record: nothing to apply or count
			continue
		}
		if err := it.table.UpdateRecord(rt.Record, newRec); err != nil {
			logrus.WithFields(logrus.Fields{
				"table":   it.table.Name(),
				"rid":     rt.Record.RID,
				"applied": len(newRecords),
			}).WithError(err).Warn("update operator: rolling back already-applied rows")
			it.rollback(oldRecords, newRecords)
			return nil, err
		}
		oldRecords = append(oldRecords, rt.Record)
		newRecords = append(newRecords, newRec)
		count++
	}
	return affectedRowsRow(count), nil
}

// rollback replays UpdateRecord in reverse, new-for-old, over every row
// this statement had already applied before the failure that triggered
// it. oldRecords[i]/newRecords[i] are that row's pre- and post-image;
// the table's current bytes for the RID are newRecords[i], so the
// replay call passes (newRecords[i], oldRecords[i]) to move it back.
func (it *updateIter) rollback(oldRecords, newRecords []*storage.Record) {
	for i := len(newRecords) - 1; i >= 0; i-- {
		if err := it.table.UpdateRecord(newRecords[i], oldRecords[i]); err != nil {
			logrus.WithFields(logrus.Fields{
				"table": it.table.Name(),
				"rid":   oldRecords[i].RID,
			}).WithError(err).Error("update operator: reverse replay failed, table state may be inconsistent")
		}
	}
}

func (it *updateIter) Close() error { return it.child.Close() }
