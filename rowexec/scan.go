package rowexec

import (
	"context"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

func scanMode(tg *plan.TableGet) storage.ScanMode {
	if tg.ForUpdate {
		return storage.ReadWrite
	}
	return storage.ReadOnly
}

// buildTableGet lowers a bare TableGet (no predicate from an enclosing
// Predicate node was pushed down onto it) to a TableScan, carrying
// whatever residual predicates the logical plan already attached.
func buildTableGet(tg *plan.TableGet, trx storage.Trx) (plan.RowIter, error) {
	scanner, err := tg.Table.GetRecordScanner(scanMode(tg))
	if err != nil {
		return nil, err
	}
	return &tableScanIter{table: tg.Table, trx: trx, mode: scanMode(tg), scanner: scanner, predicates: tg.Predicates}, nil
}

// buildTableGetFiltered implements the index fast path: split
// expr's top-level AND conjuncts, and if one is an equality between a Field
// on tg.Table and a constant-valued operand matching an indexed column,
// lower to an IndexScan over that column; otherwise fall back to a
// TableScan carrying expr whole as the residual predicate. Either physical
// operator re-checks every conjunct per candidate row — an index only
// narrows the RID set, it never substitutes for predicate evaluation.
func buildTableGetFiltered(tg *plan.TableGet, expr row.Expression, trx storage.Trx) (plan.RowIter, error) {
	conjuncts := flattenAnd(expr)
	for _, c := range conjuncts {
		cmp, ok := c.(*expression.Comparison)
		if !ok || cmp.Op != expression.Eq {
			continue
		}
		field, v, ok := splitFieldConst(cmp, tg.Table.Name())
		if !ok {
			continue
		}
		idx, ok := tg.Table.FindIndexByField(field.Column)
		if !ok {
			continue
		}
		rids, err := idx.Scan(context.Background(), v, v, true, true)
		if err != nil {
			return nil, err
		}
		return &indexScanIter{table: tg.Table, trx: trx, mode: scanMode(tg), rids: rids, residual: conjuncts}, nil
	}

	scanner, err := tg.Table.GetRecordScanner(scanMode(tg))
	if err != nil {
		return nil, err
	}
	preds := append(append([]row.Expression{}, tg.Predicates...), conjuncts...)
	return &tableScanIter{table: tg.Table, trx: trx, mode: scanMode(tg), scanner: scanner, predicates: preds}, nil
}

// tableScanIter is the physical TableScan operator: a full heap scan,
// filtering by transaction visibility then by any residual predicates.
type tableScanIter struct {
	table      storage.Table
	trx        storage.Trx
	mode       storage.ScanMode
	scanner    storage.RecordFileScanner
	predicates []row.Expression
}

func (it *tableScanIter) Next() (row.Tuple, error) {
	for {
		rec, err := it.scanner.Next(context.Background())
		if err != nil {
			return nil, err
		}
		visible, err := it.trx.VisitRecord(it.table, rec, it.mode)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		t := row.NewRowTuple(it.table, rec)
		ok, err := evalAllTrue(it.predicates, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		return t, nil
	}
}

func (it *tableScanIter) Close() error { return it.scanner.Close() }

// indexScanIter is the physical IndexScan operator: walks the RIDs an
// index lookup returned, re-applying the full residual predicate list per
// row.
type indexScanIter struct {
	table    storage.Table
	trx      storage.Trx
	mode     storage.ScanMode
	rids     []storage.RID
	residual []row.Expression
	pos      int
}

func (it *indexScanIter) Next() (row.Tuple, error) {
	for it.pos < len(it.rids) {
		rid := it.rids[it.pos]
		it.pos++
		rec, err := it.table.GetRecord(rid)
		if err != nil {
			return nil, err
		}
		visible, err := it.trx.VisitRecord(it.table, rec, it.mode)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		t := row.NewRowTuple(it.table, rec)
		ok, err := evalAllTrue(it.residual, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		return t, nil
	}
	return nil, rc.New(rc.RecordEOF, "")
}

func (it *indexScanIter) Close() error { return nil }
