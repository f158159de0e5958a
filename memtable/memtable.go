// Package memtable is an in-memory reference implementation of the
// storage collaborator contract (storage.Table/Index/Trx/Database),
// grounded on dolthub/go-mysql-server's `memory` package: a slice-backed
// heap with a sorted-slice index, used only by this module's tests to
// exercise the binder/planner/operator pipeline against real data, never
// by the core itself.
package memtable

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

// Database is a named collection of in-memory Tables.
type Database struct {
	name   string
	tables map[string]*Table
}

func NewDatabase(name string) *Database {
	return &Database{name: name, tables: map[string]*Table{}}
}

func (d *Database) Name() string { return d.name }

func (d *Database) Table(name string) (storage.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

func (d *Database) CreateTable(meta *storage.TableMeta) *Table {
	t := &Table{meta: meta, indexes: map[string]*Index{}}
	d.tables[meta.TableName] = t
	return t
}

// Table is a heap of records kept in insertion order, plus zero or more
// Indexes. RIDs are allocated as monotonically increasing page numbers (one
// record per "page") since memtable never evicts.
type Table struct {
	meta    *storage.TableMeta
	records []*storage.Record
	nextRID int64
	indexes map[string]*Index
	textPool []byte
}

func (t *Table) Name() string             { return t.meta.TableName }
func (t *Table) Meta() *storage.TableMeta { return t.meta }

func (t *Table) CreateIndex(name, fieldName string) *Index {
	idx := &Index{name: name, fieldName: fieldName, table: t}
	t.indexes[name] = idx
	for _, rec := range t.records {
		_ = idx.InsertEntry(rec, rec.RID)
	}
	return idx
}

func (t *Table) MakeRecord(values []types.Value) (*storage.Record, error) {
	var cols []int
	for i, f := range t.meta.Fields {
		if !f.System && f.Visible {
			cols = append(cols, i)
		}
	}
	if len(values) != len(cols) {
		return nil, rc.New(rc.InvalidArgument, "expected %d values, got %d", len(cols), len(values))
	}
	rec := &storage.Record{Data: make([]byte, t.meta.RecordSize)}
	for vi, i := range cols {
		f := t.meta.Fields[i]
		v := values[vi]
		if v.IsNull() {
			if !f.Nullable {
				return nil, rc.New(rc.InvalidArgument, "field %q is not nullable", f.Name)
			}
			rec.SetNull(t.meta, i, true)
			continue
		}
		if v.Kind() != f.Kind {
			cast, err := v.Typecast(f.Kind)
			if err != nil {
				return nil, rc.Wrap(rc.SchemaFieldTypeMismatch, err, f.Name)
			}
			v = cast
		}
		if f.Kind == types.Text {
			offset, length, err := t.WriteText(v.String())
			if err != nil {
				return nil, err
			}
			v = types.TextHandle(offset, length)
		}
		if err := row.EncodeCell(f, v, rec.Data); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// InsertRecord appends rec to the heap and indexes it; if any index entry
// fails (e.g. a unique-index conflict), every index entry already added for
// this record is rolled back and the record is removed from the heap, so a
// failed insert never leaves a partially-indexed row behind.
func (t *Table) InsertRecord(rec *storage.Record) error {
	rec.RID = storage.RID{PageNum: t.nextRID}
	t.nextRID++
	t.records = append(t.records, rec)
	var done []*Index
	for _, idx := range t.indexes {
		if err := idx.InsertEntry(rec, rec.RID); err != nil {
			for _, d := range done {
				_ = d.DeleteEntry(rec, rec.RID)
			}
			t.records = t.records[:len(t.records)-1]
			return err
		}
		done = append(done, idx)
	}
	return nil
}

func (t *Table) findIndex(rid storage.RID) int {
	for i, r := range t.records {
		if r.RID == rid {
			return i
		}
	}
	return -1
}

func (t *Table) DeleteRecord(rid storage.RID) error {
	i := t.findIndex(rid)
	if i < 0 {
		return rc.New(rc.RecordInvalidKey, "no record with rid %v", rid)
	}
	rec := t.records[i]
	for _, idx := range t.indexes {
		if err := idx.DeleteEntry(rec, rid); err != nil {
			return err
		}
	}
	t.records = append(t.records[:i], t.records[i+1:]...)
	return nil
}

func (t *Table) GetRecord(rid storage.RID) (*storage.Record, error) {
	i := t.findIndex(rid)
	if i < 0 {
		return nil, rc.New(rc.RecordInvalidKey, "no record with rid %v", rid)
	}
	return t.records[i], nil
}

// UpdateRecord replaces old's bytes in place with newRec's, keeping
// indexes coherent by deleting the old entry and inserting the new one;
// on insert failure it restores the old entry so index state never
// diverges from the record it describes.
func (t *Table) UpdateRecord(old, newRec *storage.Record) error {
	i := t.findIndex(old.RID)
	if i < 0 {
		return rc.New(rc.RecordInvalidKey, "no record with rid %v", old.RID)
	}
	for _, idx := range t.indexes {
		if err := idx.DeleteEntry(old, old.RID); err != nil {
			return err
		}
	}
	newRec.RID = old.RID
	var done []*Index
	for _, idx := range t.indexes {
		if err := idx.InsertEntry(newRec, old.RID); err != nil {
			for _, d := range done {
				_ = d.DeleteEntry(newRec, old.RID)
			}
			for _, idx2 := range t.indexes {
				_ = idx2.InsertEntry(old, old.RID)
			}
			return err
		}
		done = append(done, idx)
	}
	t.records[i] = newRec
	return nil
}

func (t *Table) VisitRecord(rid storage.RID, predicate func(*storage.Record) bool) error {
	rec, err := t.GetRecord(rid)
	if err != nil {
		return err
	}
	predicate(rec)
	return nil
}

func (t *Table) GetRecordScanner(mode storage.ScanMode) (storage.RecordFileScanner, error) {
	snapshot := make([]*storage.Record, len(t.records))
	copy(snapshot, t.records)
	return &recordScanner{records: snapshot}, nil
}

func (t *Table) GetChunkScanner(mode storage.ScanMode) (storage.ChunkFileScanner, error) {
	snapshot := make([]*storage.Record, len(t.records))
	copy(snapshot, t.records)
	return &chunkScanner{table: t, records: snapshot}, nil
}

func (t *Table) FindIndex(name string) (storage.Index, bool) {
	idx, ok := t.indexes[name]
	return idx, ok
}

func (t *Table) FindIndexByField(fieldName string) (storage.Index, bool) {
	for _, idx := range t.indexes {
		if idx.fieldName == fieldName {
			return idx, true
		}
	}
	return nil, false
}

func (t *Table) WriteText(data string) (int64, int64, error) {
	offset := int64(len(t.textPool))
	t.textPool = append(t.textPool, data...)
	return offset, int64(len(data)), nil
}

func (t *Table) ReadText(offset, length int64) (string, error) {
	if offset < 0 || offset+length > int64(len(t.textPool)) {
		return "", rc.New(rc.Internal, "text handle (%d,%d) out of range", offset, length)
	}
	return string(t.textPool[offset : offset+length]), nil
}

type recordScanner struct {
	records []*storage.Record
	i       int
}

func (s *recordScanner) Next(ctx context.Context) (*storage.Record, error) {
	if s.i >= len(s.records) {
		return nil, rc.New(rc.RecordEOF, "")
	}
	rec := s.records[s.i]
	s.i++
	return rec, nil
}

func (s *recordScanner) Close() error { return nil }

const defaultChunkCapacity = 1024

type chunkScanner struct {
	table   *Table
	records []*storage.Record
	i       int
}

func (s *chunkScanner) Next(ctx context.Context, dst *storage.Chunk) error {
	dst.Meta = s.table.meta
	dst.Columns = map[int][]types.Value{}
	dst.Count = 0
	if s.i >= len(s.records) {
		return rc.New(rc.RecordEOF, "")
	}
	for dst.Count < defaultChunkCapacity && s.i < len(s.records) {
		rec := s.records[s.i]
		tuple := row.NewRowTuple(s.table, rec)
		for fi := range s.table.meta.Fields {
			v, err := tuple.CellAt(fi)
			if err != nil {
				return err
			}
			dst.Columns[fi] = append(dst.Columns[fi], v)
		}
		dst.Count++
		s.i++
	}
	if s.i >= len(s.records) {
		return rc.New(rc.RecordEOF, "")
	}
	return nil
}

func (s *chunkScanner) Close() error { return nil }

// Index is a sorted-slice index over one field: memtable's stand-in for
// the B+-tree the real engine uses, chosen per SPEC_FULL.md because the
// on-disk index formats (boltdb/pilosa) are named external collaborators,
// not reimplemented here.
type Index struct {
	name      string
	fieldName string
	table     *Table
	entries   []indexEntry
}

type indexEntry struct {
	value types.Value
	rid   storage.RID
}

func (idx *Index) Name() string      { return idx.name }
func (idx *Index) FieldName() string { return idx.fieldName }

func (idx *Index) fieldIndex() int {
	return idx.table.meta.FieldIndex(idx.fieldName)
}

func (idx *Index) InsertEntry(rec *storage.Record, rid storage.RID) error {
	fi := idx.fieldIndex()
	v, err := row.NewRowTuple(idx.table, rec).CellAt(fi)
	if err != nil {
		return err
	}
	i := sort.Search(len(idx.entries), func(i int) bool {
		c, _ := idx.entries[i].value.Compare(v)
		return c >= 0
	})
	idx.entries = append(idx.entries, indexEntry{})
	copy(idx.entries[i+1:], idx.entries[i:])
	idx.entries[i] = indexEntry{value: v, rid: rid}
	return nil
}

func (idx *Index) DeleteEntry(rec *storage.Record, rid storage.RID) error {
	for i, e := range idx.entries {
		if e.rid == rid {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return nil
		}
	}
	return rc.New(rc.RecordInvalidKey, "no index entry for rid %v", rid)
}

func (idx *Index) Sync() error { return nil }

func (idx *Index) Scan(ctx context.Context, lo, hi types.Value, loInclusive, hiInclusive bool) ([]storage.RID, error) {
	var out []storage.RID
	for _, e := range idx.entries {
		if !lo.IsNull() {
			c, err := e.value.Compare(lo)
			if err != nil {
				return nil, err
			}
			if c < 0 || (c == 0 && !loInclusive) {
				continue
			}
		}
		if !hi.IsNull() {
			c, err := e.value.Compare(hi)
			if err != nil {
				return nil, err
			}
			if c > 0 || (c == 0 && !hiInclusive) {
				continue
			}
		}
		out = append(out, e.rid)
	}
	return out, nil
}

// Trx is memtable's reference transaction: every record is immediately
// visible to every session (no MVCC), matching the contract's minimum
// shape while leaving the real protocol to the (out-of-scope) MVCC
// transaction manager.
type Trx struct {
	id uuid.UUID
}

func NewTrx() *Trx { return &Trx{id: uuid.New()} }

func (tx *Trx) ID() string        { return tx.id.String() }
func (tx *Trx) StartIfNeed() error { return nil }

func (tx *Trx) InsertRecord(tbl storage.Table, rec *storage.Record) error {
	return tbl.InsertRecord(rec)
}

func (tx *Trx) DeleteRecord(tbl storage.Table, rec *storage.Record) error {
	return tbl.DeleteRecord(rec.RID)
}

func (tx *Trx) VisitRecord(tbl storage.Table, rec *storage.Record, mode storage.ScanMode) (bool, error) {
	return true, nil
}

func (tx *Trx) Commit() error   { return nil }
func (tx *Trx) Rollback() error { return nil }
