// Package storage names the collaborator contract the query execution core
// consumes but does not implement: the buffer pool, B+-tree index, record
// file handler, write-ahead log, and MVCC transaction manager all live
// behind these interfaces. The only implementation in this
// module is memtable, an in-memory reference used solely by tests.
package storage

import (
	"context"

	"github.com/minidb/qcore/types"
)

// RID identifies a record within a table as a (page_num, slot_num) pair.
type RID struct {
	PageNum int64
	SlotNum int32
}

// FieldMeta describes one column's storage shape.
type FieldMeta struct {
	Name     string
	Offset   int
	Length   int
	Kind     types.Kind
	Nullable bool
	Visible  bool
	System   bool
}

// StorageFormat distinguishes the row-major record layout from a columnar
// one. It is table metadata only: the physical plan generators do not read
// it (the caller picks rowexec.DefaultBuilder or rowexec.VecBuilder).
type StorageFormat int

const (
	RowFormat StorageFormat = iota
	ColumnFormat
)

// TableMeta is a table's fixed schema: an ordered FieldMeta list (system
// columns first), the null-bitmap column's position, and the record's total
// byte size.
type TableMeta struct {
	TableName     string
	Fields        []FieldMeta
	SysFieldNum   int
	NullFieldIdx  int // index into Fields of the null-bitmap column
	RecordSize    int
	Format        StorageFormat
}

// FieldByName returns the FieldMeta for name, and whether it was found.
func (m *TableMeta) FieldByName(name string) (FieldMeta, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMeta{}, false
}

// FieldIndex returns the ordinal position of name among Fields.
func (m *TableMeta) FieldIndex(name string) int {
	for i, f := range m.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Record is a single row's raw storage representation: a fixed-size byte
// array plus its identity. Columns are decoded from it through TableMeta's
// field offsets; a RowTuple is the typed view over a Record.
type Record struct {
	RID  RID
	Data []byte
}

// IsNull reports whether the bit for field index idx is set in the record's
// null-bitmap column.
func (r *Record) IsNull(meta *TableMeta, idx int) bool {
	bitmapOffset := meta.Fields[meta.NullFieldIdx].Offset
	byteIdx := idx / 8
	bitIdx := uint(idx % 8)
	return r.Data[bitmapOffset+byteIdx]&(1<<bitIdx) != 0
}

// SetNull sets or clears the null-bitmap bit for field index idx.
func (r *Record) SetNull(meta *TableMeta, idx int, isNull bool) {
	bitmapOffset := meta.Fields[meta.NullFieldIdx].Offset
	byteIdx := idx / 8
	bitIdx := uint(idx % 8)
	if isNull {
		r.Data[bitmapOffset+byteIdx] |= 1 << bitIdx
	} else {
		r.Data[bitmapOffset+byteIdx] &^= 1 << bitIdx
	}
}

// ScanMode selects the access mode a scanner or transaction opens with:
// read-only scans never take write locks, RW scans (used by Update/Delete)
// may.
type ScanMode int

const (
	ReadOnly ScanMode = iota
	ReadWrite
)

// RecordFileScanner iterates a table's heap storage one Record at a time,
// the row-pipeline counterpart of ChunkFileScanner.
type RecordFileScanner interface {
	Next(ctx context.Context) (*Record, error) // io.EOF at exhaustion
	Close() error
}

// ChunkFileScanner iterates a table's heap storage a columnar chunk at a
// time for the vectorized operator family.
type ChunkFileScanner interface {
	// Next fills dst up to its capacity and returns io.EOF on the final
	// (possibly partial) batch.
	Next(ctx context.Context, dst *Chunk) error
	Close() error
}

// Chunk is the storage-layer columnar batch a ChunkFileScanner fills: raw
// per-column value slices keyed by field index, decoded directly from the
// table's column-major storage format.
type Chunk struct {
	Meta    *TableMeta
	Columns map[int][]types.Value
	Count   int
}

// Index is a single index's collaborator contract: insert/delete a record's
// entry, and flush pending writes.
type Index interface {
	Name() string
	FieldName() string
	InsertEntry(rec *Record, rid RID) error
	DeleteEntry(rec *Record, rid RID) error
	Sync() error
	// Scan returns RIDs in the range between lo and hi, each end inclusive
	// per its flag; either bound may be a NULL Value to mean unbounded on
	// that side.
	Scan(ctx context.Context, lo, hi types.Value, loInclusive, hiInclusive bool) ([]RID, error)
}

// Trx is the capability the execution core consumes from the MVCC
// transaction manager: visibility-filtered mutation and read hooks. The
// manager's protocol internals (begin/end txn ids, undo chains) are out of
// scope; the core only calls these methods.
type Trx interface {
	ID() string
	StartIfNeed() error
	InsertRecord(tbl Table, rec *Record) error
	DeleteRecord(tbl Table, rec *Record) error
	// VisitRecord reports whether rec is visible to this transaction under
	// mode (read-only visits never block; ReadWrite visits may take a
	// row lock).
	VisitRecord(tbl Table, rec *Record, mode ScanMode) (visible bool, err error)
	Commit() error
	Rollback() error
}

// Table is the collaborator contract for one table's storage: record CRUD,
// scanners, index lookup, and the TEXT buffer pool.
type Table interface {
	Name() string
	Meta() *TableMeta

	// MakeRecord encodes values, one per visible non-system column in
	// table-meta column order, into a new Record, ready for InsertRecord.
	// System and hidden columns take no value. It does not assign a RID.
	MakeRecord(values []types.Value) (*Record, error)
	InsertRecord(rec *Record) error
	DeleteRecord(rid RID) error
	GetRecord(rid RID) (*Record, error)
	// UpdateRecord atomically replaces the bytes at old.RID with newRec's
	// payload, keeping indexes coherent (delete old entries, insert new
	// ones, symmetric rollback on failure).
	UpdateRecord(old, newRec *Record) error
	// VisitRecord calls predicate with the record at rid, or returns an
	// error if there is none.
	VisitRecord(rid RID, predicate func(*Record) bool) error

	GetRecordScanner(mode ScanMode) (RecordFileScanner, error)
	GetChunkScanner(mode ScanMode) (ChunkFileScanner, error)

	FindIndex(name string) (Index, bool)
	FindIndexByField(fieldName string) (Index, bool)

	WriteText(data string) (offset, length int64, err error)
	ReadText(offset, length int64) (string, error)
}

// Database resolves table names to Table handles for the binder's FROM
// resolution step.
type Database interface {
	Name() string
	Table(name string) (Table, bool)
}
