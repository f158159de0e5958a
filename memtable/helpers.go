package memtable

import (
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

// NewIntTable is a test/example convenience: builds a table with a
// leading 1-byte null-bitmap column followed by len(columns) INT(4)
// columns, all nullable. Production table metadata is built by the DDL
// layer (out of scope); this exists so binder/planner/operator tests have
// a quick concrete schema to exercise.
func NewIntTable(db *Database, name string, columns ...string) *Table {
	fields := make([]storage.FieldMeta, 0, len(columns)+1)
	offset := 0
	fields = append(fields, storage.FieldMeta{Name: "__null", Offset: 0, Length: 1, System: true})
	offset = 1
	for _, c := range columns {
		fields = append(fields, storage.FieldMeta{
			Name: c, Offset: offset, Length: 4, Kind: types.Int, Nullable: true, Visible: true,
		})
		offset += 4
	}
	meta := &storage.TableMeta{
		TableName:    name,
		Fields:       fields,
		SysFieldNum:  1,
		NullFieldIdx: 0,
		RecordSize:   offset,
	}
	return db.CreateTable(meta)
}
