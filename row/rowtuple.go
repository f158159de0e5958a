package row

import (
	"math"

	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

// RowTuple is a view onto one storage.Record decoded through its table's
// TableMeta, the cheapest Tuple variant since it copies nothing beyond the
// decoded cell on access.
type RowTuple struct {
	Table  storage.Table
	Record *storage.Record
}

func NewRowTuple(tbl storage.Table, rec *storage.Record) *RowTuple {
	return &RowTuple{Table: tbl, Record: rec}
}

func (t *RowTuple) CellNum() int { return len(t.Table.Meta().Fields) }

func (t *RowTuple) CellAt(i int) (types.Value, error) {
	meta := t.Table.Meta()
	if i < 0 || i >= len(meta.Fields) {
		return types.Value{}, rcInternal("row tuple cell %d out of range", i)
	}
	if i == meta.NullFieldIdx {
		// the null-bitmap column carries no SQL value of its own
		return types.NullValue(), nil
	}
	f := meta.Fields[i]
	if t.Record.IsNull(meta, i) {
		return types.NullValue(), nil
	}
	return decodeCell(f, t.Record.Data)
}

func (t *RowTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	meta := t.Table.Meta()
	for i, f := range meta.Fields {
		if f.Name != spec.Field {
			continue
		}
		if spec.Table != "" && spec.Table != t.Table.Name() {
			continue
		}
		v, err := t.CellAt(i)
		return v, i, err
	}
	return types.Value{}, -1, errFieldMissing(spec)
}

func (t *RowTuple) SpecAt(i int) TupleCellSpec {
	f := t.Table.Meta().Fields[i]
	return TupleCellSpec{Table: t.Table.Name(), Field: f.Name}
}

// decodeCell parses the raw bytes at a field's declared offset/length
// according to its kind, mirroring the fixed-layout decode the original's
// record handler performs.
func decodeCell(f storage.FieldMeta, data []byte) (types.Value, error) {
	buf := data[f.Offset : f.Offset+f.Length]
	switch f.Kind {
	case types.Int:
		return types.IntValue(int(int32(le32(buf)))), nil
	case types.Long:
		return types.LongValue(int64(le64(buf))), nil
	case types.Float:
		return types.FloatValue(math.Float32frombits(le32(buf))), nil
	case types.Double:
		return types.DoubleValue(math.Float64frombits(le64(buf))), nil
	case types.Boolean:
		return types.BoolValue(buf[0] != 0), nil
	case types.Chars:
		return types.CharsValue(trimNulls(buf)), nil
	case types.Date:
		d, err := types.ParseDate(trimNulls(buf))
		if err != nil {
			return types.Value{}, err
		}
		return types.DateVal(d), nil
	case types.Text:
		offset := int64(le64(buf[0:8]))
		length := int64(le64(buf[8:16]))
		return types.TextHandle(offset, length), nil
	default:
		return types.Value{}, rcInternal("cannot decode field kind %s", f.Kind)
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func trimNulls(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// EncodeCell writes v's bytes into buf at field f's declared offset/length,
// the inverse of decodeCell. Used by storage.Table implementations'
// MakeRecord and by the Update operator to build the fixed-layout record
// byte array.
// buf must be at least f.Offset+f.Length bytes.
func EncodeCell(f storage.FieldMeta, v types.Value, buf []byte) error {
	dst := buf[f.Offset : f.Offset+f.Length]
	switch f.Kind {
	case types.Int:
		putLE32(dst, uint32(int32(v.Int())))
	case types.Long:
		putLE64(dst, uint64(int64(v.Int())))
	case types.Float:
		putLE32(dst, math.Float32bits(float32(v.Float64())))
	case types.Double:
		putLE64(dst, math.Float64bits(v.Float64()))
	case types.Boolean:
		if v.Bool() {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case types.Chars:
		copy(dst, v.String())
	case types.Date:
		copy(dst, v.Date().String())
	case types.Text:
		offset, length := v.TextHandleParts()
		putLE64(dst[0:8], uint64(offset))
		putLE64(dst[8:16], uint64(length))
	default:
		return rcInternal("cannot encode field kind %s", f.Kind)
	}
	return nil
}
