package row

import "github.com/minidb/qcore/types"

// ColumnType distinguishes a materialized per-row buffer from a
// broadcast constant.
type ColumnType int

const (
	Normal ColumnType = iota
	Constant
)

// Column is a columnar batch of one attribute. Unlike the original's
// contiguous byte buffer sized by attr_len, this rewrite stores
// []types.Value directly: Value already carries its own kind/length and
// Go gives no safe way to reinterpret a byte slice as a typed array
// without `unsafe`, so the byte-packing layer buys nothing observable
// here while costing readability. Capacity/Count/NORMAL-vs-CONSTANT
// semantics are preserved exactly.
type Column struct {
	kind     types.Kind
	attrLen  int
	capacity int
	typ      ColumnType
	data     []types.Value
}

// NewColumn allocates an empty NORMAL column of the given kind/length/capacity.
func NewColumn(kind types.Kind, attrLen, capacity int) *Column {
	return &Column{kind: kind, attrLen: attrLen, capacity: capacity, typ: Normal, data: make([]types.Value, 0, capacity)}
}

// NewConstantColumn builds a CONSTANT column broadcasting v across count
// logical rows without materializing count copies.
func NewConstantColumn(v types.Value, count int) *Column {
	return &Column{kind: v.Kind(), attrLen: v.Length(), capacity: count, typ: Constant, data: []types.Value{v}}
}

func (c *Column) Kind() types.Kind    { return c.kind }
func (c *Column) AttrLen() int        { return c.attrLen }
func (c *Column) Capacity() int       { return c.capacity }
func (c *Column) Type() ColumnType    { return c.typ }
func (c *Column) IsConstant() bool    { return c.typ == Constant }
func (c *Column) Count() int {
	if c.typ == Constant {
		return c.capacity
	}
	return len(c.data)
}

// Append adds a value to a NORMAL column. It is a programming error to call
// Append on a CONSTANT column.
func (c *Column) Append(v types.Value) {
	c.data = append(c.data, v)
}

// At returns the logical i'th value: for a CONSTANT column every index
// broadcasts the single stored value.
func (c *Column) At(i int) types.Value {
	if c.typ == Constant {
		return c.data[0]
	}
	return c.data[i]
}

// Reset empties a NORMAL column for reuse across chunk fills; CONSTANT
// columns are immutable and Reset is a no-op for them.
func (c *Column) Reset() {
	if c.typ == Normal {
		c.data = c.data[:0]
	}
}

// Chunk is a columnar batch of rows, one Column per projected attribute,
// filled up to Capacity and exposing Count rows currently valid.
type Chunk struct {
	columns  []*Column
	specs    []TupleCellSpec
	capacity int
}

func NewChunk(capacity int) *Chunk {
	return &Chunk{capacity: capacity}
}

func (c *Chunk) Capacity() int { return c.capacity }

// Count reports how many rows are currently valid; all columns in a chunk
// share the same count by construction.
func (c *Chunk) Count() int {
	if len(c.columns) == 0 {
		return 0
	}
	return c.columns[0].Count()
}

func (c *Chunk) AddColumn(col *Column, spec TupleCellSpec) {
	c.columns = append(c.columns, col)
	c.specs = append(c.specs, spec)
}

func (c *Chunk) ColumnNum() int       { return len(c.columns) }
func (c *Chunk) ColumnAt(i int) *Column { return c.columns[i] }
func (c *Chunk) SpecAt(i int) TupleCellSpec { return c.specs[i] }

func (c *Chunk) Reset() {
	for _, col := range c.columns {
		col.Reset()
	}
}

// TupleAt returns a row-wise Tuple view onto logical row i of the chunk, for
// code paths (residual predicate evaluation, fallback expression
// evaluation) that still want a per-row Tuple instead of a columnar kernel.
func (c *Chunk) TupleAt(i int) Tuple {
	return &chunkTuple{chunk: c, row: i}
}

type chunkTuple struct {
	chunk *Chunk
	row   int
}

func (t *chunkTuple) CellNum() int { return t.chunk.ColumnNum() }

func (t *chunkTuple) CellAt(i int) (types.Value, error) {
	return t.chunk.ColumnAt(i).At(t.row), nil
}

func (t *chunkTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	for i, s := range t.chunk.specs {
		if s == spec {
			return t.chunk.ColumnAt(i).At(t.row), i, nil
		}
	}
	return types.Value{}, -1, errFieldMissing(spec)
}
