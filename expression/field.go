package expression

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// Field reads the value of one bound (table, column) cell from a tuple. It
// caches the cell index FindCell resolves on first GetValue, so repeated
// evaluation against rows of the same shape never re-resolves the index.
type Field struct {
	header
	Table     string
	Column    string
	kind      types.Kind
	length    int
	cachedIdx int
}

func NewField(table, column string, kind types.Kind, length int) *Field {
	f := &Field{header: newHeader(), Table: table, Column: column, kind: kind, length: length, cachedIdx: -1}
	f.SetName(column)
	return f
}

func (e *Field) Type() row.ExprType    { return row.ExprField }
func (e *Field) ValueType() types.Kind { return e.kind }
func (e *Field) ValueLength() int      { return e.length }

func (e *Field) spec() row.TupleCellSpec {
	return row.TupleCellSpec{Table: e.Table, Field: e.Column}
}

func (e *Field) GetValue(t row.Tuple, out *types.Value) error {
	if e.Pos() >= 0 {
		v, err := t.CellAt(e.Pos())
		if err != nil {
			return err
		}
		*out = v
		return nil
	}
	if e.cachedIdx >= 0 && e.cachedIdx < t.CellNum() {
		if v, err := t.CellAt(e.cachedIdx); err == nil {
			*out = v
			return nil
		}
	}
	v, idx, err := t.FindCell(e.spec())
	if err != nil {
		return err
	}
	e.cachedIdx = idx
	*out = v
	return nil
}

func (e *Field) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *Field) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(e) {
		visit(e)
	}
}
func (e *Field) TraverseCheck(check func(row.Expression) error) error { return check(e) }

func (e *Field) DeepCopy() row.Expression {
	cp := *e
	cp.cachedIdx = -1
	return &cp
}
