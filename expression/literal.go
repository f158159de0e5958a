package expression

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// Literal wraps a constant types.Value. It is named Literal, not Value,
// since the latter would collide with the types.Value type in Go — same
// semantics, a CONSTANT column broadcast.
type Literal struct {
	header
	val types.Value
}

func NewLiteral(v types.Value) *Literal {
	l := &Literal{header: newHeader(), val: v}
	l.SetName(v.String())
	return l
}

func (e *Literal) Type() row.ExprType    { return row.ExprValue }
func (e *Literal) ValueType() types.Kind { return e.val.Kind() }
func (e *Literal) ValueLength() int      { return e.val.Length() }

func (e *Literal) GetValue(t row.Tuple, out *types.Value) error {
	*out = e.val
	return nil
}

func (e *Literal) TryGetValue(out *types.Value) (bool, error) {
	*out = e.val
	return true, nil
}

func (e *Literal) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(e) {
		visit(e)
	}
}
func (e *Literal) TraverseCheck(check func(row.Expression) error) error { return check(e) }

func (e *Literal) DeepCopy() row.Expression {
	cp := *e
	return &cp
}

func (e *Literal) Value() types.Value { return e.val }
