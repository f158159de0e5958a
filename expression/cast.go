package expression

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// Cast coerces its child's value to Kind, through only the defined
// coercions in types.Value.Typecast.
type Cast struct {
	header
	Child  row.Expression
	Target types.Kind
}

func NewCast(child row.Expression, target types.Kind) *Cast {
	return &Cast{header: newHeader(), Child: child, Target: target}
}

func (e *Cast) Type() row.ExprType    { return row.ExprCast }
func (e *Cast) ValueType() types.Kind { return e.Target }
func (e *Cast) ValueLength() int      { return e.Child.ValueLength() }

func (e *Cast) GetValue(t row.Tuple, out *types.Value) error {
	var v types.Value
	if err := e.Child.GetValue(t, &v); err != nil {
		return err
	}
	cast, err := v.Typecast(e.Target)
	if err != nil {
		return err
	}
	*out = cast
	return nil
}

func (e *Cast) TryGetValue(out *types.Value) (bool, error) {
	var v types.Value
	ok, err := e.Child.TryGetValue(&v)
	if err != nil || !ok {
		return false, err
	}
	cast, err := v.Typecast(e.Target)
	if err != nil {
		return false, err
	}
	*out = cast
	return true, nil
}

func (e *Cast) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	e.Child.Traverse(filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *Cast) TraverseCheck(check func(row.Expression) error) error {
	if err := e.Child.TraverseCheck(check); err != nil {
		return err
	}
	return check(e)
}

func (e *Cast) DeepCopy() row.Expression {
	cp := *e
	cp.Child = e.Child.DeepCopy()
	return &cp
}
