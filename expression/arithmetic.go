package expression

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Negate // unary
)

// Arithmetic evaluates `+ - * / -u` over two (or, for Negate, one) child
// expressions. `INT op INT` (op != Div) stays INT; any
// FLOAT/DOUBLE operand promotes the result; division always promotes to
// FLOAT. Division by a zero (or near-zero, |x|<epsilon) divisor yields NULL
// rather than a numeric-kind maximum sentinel, since NULL is the
// first-class way to express "no defined result" here.
type Arithmetic struct {
	header
	Op          ArithOp
	Left, Right row.Expression // Right is nil for Negate
}

func NewArithmetic(op ArithOp, left, right row.Expression) *Arithmetic {
	return &Arithmetic{header: newHeader(), Op: op, Left: left, Right: right}
}

func (e *Arithmetic) Type() row.ExprType { return row.ExprArithmetic }

func (e *Arithmetic) ValueType() types.Kind {
	if e.Op == Div {
		return types.Float
	}
	if isFloatKind(e.Left.ValueType()) || (e.Right != nil && isFloatKind(e.Right.ValueType())) {
		return types.Float
	}
	return types.Int
}

func isFloatKind(k types.Kind) bool { return k == types.Float || k == types.Double }

func (e *Arithmetic) ValueLength() int { return 4 }

func (e *Arithmetic) GetValue(t row.Tuple, out *types.Value) error {
	var l, r types.Value
	if err := e.Left.GetValue(t, &l); err != nil {
		return err
	}
	if l.IsNull() {
		*out = types.NullValue()
		return nil
	}
	if e.Op == Negate {
		return e.evalNegate(l, out)
	}
	if err := e.Right.GetValue(t, &r); err != nil {
		return err
	}
	if r.IsNull() {
		*out = types.NullValue()
		return nil
	}
	return e.evalBinary(l, r, out)
}

func (e *Arithmetic) evalNegate(l types.Value, out *types.Value) error {
	switch l.Kind() {
	case types.Int, types.Long:
		*out = types.IntValue(-l.Int())
	case types.Float, types.Double:
		*out = types.FloatValue(float32(-l.Float64()))
	default:
		return rc.New(rc.InvalidArgument, "cannot negate %s", l.Kind())
	}
	return nil
}

const epsilonZero = 1e-6

func (e *Arithmetic) evalBinary(l, r types.Value, out *types.Value) error {
	bothInt := (l.Kind() == types.Int || l.Kind() == types.Long) && (r.Kind() == types.Int || r.Kind() == types.Long)

	switch e.Op {
	case Add:
		if bothInt {
			*out = types.IntValue(l.Int() + r.Int())
		} else {
			*out = types.FloatValue(float32(l.Float64() + r.Float64()))
		}
	case Sub:
		if bothInt {
			*out = types.IntValue(l.Int() - r.Int())
		} else {
			*out = types.FloatValue(float32(l.Float64() - r.Float64()))
		}
	case Mul:
		if bothInt {
			*out = types.IntValue(l.Int() * r.Int())
		} else {
			*out = types.FloatValue(float32(l.Float64() * r.Float64()))
		}
	case Div:
		rf := r.Float64()
		if rf < epsilonZero && rf > -epsilonZero {
			*out = types.NullValue()
			return nil
		}
		*out = types.FloatValue(float32(l.Float64() / rf))
	default:
		return rc.New(rc.Internal, "unknown arithmetic op %d", e.Op)
	}
	return nil
}

func (e *Arithmetic) TryGetValue(out *types.Value) (bool, error) {
	var lv, rv types.Value
	lok, err := e.Left.TryGetValue(&lv)
	if err != nil || !lok {
		return false, err
	}
	if e.Op == Negate {
		if err := e.evalNegate(lv, out); err != nil {
			return false, err
		}
		return true, nil
	}
	rok, err := e.Right.TryGetValue(&rv)
	if err != nil || !rok {
		return false, err
	}
	if err := e.evalBinary(lv, rv, out); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Arithmetic) children() []row.Expression {
	if e.Right != nil {
		return []row.Expression{e.Left, e.Right}
	}
	return []row.Expression{e.Left}
}

func (e *Arithmetic) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.children(), filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *Arithmetic) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.children(), check); err != nil {
		return err
	}
	return check(e)
}

func (e *Arithmetic) DeepCopy() row.Expression {
	cp := *e
	cp.Left = e.Left.DeepCopy()
	if e.Right != nil {
		cp.Right = e.Right.DeepCopy()
	}
	return &cp
}
