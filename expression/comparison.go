package expression

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	In
	NotIn
	Exists
	NotExists
	IsNull
	IsNotNull
)

// subqueryOperand is satisfied by plan.Subquery (and, for Reset/Next, by
// ExprList), exposed here as a narrow structural interface so the comparison package
// does not need to import whatever package the subquery execution hook
// lives in. It mirrors row.Expression's GetValue when used as a scalar
// subquery on the Comparison right-hand side, plus the Exists-style open
// semantics the EXISTS/NOT EXISTS/IN operators need.
type subqueryOperand interface {
	row.Expression
	// HasAnyRow opens the subquery and reports whether it produces at
	// least one row, for EXISTS/NOT EXISTS.
	HasAnyRow(outer row.Tuple) (bool, error)
	// Reset rewinds an ExprList/subquery RHS so IN's iteration restarts.
	Reset()
	// Next advances a multi-row RHS (ExprList or subquery) to its next
	// value; returns io.EOF when exhausted.
	Next(outer row.Tuple, out *types.Value) error
}

// Comparison evaluates one of `=, <>, <, <=, >, >=, IN, NOT IN, EXISTS, NOT
// EXISTS, IS NULL, IS NOT NULL`. Left is nil for
// EXISTS/NOT EXISTS (the right side alone, a subquery, is evaluated); Right
// is nil for IS NULL/IS NOT NULL.
type Comparison struct {
	header
	Op          CompareOp
	Left, Right row.Expression
}

func NewComparison(op CompareOp, left, right row.Expression) *Comparison {
	return &Comparison{header: newHeader(), Op: op, Left: left, Right: right}
}

func (e *Comparison) Type() row.ExprType    { return row.ExprComparison }
func (e *Comparison) ValueType() types.Kind { return types.Boolean }
func (e *Comparison) ValueLength() int      { return 1 }

func (e *Comparison) GetValue(t row.Tuple, out *types.Value) error {
	switch e.Op {
	case IsNull, IsNotNull:
		var l types.Value
		if err := e.Left.GetValue(t, &l); err != nil {
			return err
		}
		if e.Op == IsNull {
			*out = types.BoolValue(l.IsNull())
		} else {
			*out = types.BoolValue(!l.IsNull())
		}
		return nil
	case Exists, NotExists:
		sq, ok := e.Right.(subqueryOperand)
		if !ok {
			return rc.New(rc.Internal, "EXISTS requires a subquery operand")
		}
		has, err := sq.HasAnyRow(t)
		if err != nil {
			return err
		}
		if e.Op == Exists {
			*out = types.BoolValue(has)
		} else {
			*out = types.BoolValue(!has)
		}
		return nil
	case In, NotIn:
		return e.evalIn(t, out)
	default:
		return e.evalRelational(t, out)
	}
}

func (e *Comparison) evalRelational(t row.Tuple, out *types.Value) error {
	var l, r types.Value
	if err := e.Left.GetValue(t, &l); err != nil {
		return err
	}
	if err := e.Right.GetValue(t, &r); err != nil {
		return err
	}
	if l.IsNull() || r.IsNull() {
		*out = types.NullValue()
		return nil
	}
	c, err := l.Compare(r)
	if err != nil {
		return rc.Wrap(rc.InvalidArgument, err, "comparison")
	}
	var b bool
	switch e.Op {
	case Eq:
		b = c == 0
	case Ne:
		b = c != 0
	case Lt:
		b = c < 0
	case Le:
		b = c <= 0
	case Gt:
		b = c > 0
	case Ge:
		b = c >= 0
	}
	*out = types.BoolValue(b)
	return nil
}

// evalIn implements IN semantics exactly: left evaluated
// once; if left is NULL, both IN and NOT IN are false; iterate right
// (resetting an ExprList/subquery RHS first); a match makes IN true / NOT
// IN false; absent a match, IN is false and NOT IN is true unless some
// right element was itself NULL, in which case NOT IN is false.
func (e *Comparison) evalIn(t row.Tuple, out *types.Value) error {
	var l types.Value
	if err := e.Left.GetValue(t, &l); err != nil {
		return err
	}
	if l.IsNull() {
		*out = types.BoolValue(false)
		return nil
	}

	rhs, ok := e.Right.(subqueryOperand)
	if !ok {
		return rc.New(rc.Internal, "IN/NOT IN requires an ExprList or subquery operand")
	}
	rhs.Reset()

	sawNull := false
	for {
		var rv types.Value
		err := rhs.Next(t, &rv)
		if rc.Is(err, rc.RecordEOF) {
			break
		}
		if err != nil {
			return err
		}
		if rv.IsNull() {
			sawNull = true
			continue
		}
		c, err := l.Compare(rv)
		if err != nil {
			return rc.Wrap(rc.InvalidArgument, err, "IN comparison")
		}
		if c == 0 {
			*out = types.BoolValue(e.Op == In)
			return nil
		}
	}
	if e.Op == In {
		*out = types.BoolValue(false)
		return nil
	}
	*out = types.BoolValue(!sawNull)
	return nil
}

func (e *Comparison) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *Comparison) children() []row.Expression {
	var c []row.Expression
	if e.Left != nil {
		c = append(c, e.Left)
	}
	if e.Right != nil {
		c = append(c, e.Right)
	}
	return c
}

func (e *Comparison) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.children(), filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *Comparison) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.children(), check); err != nil {
		return err
	}
	return check(e)
}

func (e *Comparison) DeepCopy() row.Expression {
	cp := *e
	if e.Left != nil {
		cp.Left = e.Left.DeepCopy()
	}
	if e.Right != nil {
		cp.Right = e.Right.DeepCopy()
	}
	return &cp
}
