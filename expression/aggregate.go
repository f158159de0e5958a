package expression

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

type AggFunc int

const (
	Sum AggFunc = iota
	Avg
	Min
	Max
	Count
)

func (f AggFunc) String() string {
	switch f {
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Count:
		return "COUNT"
	default:
		return "?"
	}
}

// Aggregate reads an already-materialized group result from the tuple the
// GroupBy/Aggregate physical operator hands it (by Pos when set, otherwise
// by matching Name against the tuple's spec) — it is never evaluated
// against a raw, pre-grouping tuple.
type Aggregate struct {
	header
	Func    AggFunc
	Child   row.Expression // nil for COUNT(*)
	isStar  bool
	kind    types.Kind
}

func NewAggregate(fn AggFunc, child row.Expression, isStar bool) *Aggregate {
	a := &Aggregate{header: newHeader(), Func: fn, Child: child, isStar: isStar}
	if child != nil {
		a.kind = child.ValueType()
	} else {
		a.kind = types.Int
	}
	if fn == Avg {
		a.kind = types.Float
	}
	if fn == Count {
		a.kind = types.Int
	}
	return a
}

func (e *Aggregate) IsCountStar() bool { return e.Func == Count && e.isStar }

func (e *Aggregate) Type() row.ExprType    { return row.ExprAggregate }
func (e *Aggregate) ValueType() types.Kind { return e.kind }
func (e *Aggregate) ValueLength() int      { return 4 }

func (e *Aggregate) GetValue(t row.Tuple, out *types.Value) error {
	if e.Pos() >= 0 {
		v, err := t.CellAt(e.Pos())
		if err != nil {
			return err
		}
		*out = v
		return nil
	}
	spec := row.TupleCellSpec{Field: e.Name(), Alias: e.Alias()}
	v, _, err := t.FindCell(spec)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

func (e *Aggregate) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *Aggregate) children() []row.Expression {
	if e.Child != nil {
		return []row.Expression{e.Child}
	}
	return nil
}

func (e *Aggregate) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.children(), filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *Aggregate) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.children(), check); err != nil {
		return err
	}
	return check(e)
}

func (e *Aggregate) DeepCopy() row.Expression {
	cp := *e
	if e.Child != nil {
		cp.Child = e.Child.DeepCopy()
	}
	return &cp
}

// Accumulator is the per-group running state for one Aggregate expression:
// an accumulate/evaluate pair driven once per row and once per group.
type Accumulator interface {
	Accumulate(v types.Value) error
	Evaluate() types.Value
}

// NewAccumulator builds the Accumulator matching fn.
func NewAccumulator(fn AggFunc, kind types.Kind) Accumulator {
	switch fn {
	case Sum:
		return &sumAcc{isInt: kind == types.Int || kind == types.Long}
	case Avg:
		return &avgAcc{}
	case Min:
		return &minMaxAcc{isMin: true}
	case Max:
		return &minMaxAcc{isMin: false}
	case Count:
		return &countAcc{}
	default:
		return &countAcc{}
	}
}

type sumAcc struct {
	isInt  bool
	iv     int
	fv     float64
	anySeen bool
}

func (a *sumAcc) Accumulate(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	a.anySeen = true
	if a.isInt {
		a.iv += v.Int()
	} else {
		a.fv += v.Float64()
	}
	return nil
}

func (a *sumAcc) Evaluate() types.Value {
	if !a.anySeen {
		return types.NullValue()
	}
	if a.isInt {
		return types.IntValue(a.iv)
	}
	return types.FloatValue(float32(a.fv))
}

type avgAcc struct {
	sum   float64
	count int
}

func (a *avgAcc) Accumulate(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	a.sum += v.Float64()
	a.count++
	return nil
}

func (a *avgAcc) Evaluate() types.Value {
	if a.count == 0 {
		return types.NullValue()
	}
	return types.FloatValue(float32(a.sum / float64(a.count)))
}

type minMaxAcc struct {
	isMin bool
	val   types.Value
	set   bool
}

func (a *minMaxAcc) Accumulate(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	if !a.set {
		a.val = v
		a.set = true
		return nil
	}
	c, err := v.Compare(a.val)
	if err != nil {
		return rc.Wrap(rc.InvalidArgument, err, "MIN/MAX accumulate")
	}
	if (a.isMin && c < 0) || (!a.isMin && c > 0) {
		a.val = v
	}
	return nil
}

func (a *minMaxAcc) Evaluate() types.Value {
	if !a.set {
		return types.NullValue()
	}
	return a.val
}

// CountStarAccumulator is implemented by the COUNT accumulator to let the
// GroupBy/Aggregate operator drive COUNT(*) (which has no child expression
// to evaluate per row) without a type switch back to an unexported type.
type CountStarAccumulator interface {
	Accumulator
	AccumulateAny()
}

type countAcc struct {
	n int
}

func (a *countAcc) Accumulate(v types.Value) error {
	if !v.IsNull() {
		a.n++
	}
	return nil
}

// AccumulateAny counts the row itself, for COUNT(*) which does not evaluate
// a child expression at all.
func (a *countAcc) AccumulateAny() { a.n++ }

func (a *countAcc) Evaluate() types.Value { return types.IntValue(a.n) }
