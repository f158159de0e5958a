package expression

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// Star is the `*` or `t.*` projection placeholder; the binder expands it
// against the FROM table map and never leaves one in a bound SelectStmt.
type Star struct {
	header
	Table string // empty means unqualified "*"
}

func NewStar(table string) *Star { s := &Star{header: newHeader(), Table: table}; return s }

func (e *Star) Type() row.ExprType   { return row.ExprStar }
func (e *Star) ValueType() types.Kind { return noValueKind }
func (e *Star) ValueLength() int     { return 0 }

func (e *Star) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "Star must be expanded by the binder before evaluation")
}
func (e *Star) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *Star) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(e) {
		visit(e)
	}
}
func (e *Star) TraverseCheck(check func(row.Expression) error) error { return check(e) }

func (e *Star) DeepCopy() row.Expression {
	cp := *e
	return &cp
}

// UnboundField is `table.field` or bare `field` before the binder resolves
// it against a table map; the binder replaces it with a Field node while
// binding projections and filter clauses.
type UnboundField struct {
	header
	Table string
	Field string
}

func NewUnboundField(table, field string) *UnboundField {
	return &UnboundField{header: newHeader(), Table: table, Field: field}
}

func (e *UnboundField) Type() row.ExprType    { return row.ExprUnboundField }
func (e *UnboundField) ValueType() types.Kind { return noValueKind }
func (e *UnboundField) ValueLength() int      { return 0 }

func (e *UnboundField) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "UnboundField %s.%s must be resolved by the binder before evaluation", e.Table, e.Field)
}
func (e *UnboundField) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *UnboundField) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(e) {
		visit(e)
	}
}
func (e *UnboundField) TraverseCheck(check func(row.Expression) error) error { return check(e) }

func (e *UnboundField) DeepCopy() row.Expression {
	cp := *e
	return &cp
}

// UnboundAggregate is `FN(expr)` before the binder validates the function
// name and wraps the (now bound) child in an Aggregate node.
type UnboundAggregate struct {
	header
	FuncName string
	Child    row.Expression
}

func NewUnboundAggregate(fn string, child row.Expression) *UnboundAggregate {
	return &UnboundAggregate{header: newHeader(), FuncName: fn, Child: child}
}

func (e *UnboundAggregate) Type() row.ExprType    { return row.ExprUnboundAggregate }
func (e *UnboundAggregate) ValueType() types.Kind { return noValueKind }
func (e *UnboundAggregate) ValueLength() int      { return 0 }

func (e *UnboundAggregate) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "UnboundAggregate %s must be resolved by the binder before evaluation", e.FuncName)
}
func (e *UnboundAggregate) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *UnboundAggregate) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	children := []row.Expression{}
	if e.Child != nil {
		children = append(children, e.Child)
	}
	traverseChildren(children, filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}
func (e *UnboundAggregate) TraverseCheck(check func(row.Expression) error) error {
	if e.Child != nil {
		if err := e.Child.TraverseCheck(check); err != nil {
			return err
		}
	}
	return check(e)
}

func (e *UnboundAggregate) DeepCopy() row.Expression {
	cp := *e
	if e.Child != nil {
		cp.Child = e.Child.DeepCopy()
	}
	return &cp
}
