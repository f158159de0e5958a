package expression

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// ExprList is the `IN (expr, expr, ...)` literal-list right-hand side: a
// resettable iterator over its children's values, satisfying the
// subqueryOperand contract Comparison.evalIn uses.
type ExprList struct {
	header
	Items []row.Expression
	cur   int
}

func NewExprList(items ...row.Expression) *ExprList {
	return &ExprList{header: newHeader(), Items: items}
}

func (e *ExprList) Type() row.ExprType    { return row.ExprExprList }
func (e *ExprList) ValueType() types.Kind { return noValueKind }
func (e *ExprList) ValueLength() int      { return 0 }

func (e *ExprList) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "ExprList must be consumed via Reset/Next, not GetValue")
}
func (e *ExprList) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *ExprList) Reset() { e.cur = 0 }

func (e *ExprList) Next(outer row.Tuple, out *types.Value) error {
	if e.cur >= len(e.Items) {
		return rc.New(rc.RecordEOF, "")
	}
	item := e.Items[e.cur]
	e.cur++
	return item.GetValue(outer, out)
}

func (e *ExprList) HasAnyRow(outer row.Tuple) (bool, error) {
	return len(e.Items) > 0, nil
}

func (e *ExprList) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.Items, filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *ExprList) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.Items, check); err != nil {
		return err
	}
	return check(e)
}

func (e *ExprList) DeepCopy() row.Expression {
	cp := &ExprList{header: e.header}
	cp.Items = make([]row.Expression, len(e.Items))
	for i, it := range e.Items {
		cp.Items[i] = it.DeepCopy()
	}
	return cp
}
