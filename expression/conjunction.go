package expression

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

type ConjType int

const (
	And ConjType = iota
	Or
)

// Conjunction combines children with AND/OR, short-circuiting on the first
// determining value.
type Conjunction struct {
	header
	Kind     ConjType
	Children []row.Expression
}

func NewConjunction(kind ConjType, children ...row.Expression) *Conjunction {
	return &Conjunction{header: newHeader(), Kind: kind, Children: children}
}

func (e *Conjunction) Type() row.ExprType    { return row.ExprConjunction }
func (e *Conjunction) ValueType() types.Kind { return types.Boolean }
func (e *Conjunction) ValueLength() int      { return 1 }

func (e *Conjunction) GetValue(t row.Tuple, out *types.Value) error {
	if len(e.Children) == 0 {
		*out = types.BoolValue(true)
		return nil
	}
	shortCircuit := false // AND short-circuits on false, OR on true
	if e.Kind == Or {
		shortCircuit = true
	}
	result := !shortCircuit
	for _, c := range e.Children {
		var v types.Value
		if err := c.GetValue(t, &v); err != nil {
			return err
		}
		if v.IsNull() {
			continue
		}
		if v.Bool() == shortCircuit {
			*out = types.BoolValue(shortCircuit)
			return nil
		}
	}
	*out = types.BoolValue(result)
	return nil
}

func (e *Conjunction) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *Conjunction) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.Children, filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *Conjunction) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.Children, check); err != nil {
		return err
	}
	return check(e)
}

func (e *Conjunction) DeepCopy() row.Expression {
	cp := *e
	cp.Children = make([]row.Expression, len(e.Children))
	for i, c := range e.Children {
		cp.Children[i] = c.DeepCopy()
	}
	return &cp
}
