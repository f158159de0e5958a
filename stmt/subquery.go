package stmt

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

func (p *SubqueryPlaceholder) Type() row.ExprType    { return row.ExprSubquery }
func (p *SubqueryPlaceholder) ValueType() types.Kind { return types.Undefined }
func (p *SubqueryPlaceholder) ValueLength() int      { return 0 }
func (p *SubqueryPlaceholder) Name() string          { return p.name }
func (p *SubqueryPlaceholder) SetName(n string)      { p.name = n }
func (p *SubqueryPlaceholder) Alias() string         { return p.alias }
func (p *SubqueryPlaceholder) SetAlias(a string)     { p.alias = a }
func (p *SubqueryPlaceholder) Pos() int              { return p.pos }
func (p *SubqueryPlaceholder) SetPos(v int)          { p.pos = v }

func (p *SubqueryPlaceholder) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "subquery must be bound before evaluation")
}
func (p *SubqueryPlaceholder) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (p *SubqueryPlaceholder) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(p) {
		visit(p)
	}
}
func (p *SubqueryPlaceholder) TraverseCheck(check func(row.Expression) error) error { return check(p) }

func (p *SubqueryPlaceholder) DeepCopy() row.Expression {
	cp := *p
	return &cp
}

// BoundSubquery is the binder's output for a subquery expression: the
// fully bound inner SelectStmt, carried as a row.Expression placeholder
// until the logical plan generator (package plan, which imports stmt)
// lowers it into a *plan.Subquery wrapping the inner statement's own
// recursively generated logical tree.
type BoundSubquery struct {
	name, alias string
	pos         int
	Stmt        *SelectStmt
}

func (b *BoundSubquery) Type() row.ExprType    { return row.ExprSubquery }
func (b *BoundSubquery) ValueType() types.Kind { return types.Undefined }
func (b *BoundSubquery) ValueLength() int      { return 0 }
func (b *BoundSubquery) Name() string          { return b.name }
func (b *BoundSubquery) SetName(n string)       { b.name = n }
func (b *BoundSubquery) Alias() string          { return b.alias }
func (b *BoundSubquery) SetAlias(a string)      { b.alias = a }
func (b *BoundSubquery) Pos() int               { return b.pos }
func (b *BoundSubquery) SetPos(v int)           { b.pos = v }

func (b *BoundSubquery) GetValue(row.Tuple, *types.Value) error {
	return rc.New(rc.Internal, "BoundSubquery must be lowered to a plan.Subquery before evaluation")
}
func (b *BoundSubquery) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (b *BoundSubquery) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(b) {
		visit(b)
	}
}
func (b *BoundSubquery) TraverseCheck(check func(row.Expression) error) error { return check(b) }

func (b *BoundSubquery) DeepCopy() row.Expression {
	cp := *b
	return &cp
}
