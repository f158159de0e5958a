package plan

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/stmt"
)

// GenerateSelect lowers a bound SelectStmt into a logical plan tree:
// reduce the FROM tree left-deep (siblings in
// one JoinGroup become a chain of Join nodes; separate groups combine via
// further Joins), then stack WHERE, an optional pre-sort on the GROUP BY
// keys, GroupBy, HAVING, the final ORDER BY, and the final Projection.
// Every nested subquery expression that lowerSubqueries reaches (see
// there) is lowered to its own logical plan recursively at this point,
// before physical lowering.
func GenerateSelect(s *stmt.SelectStmt) (Node, error) {
	var tree Node
	for _, jg := range s.JoinGroups {
		groupTree, err := buildGroupTree(jg)
		if err != nil {
			return nil, err
		}
		if tree == nil {
			tree = groupTree
		} else {
			tree = &Join{Left: tree, Right: groupTree}
		}
	}

	if tree == nil {
		// no FROM clause: SELECT <exprs> with no table (Calc-shaped), but a
		// SelectStmt always carries at least the projection list even here.
		exprs, err := lowerSubqueriesInList(s.Projections)
		if err != nil {
			return nil, err
		}
		return &Calc{Exprs: exprs}, nil
	}

	if s.Where != nil {
		expr, err := lowerSubqueries(s.Where.Expr)
		if err != nil {
			return nil, err
		}
		tree = &Predicate{Child: tree, Expr: expr}
	}

	if s.GroupBy != nil {
		units := make([]OrderUnit, len(s.GroupBy.GroupExprs))
		for i, g := range s.GroupBy.GroupExprs {
			ge, err := lowerSubqueries(g)
			if err != nil {
				return nil, err
			}
			units[i] = OrderUnit{Expr: ge, Asc: true}
		}
		// Streaming GroupBy requires its input sorted on the group keys:
		// the planner inserts this OrderBy so the
		// physical GroupBy operator can rely on pre-sorted input.
		tree = &OrderBy{Child: tree, Units: units}

		aggExprs := make([]row.Expression, len(s.GroupBy.AggregateExprs))
		for i, a := range s.GroupBy.AggregateExprs {
			aggExprs[i] = a
		}
		groupExprs := make([]row.Expression, len(units))
		for i, u := range units {
			groupExprs[i] = u.Expr
		}
		tree = &GroupBy{Child: tree, GroupExprs: groupExprs, AggregateExprs: aggExprs}

		if s.Having != nil {
			expr, err := lowerSubqueries(s.Having.Expr)
			if err != nil {
				return nil, err
			}
			tree = &Predicate{Child: tree, Expr: expr}
		}
	}

	if len(s.OrderBy) > 0 {
		units := make([]OrderUnit, len(s.OrderBy))
		for i, u := range s.OrderBy {
			expr, err := lowerSubqueries(u.Expr)
			if err != nil {
				return nil, err
			}
			units[i] = OrderUnit{Expr: expr, Asc: u.Asc}
		}
		tree = &OrderBy{Child: tree, Units: units}
	}

	exprs, err := lowerSubqueriesInList(s.Projections)
	if err != nil {
		return nil, err
	}
	tree = &Projection{Child: tree, Exprs: exprs}

	return tree, nil
}

// GenerateInsert lowers a bound InsertStmt to a leaf Insert node;
// INSERT never reads existing rows, so there is no child to build.
func GenerateInsert(s *stmt.InsertStmt) (Node, error) {
	rows := make([][]row.Expression, len(s.Rows))
	for i, r := range s.Rows {
		lowered, err := lowerSubqueriesInList(r)
		if err != nil {
			return nil, err
		}
		rows[i] = lowered
	}
	return &Insert{Table: s.Table, Rows: rows}, nil
}

// GenerateUpdate drives TableGet(RW) -> [Predicate] -> Update, with each
// value expression (including a subquery-valued right-hand side) lowered
// to its own logical tree.
func GenerateUpdate(s *stmt.UpdateStmt) (Node, error) {
	var tree Node = &TableGet{Table: s.Table, ForUpdate: true}
	if s.Where != nil {
		expr, err := lowerSubqueries(s.Where.Expr)
		if err != nil {
			return nil, err
		}
		tree = &Predicate{Child: tree, Expr: expr}
	}
	values, err := lowerSubqueriesInList(s.Values)
	if err != nil {
		return nil, err
	}
	return &Update{Child: tree, Table: s.Table, Columns: s.Columns, ValueExprs: values}, nil
}

// GenerateDelete drives TableGet(RW) -> [Predicate] -> Delete.
func GenerateDelete(s *stmt.DeleteStmt) (Node, error) {
	var tree Node = &TableGet{Table: s.Table, ForUpdate: true}
	if s.Where != nil {
		expr, err := lowerSubqueries(s.Where.Expr)
		if err != nil {
			return nil, err
		}
		tree = &Predicate{Child: tree, Expr: expr}
	}
	return &Delete{Child: tree, Table: s.Table}, nil
}

func buildGroupTree(jg stmt.JoinGroup) (Node, error) {
	base := &TableGet{Table: jg.Base}
	var tree Node = base
	for i, joinTbl := range jg.Joins {
		right := &TableGet{Table: joinTbl}
		var on row.Expression
		if jg.OnFilters[i] != nil {
			resolved, err := lowerSubqueries(jg.OnFilters[i].Expr)
			if err != nil {
				return nil, err
			}
			on = resolved
		}
		tree = &Join{Left: tree, Right: right, On: on}
	}
	return tree, nil
}

// lowerSubqueries replaces e, if it is a *stmt.BoundSubquery, with a
// *Subquery wrapping that inner statement's own recursively generated
// logical plan, and descends through Comparison, Conjunction, Arithmetic
// and ExprList children to do the same there. Every other node (Cast,
// SysFunc, Aggregate, ...) is returned unchanged, including any
// BoundSubquery beneath it; this package does not need a full rewrite type-switch like
// stmt.resolveExpr's because by this point every placeholder except
// BoundSubquery has already been resolved by the binder.
func lowerSubqueries(e row.Expression) (row.Expression, error) {
	if e == nil {
		return nil, nil
	}
	if bs, ok := e.(*stmt.BoundSubquery); ok {
		inner, err := GenerateSelect(bs.Stmt)
		if err != nil {
			return nil, err
		}
		sq := NewSubquery(inner)
		sq.SetName(bs.Name())
		sq.SetAlias(bs.Alias())
		return sq, nil
	}

	switch n := e.(type) {
	case *expression.Comparison:
		left, right := n.Left, n.Right
		var err error
		if left != nil {
			if left, err = lowerSubqueries(left); err != nil {
				return nil, err
			}
		}
		if right != nil {
			if right, err = lowerSubqueries(right); err != nil {
				return nil, err
			}
		}
		out := expression.NewComparison(n.Op, left, right)
		out.SetName(n.Name())
		out.SetAlias(n.Alias())
		return out, nil
	case *expression.Conjunction:
		children := make([]row.Expression, len(n.Children))
		for i, c := range n.Children {
			lowered, err := lowerSubqueries(c)
			if err != nil {
				return nil, err
			}
			children[i] = lowered
		}
		return expression.NewConjunction(n.Kind, children...), nil
	case *expression.Arithmetic:
		left, err := lowerSubqueries(n.Left)
		if err != nil {
			return nil, err
		}
		var right row.Expression
		if n.Right != nil {
			if right, err = lowerSubqueries(n.Right); err != nil {
				return nil, err
			}
		}
		out := expression.NewArithmetic(n.Op, left, right)
		out.SetName(n.Name())
		out.SetAlias(n.Alias())
		return out, nil
	case *expression.ExprList:
		items := make([]row.Expression, len(n.Items))
		for i, it := range n.Items {
			li, err := lowerSubqueries(it)
			if err != nil {
				return nil, err
			}
			items[i] = li
		}
		return expression.NewExprList(items...), nil
	default:
		return e, nil
	}
}

func lowerSubqueriesInList(exprs []row.Expression) ([]row.Expression, error) {
	out := make([]row.Expression, len(exprs))
	for i, e := range exprs {
		lowered, err := lowerSubqueries(e)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}
