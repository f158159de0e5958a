package stmt

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

// FilterStmt wraps the bound predicate expression for a WHERE/HAVING/ON
// clause: the clause's single expression (a Conjunction when it has
// several conjuncts), bound as a whole.
type FilterStmt struct {
	Expr row.Expression
}

// GroupByStmt carries the bound GROUP BY/aggregate shape a SelectStmt
// needs to build its logical plan: the grouping key expressions, every
// aggregate expression appearing in projections/HAVING, and the projection
// field expressions that are not wrapped in an aggregate (the ones
// bindGroupByHaving checked against GroupExprs).
type GroupByStmt struct {
	GroupExprs        []row.Expression
	AggregateExprs    []*expression.Aggregate
	PassthroughFields []*expression.Field
}

// JoinGroup is one resolved FROM-group: a base table, its ordered join
// partners, and the bound ON filter for each join.
type JoinGroup struct {
	Base      storage.Table
	Joins     []storage.Table
	OnFilters []*FilterStmt // parallel to Joins
}

// SelectStmt is the bound output of the binder.
type SelectStmt struct {
	Tables      tableMap
	JoinGroups  []JoinGroup
	Projections []row.Expression
	Where       *FilterStmt // nil if no WHERE clause
	GroupBy     *GroupByStmt // nil if no grouping
	Having      *FilterStmt  // nil if no HAVING clause
	OrderBy     []OrderByUnit
}

// NewSelectStmt binds node against db, starting from parentScope (nil for
// a top-level statement; the parent's table map for a correlated
// subquery).
func NewSelectStmt(db storage.Database, node *SelectSqlNode, parentScope tableMap) (*SelectStmt, error) {
	tables := tableMap{}
	for k, v := range parentScope {
		tables[k] = v
	}

	var groups []JoinGroup
	for _, fg := range node.From {
		base, err := lookupAndRegister(db, tables, fg.Base)
		if err != nil {
			return nil, err
		}
		jg := JoinGroup{Base: base}
		for _, jc := range fg.Joins {
			jt, err := lookupAndRegister(db, tables, jc.Table)
			if err != nil {
				return nil, err
			}
			jg.Joins = append(jg.Joins, jt)
			if jc.On != nil {
				ctx := &resolveCtx{db: db, tables: tables}
				bound, err := resolveExpr(ctx, jc.On)
				if err != nil {
					return nil, err
				}
				jg.OnFilters = append(jg.OnFilters, &FilterStmt{Expr: bound})
			} else {
				jg.OnFilters = append(jg.OnFilters, nil)
			}
		}
		groups = append(groups, jg)
	}

	var defaultTable storage.Table
	if len(tables) == 1 {
		for _, t := range tables {
			defaultTable = t
		}
	}

	projections, sawAgg, err := expandAndBindProjections(db, tables, defaultTable, node.Projections)
	if err != nil {
		return nil, err
	}

	var where *FilterStmt
	if node.Where != nil {
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: defaultTable}
		bound, err := resolveExpr(ctx, node.Where)
		if err != nil {
			return nil, err
		}
		where = &FilterStmt{Expr: bound}
	}

	var groupBy *GroupByStmt
	var having *FilterStmt
	if len(node.GroupBy) > 0 || sawAgg {
		groupBy, having, err = bindGroupByHaving(db, tables, defaultTable, node, projections, sawAgg)
		if err != nil {
			return nil, err
		}
	}

	var orderBy []OrderByUnit
	for _, u := range node.OrderBy {
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: defaultTable}
		bound, err := resolveExpr(ctx, u.Expr)
		if err != nil {
			return nil, err
		}
		orderBy = append(orderBy, OrderByUnit{Expr: bound, Asc: u.Asc})
	}

	return &SelectStmt{
		Tables:      tables,
		JoinGroups:  groups,
		Projections: projections,
		Where:       where,
		GroupBy:     groupBy,
		Having:      having,
		OrderBy:     orderBy,
	}, nil
}

func lookupAndRegister(db storage.Database, tables tableMap, ref RelationRef) (storage.Table, error) {
	tbl, ok := db.Table(ref.Source)
	if !ok {
		return nil, rc.New(rc.SchemaTableNotExist, "table %q does not exist", ref.Source)
	}
	key := ref.name()
	if _, dup := tables[key]; dup {
		return nil, rc.New(rc.InvalidArgument, "duplicate table/alias %q in FROM", key)
	}
	tables[key] = tbl
	if ref.Alias != "" {
		tables[ref.Source] = tbl
	}
	return tbl, nil
}

// expandAndBindProjections expands `*`/`t.*` against tables and runs every
// non-wildcard projection through the projection validation rules: no bare
// subquery in projection, SysFunc arity validated by
// resolveExpr's recursive descent (argument types are not checked there),
// UnboundField resolved against the
// table map, and aggregate-presence tracked.
func expandAndBindProjections(db storage.Database, tables tableMap, defaultTable storage.Table, projs []row.Expression) ([]row.Expression, bool, error) {
	if len(tables) == 0 {
		for _, p := range projs {
			if _, ok := p.(*expression.Star); ok {
				return nil, false, rc.New(rc.InvalidArgument, "SELECT * requires a FROM clause")
			}
		}
	}

	var out []row.Expression
	sawAgg := false
	for _, p := range projs {
		if star, ok := p.(*expression.Star); ok {
			expanded, err := expandStar(tables, star)
			if err != nil {
				return nil, false, err
			}
			out = append(out, expanded...)
			continue
		}
		if err := rejectSubqueryInProjection(p); err != nil {
			return nil, false, err
		}
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: defaultTable, inProjection: true}
		bound, err := resolveExpr(ctx, p)
		if err != nil {
			return nil, false, err
		}
		if ctx.sawAggregate {
			sawAgg = true
		}
		out = append(out, bound)
	}
	return out, sawAgg, nil
}

func expandStar(tables tableMap, star *expression.Star) ([]row.Expression, error) {
	if star.Table != "" {
		tbl, ok := tables[star.Table]
		if !ok {
			return nil, rc.New(rc.SchemaTableNotExist, "unknown table %q in %s.*", star.Table, star.Table)
		}
		return fieldsOf(tbl), nil
	}
	var out []row.Expression
	seen := map[string]bool{}
	for _, tbl := range tables {
		if seen[tbl.Name()] {
			continue
		}
		seen[tbl.Name()] = true
		out = append(out, fieldsOf(tbl)...)
	}
	return out, nil
}

func fieldsOf(tbl storage.Table) []row.Expression {
	var out []row.Expression
	for _, f := range tbl.Meta().Fields {
		if !f.Visible {
			continue
		}
		out = append(out, expression.NewField(tbl.Name(), f.Name, f.Kind, f.Length))
	}
	return out
}

// rejectSubqueryInProjection is a conservative check that the top-level
// projection expression itself is not a bare subquery placeholder; nested
// subqueries inside an arithmetic/comparison expression are permitted —
// the rejection applies to the literal SELECT list shape, not to every
// nested occurrence.
func rejectSubqueryInProjection(e row.Expression) error {
	if e.Type() == row.ExprSubquery {
		return rc.New(rc.InvalidArgument, "subquery not allowed directly in the projection list")
	}
	return nil
}

// bindGroupByHaving collects aggregates
// from projections and HAVING, collects non-aggregate projection fields,
// and validates that every non-aggregate projection expression is covered by an
// explicit GROUP BY (by textual name equivalence) when GROUP BY is
// present, or that there are no non-aggregated fields when it is absent.
func bindGroupByHaving(db storage.Database, tables tableMap, defaultTable storage.Table, node *SelectSqlNode, projections []row.Expression, sawAgg bool) (*GroupByStmt, *FilterStmt, error) {
	var groupExprs []row.Expression
	for _, g := range node.GroupBy {
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: defaultTable}
		bound, err := resolveExpr(ctx, g)
		if err != nil {
			return nil, nil, err
		}
		groupExprs = append(groupExprs, bound)
	}

	var aggExprs []*expression.Aggregate
	var passthrough []*expression.Field
	collectAggregates := func(e row.Expression) {
		e.Traverse(nil, func(x row.Expression) {
			if agg, ok := x.(*expression.Aggregate); ok {
				aggExprs = append(aggExprs, agg)
			}
		})
	}
	for _, p := range projections {
		collectAggregates(p)
		if f, ok := p.(*expression.Field); ok {
			passthrough = append(passthrough, f)
		}
	}

	if len(groupExprs) == 0 {
		if len(passthrough) > 0 {
			return nil, nil, rc.New(rc.InvalidArgument,
				"field %q must appear in GROUP BY or be wrapped in an aggregate", passthrough[0].Name())
		}
	} else {
		groupNames := map[string]bool{}
		for _, g := range groupExprs {
			groupNames[exprKey(g)] = true
		}
		for _, f := range passthrough {
			if !groupNames[exprKey(f)] {
				return nil, nil, rc.New(rc.InvalidArgument,
					"field %q is not in GROUP BY", f.Name())
			}
		}
	}

	var having *FilterStmt
	if node.Having != nil {
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: defaultTable}
		bound, err := resolveExpr(ctx, node.Having)
		if err != nil {
			return nil, nil, err
		}
		collectAggregates(bound)
		having = &FilterStmt{Expr: bound}
	}

	return &GroupByStmt{GroupExprs: groupExprs, AggregateExprs: aggExprs, PassthroughFields: passthrough}, having, nil
}

// exprKey is the textual name equivalence used to compare a projection
// expression against a GROUP BY key: the table-qualified field name, used
// to match a projection field against a
// GROUP BY expression.
func exprKey(e row.Expression) string {
	if f, ok := e.(*expression.Field); ok {
		return f.Table + "." + f.Column
	}
	return e.Name()
}
