package stmt

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

// tableMap resolves a source name or alias to its storage.Table, the
// binder's working scope for one FROM clause (copied from the parent
// scope for a correlated subquery).
type tableMap map[string]storage.Table

// resolveCtx threads the binder's resolution state through one recursive
// rewrite pass: the current table scope, the single default table when the
// FROM has exactly one entry, and whether any
// aggregate expression was encountered (for GROUP BY validation).
type resolveCtx struct {
	db           storage.Database
	tables       tableMap
	defaultTable storage.Table // nil if FROM has != 1 table
	sawAggregate bool
	inProjection bool
}

// resolveExpr recursively rewrites placeholder nodes (Star is handled
// earlier, at projection-expansion time) into bound nodes: UnboundField ->
// Field, UnboundAggregate -> Aggregate. It is the Go-idiomatic replacement
// for the original's in-place mutation: since row.Expression is an
// interface, "replacing a child" means rebuilding the parent node around
// the rewritten child, which this function does via a type switch over the
// expression package's concrete node types.
func resolveExpr(ctx *resolveCtx, e row.Expression) (row.Expression, error) {
	switch n := e.(type) {
	case *expression.UnboundField:
		return resolveField(ctx, n)
	case *expression.UnboundAggregate:
		child, err := resolveExpr(ctx, n.Child)
		if err != nil {
			return nil, err
		}
		agg, err := bindAggregate(n.FuncName, child)
		if err != nil {
			return nil, err
		}
		agg.SetName(n.Name())
		agg.SetAlias(n.Alias())
		ctx.sawAggregate = true
		return agg, nil
	case *expression.Comparison:
		left, right := n.Left, n.Right
		var err error
		if left != nil {
			if left, err = resolveExpr(ctx, left); err != nil {
				return nil, err
			}
		}
		if right != nil {
			if right, err = resolveExpr(ctx, right); err != nil {
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
			resolved, err := resolveExpr(ctx, c)
			if err != nil {
				return nil, err
			}
			children[i] = resolved
		}
		return expression.NewConjunction(n.Kind, children...), nil
	case *expression.Arithmetic:
		left, err := resolveExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		var right row.Expression
		if n.Right != nil {
			if right, err = resolveExpr(ctx, n.Right); err != nil {
				return nil, err
			}
		}
		out := expression.NewArithmetic(n.Op, left, right)
		out.SetName(n.Name())
		out.SetAlias(n.Alias())
		return out, nil
	case *expression.Cast:
		child, err := resolveExpr(ctx, n.Child)
		if err != nil {
			return nil, err
		}
		return expression.NewCast(child, n.Target), nil
	case *expression.ExprList:
		items := make([]row.Expression, len(n.Items))
		for i, it := range n.Items {
			ri, err := resolveExpr(ctx, it)
			if err != nil {
				return nil, err
			}
			items[i] = ri
		}
		return expression.NewExprList(items...), nil
	case *expression.SysFunc:
		nparams := len(n.Params)
		if (n.Func == expression.Length && nparams != 1) ||
			(n.Func == expression.Round && (nparams < 1 || nparams > 2)) ||
			(n.Func == expression.DateFormat && nparams != 2) {
			return nil, rc.New(rc.InvalidArgument, "wrong number of arguments to system function")
		}
		params := make([]row.Expression, len(n.Params))
		for i, p := range n.Params {
			rp, err := resolveExpr(ctx, p)
			if err != nil {
				return nil, err
			}
			params[i] = rp
		}
		out := expression.NewSysFunc(n.Func, params...)
		out.SetName(n.Name())
		out.SetAlias(n.Alias())
		return out, nil
	case *SubqueryPlaceholder:
		inner, err := NewSelectStmt(ctx.db, n.Inner, ctx.tables)
		if err != nil {
			return nil, err
		}
		bound := &BoundSubquery{Stmt: inner}
		bound.SetName(n.Name())
		bound.SetAlias(n.Alias())
		return bound, nil
	default:
		// expression.Literal and expression.Field (already bound) pass
		// through unchanged.
		return e, nil
	}
}

// resolveField rewrites an UnboundField against ctx's table scope. An
// explicit table qualifier must name a table in scope; an unqualified
// field must resolve uniquely against ctx.defaultTable, or fail
// SCHEMA_FIELD_MISSING — the binder never guesses intent.
func resolveField(ctx *resolveCtx, n *expression.UnboundField) (row.Expression, error) {
	var tbl storage.Table
	if n.Table != "" {
		t, ok := ctx.tables[n.Table]
		if !ok {
			return nil, rc.New(rc.SchemaTableNotExist, "unknown table %q", n.Table)
		}
		tbl = t
	} else {
		if ctx.defaultTable == nil {
			logrus.WithFields(logrus.Fields{
				"field":      n.Field,
				"tableCount": len(ctx.tables),
			}).Warn("binder: unqualified field has no unique default table")
			return nil, rc.New(rc.SchemaFieldMissing, "ambiguous field %q: no default table", n.Field)
		}
		tbl = ctx.defaultTable
	}
	fm, ok := tbl.Meta().FieldByName(n.Field)
	if !ok {
		return nil, rc.New(rc.SchemaFieldMissing, "field %q not found on table %q", n.Field, tbl.Name())
	}
	f := expression.NewField(tbl.Name(), fm.Name, fm.Kind, fm.Length)
	if n.Alias() != "" {
		f.SetAlias(n.Alias())
	}
	return f, nil
}

func bindAggregate(fnName string, child row.Expression) (*expression.Aggregate, error) {
	isStar := false
	if fnName == "" {
		return nil, rc.New(rc.InvalidArgument, "empty aggregate function name")
	}
	switch strings.ToUpper(fnName) {
	case "SUM":
		return expression.NewAggregate(expression.Sum, child, false), nil
	case "AVG":
		return expression.NewAggregate(expression.Avg, child, false), nil
	case "MIN":
		return expression.NewAggregate(expression.Min, child, false), nil
	case "MAX":
		return expression.NewAggregate(expression.Max, child, false), nil
	case "COUNT":
		if _, ok := child.(*expression.Star); ok {
			isStar = true
		}
		return expression.NewAggregate(expression.Count, child, isStar), nil
	default:
		return nil, rc.New(rc.InvalidArgument, "unknown aggregate function %q", fnName)
	}
}
