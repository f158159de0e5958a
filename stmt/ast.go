// Package stmt implements the statement binder: it resolves
// names, attaches types, validates aggregates, and produces a bound
// SelectStmt/InsertStmt/UpdateStmt/DeleteStmt from a parsed AST.
//
// The SQL lexer/parser itself is out of scope and named only
// as an external collaborator; the types in this file are the minimal
// "parsed AST" shape such a parser would hand the binder. Expressions in
// that AST are already expression-tree nodes (expression.Star,
// expression.UnboundField, expression.UnboundAggregate, and bound leaves
// like expression.Literal) — the binder's job is to walk the tree
// resolving every placeholder variant into its bound counterpart
// (expression.Field, expression.Aggregate).
package stmt

import (
	"github.com/minidb/qcore/row"
)

// RelationRef names a FROM-clause table reference: its source name and an
// optional alias.
type RelationRef struct {
	Source string
	Alias  string
}

func (r RelationRef) name() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Source
}

// JoinClause is one `JOIN table ON cond` inside a FROM group.
type JoinClause struct {
	Table RelationRef
	On    row.Expression // nil for a comma/cross join
}

// FromGroup is one base-table-plus-joins unit in the FROM clause; a FROM
// clause with a comma list has one FromGroup per comma-separated item.
type FromGroup struct {
	Base  RelationRef
	Joins []JoinClause
}

// OrderByUnit binds one ORDER BY expression with its direction.
type OrderByUnit struct {
	Expr row.Expression
	Asc  bool
}

// SelectSqlNode is the as-parsed shape of a SELECT statement, before
// binding.
type SelectSqlNode struct {
	From        []FromGroup
	Projections []row.Expression
	Where       row.Expression
	GroupBy     []row.Expression
	Having      row.Expression
	OrderBy     []OrderByUnit
}

// InsertSqlNode is the as-parsed shape of an INSERT statement.
type InsertSqlNode struct {
	Table RelationRef
	Rows  [][]row.Expression // each inner slice is one VALUES row, literal-valued
}

// UpdateSqlNode is the as-parsed shape of an UPDATE statement.
type UpdateSqlNode struct {
	Table   RelationRef
	Columns []string
	Values  []row.Expression // parallel to Columns; may include Subquery placeholders
	Where   row.Expression
}

// DeleteSqlNode is the as-parsed shape of a DELETE statement.
type DeleteSqlNode struct {
	Table RelationRef
	Where row.Expression
}

// SubqueryPlaceholder is the as-parsed shape of `(SELECT ...)` wherever it
// appears inside an expression tree — in WHERE/HAVING (IN/EXISTS/scalar
// comparisons) or as an UPDATE value. See subquery.go for the binder's
// rewrite of this placeholder into a BoundSubquery.
type SubqueryPlaceholder struct {
	name, alias string
	pos         int
	Inner       *SelectSqlNode
}

func NewSubqueryPlaceholder(inner *SelectSqlNode) *SubqueryPlaceholder {
	return &SubqueryPlaceholder{pos: -1, Inner: inner}
}
