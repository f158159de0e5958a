// Package plan implements the logical plan operator tree and its
// generator. It also hosts the Subquery expression node: although
// Subquery is conceptually part of the expression tree, putting its type
// here — rather than in the expression package — is what lets it hold a
// full logical Node child and an injected executor without the
// expression package ever importing plan or rowexec, the same layering
// dolthub/go-mysql-server uses for its own plan.Subquery.
package plan

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

// NodeType tags a logical operator's variant.
type NodeType int

const (
	NodeTableGet NodeType = iota
	NodePredicate
	NodeProjection
	NodeJoin
	NodeGroupBy
	NodeOrderBy
	NodeInsert
	NodeUpdate
	NodeDelete
	NodeExplain
	NodeCalc
)

// Node is the logical plan tree's base interface: every node reports its
// variant and its children, which is all the physical plan generator needs
// to walk the tree bottom-up.
type Node interface {
	Type() NodeType
	Children() []Node
}

// TableGet is a leaf node over one base table. Predicates holds predicates
// attached directly to the scan; the generator in this package attaches
// none (WHERE becomes a Predicate node above the FROM tree, and a join's
// ON clause stays on its Join node), so no predicate is pushed down here.
type TableGet struct {
	Table      storage.Table
	Predicates []row.Expression
	ForUpdate  bool // true for the RW scan under Update/Delete
}

func (n *TableGet) Type() NodeType   { return NodeTableGet }
func (n *TableGet) Children() []Node { return nil }

// Predicate filters its child's rows by one expression (the conjunction of
// a WHERE or HAVING clause, rolled up by the binder).
type Predicate struct {
	Child Node
	Expr  row.Expression
}

func (n *Predicate) Type() NodeType   { return NodePredicate }
func (n *Predicate) Children() []Node { return []Node{n.Child} }

// Projection evaluates a list of expressions over its child.
type Projection struct {
	Child Node
	Exprs []row.Expression
}

func (n *Projection) Type() NodeType   { return NodeProjection }
func (n *Projection) Children() []Node { return []Node{n.Child} }

// Join is a binary operator; On is nil for a cross join (the planner still
// emits Join nodes for comma-joined FROM items with no ON clause, relying
// on a later Predicate node for any WHERE-clause join condition).
type Join struct {
	Left, Right Node
	On          row.Expression
}

func (n *Join) Type() NodeType   { return NodeJoin }
func (n *Join) Children() []Node { return []Node{n.Left, n.Right} }

// OrderUnit pairs a sort expression with direction. It is declared here
// (rather than reusing stmt's OrderByUnit) so plan has no need to import stmt for
// this shape.
type OrderUnit struct {
	Expr row.Expression
	Asc  bool
}

// GroupBy requires its child sorted on GroupExprs (the planner guarantees
// this by inserting an OrderBy beneath it).
type GroupBy struct {
	Child          Node
	GroupExprs     []row.Expression
	AggregateExprs []row.Expression // *expression.Aggregate values
}

func (n *GroupBy) Type() NodeType   { return NodeGroupBy }
func (n *GroupBy) Children() []Node { return []Node{n.Child} }

// OrderBy sorts its child by Units in order.
type OrderBy struct {
	Child Node
	Units []OrderUnit
}

func (n *OrderBy) Type() NodeType   { return NodeOrderBy }
func (n *OrderBy) Children() []Node { return []Node{n.Child} }

// Insert is a leaf node: each inner slice of Rows is one VALUES row of
// value expressions (constants only, per the statement surface).
type Insert struct {
	Table storage.Table
	Rows  [][]row.Expression
}

func (n *Insert) Type() NodeType   { return NodeInsert }
func (n *Insert) Children() []Node { return nil }

// Update drives Child (a TableGet(RW) -> [Predicate] chain) and applies
// Columns/ValueExprs to each surviving row.
type Update struct {
	Child      Node
	Table      storage.Table
	Columns    []string
	ValueExprs []row.Expression // parallel to Columns
}

func (n *Update) Type() NodeType   { return NodeUpdate }
func (n *Update) Children() []Node { return []Node{n.Child} }

// Delete drives Child and deletes every surviving row.
type Delete struct {
	Child Node
	Table storage.Table
}

func (n *Delete) Type() NodeType   { return NodeDelete }
func (n *Delete) Children() []Node { return []Node{n.Child} }

// Explain wraps a subtree for textual plan description without executing
// it for rows.
type Explain struct {
	Child Node
}

func (n *Explain) Type() NodeType   { return NodeExplain }
func (n *Explain) Children() []Node { return []Node{n.Child} }

// Calc evaluates a list of expressions with no FROM clause (`SELECT 1+1`).
type Calc struct {
	Exprs []row.Expression
}

func (n *Calc) Type() NodeType   { return NodeCalc }
func (n *Calc) Children() []Node { return nil }
