// Package row implements the Tuple/Chunk abstraction and
// defines the base Expression interface every expression tree node and
// every physical/logical plan node builds against. Keeping the interface
// here, rather than in the expression package, is what lets `plan` hold
// expression trees and `expression` hold a Subquery-shaped plan node
// without the two packages importing each other — the same layering
// dolthub/go-mysql-server uses to put plan.Subquery (an sql.Expression)
// inside the `plan` package instead of `expression`.
package row

import "github.com/minidb/qcore/types"

// TupleCellSpec identifies a cell by the (table, field) it was bound to,
// plus any SQL alias it was given. FindCell resolves one of these to an
// index.
type TupleCellSpec struct {
	Table string
	Field string
	Alias string
}

func (s TupleCellSpec) String() string {
	if s.Alias != "" {
		return s.Alias
	}
	if s.Table != "" {
		return s.Table + "." + s.Field
	}
	return s.Field
}

// Tuple is the abstract row cursor every physical operator hands its
// parent. Concrete variants (RowTuple, ValueListTuple, CompositeTuple,
// ExpressionTuple, SplicedTuple) are defined in this package; callers must
// not retain a Tuple past the next call to the operator that produced it.
type Tuple interface {
	// CellNum returns the number of cells; stable across the tuple's
	// lifetime.
	CellNum() int
	// CellAt returns the value of the i'th cell.
	CellAt(i int) (types.Value, error)
	// FindCell resolves spec to a cell index and its value. Resolution is
	// O(n); callers (Field and Aggregate expressions) cache the returned
	// index across repeated calls against tuples of the same shape.
	FindCell(spec TupleCellSpec) (value types.Value, index int, err error)
}

// NamedTuple is a Tuple that can also supply the TupleCellSpec at position
// i via SpecAt (used when re-deriving names/aliases for downstream schemas).
type NamedTuple interface {
	Tuple
	SpecAt(i int) TupleCellSpec
}
