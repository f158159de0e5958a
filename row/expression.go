package row

import "github.com/minidb/qcore/types"

// ExprType tags the variant of an Expression node. It exists
// so that code outside the expression package (the physical plan generator,
// the binder) can discriminate without a type switch over unexported
// concrete types.
type ExprType int

const (
	ExprUndefined ExprType = iota
	ExprStar
	ExprUnboundField
	ExprUnboundAggregate
	ExprField
	ExprValue
	ExprCast
	ExprComparison
	ExprConjunction
	ExprArithmetic
	ExprAggregate
	ExprSubquery
	ExprExprList
	ExprSysFunc
)

// Expression is the base interface every expression-tree node satisfies.
// It lives in `row` rather than `expression` so that `plan` can hold a
// Subquery node (which is itself an Expression, evaluated against the
// outer tuple) without `row`/`plan` importing the `expression` package,
// and so `expression`'s own concrete nodes can be stored inside row.Tuple
// variants (ExpressionTuple) without a cycle back through `expression`.
type Expression interface {
	// Type reports the node variant.
	Type() ExprType
	// ValueType reports the Kind this expression evaluates to once bound.
	ValueType() types.Kind
	// ValueLength reports the byte length of the evaluated value, 0 if
	// variable-length.
	ValueLength() int

	// GetValue evaluates the expression against tuple, writing the result
	// into out. Returns rc.RECORD_EOF when evaluating would need to pull a
	// subquery row past exhaustion, and other typed errors otherwise.
	GetValue(tuple Tuple, out *types.Value) error
	// TryGetValue returns a constant value without a tuple, when the
	// expression carries one (Value nodes, and Cast/Arithmetic over
	// constant children); ok is false otherwise.
	TryGetValue(out *types.Value) (ok bool, err error)

	// Name/SetName and Alias/SetAlias carry the display name used to build
	// an output schema; Pos/SetPos implements the "already materialized at
	// this chunk column" short-circuit.
	Name() string
	SetName(string)
	Alias() string
	SetAlias(string)
	Pos() int
	SetPos(int)

	// Traverse visits the tree post-order (children before self); filter,
	// if non-nil, may return false to skip visiting a node. It does not
	// prune: traversal still descends into that node's children — filter
	// controls only whether visit is invoked for that node.
	Traverse(filter func(Expression) bool, visit func(Expression))
	// TraverseCheck is Traverse's short-circuiting cousin: check runs
	// post-order and traversal stops at the first non-nil error.
	TraverseCheck(check func(Expression) error) error

	// DeepCopy produces a fully independent subtree, including the
	// name/alias/pos header fields.
	DeepCopy() Expression
}

// EvalColumn evaluates expr against every row of src, writing results into a
// fresh Column. Physical operators that do not have a vectorized kernel for
// a given expression fall back to this row-at-a-time evaluation.
func EvalColumn(expr Expression, src *Chunk) (*Column, error) {
	out := NewColumn(expr.ValueType(), expr.ValueLength(), src.Capacity())
	for i := 0; i < src.Count(); i++ {
		tuple := src.TupleAt(i)
		var v types.Value
		if err := expr.GetValue(tuple, &v); err != nil {
			return nil, err
		}
		out.Append(v)
	}
	return out, nil
}
