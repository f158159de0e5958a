package rowexec

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

// DefaultBuilder is the only plan.ExecBuilder implementation: it lowers a
// logical Node into an executable RowIter by dispatching on the node's
// concrete type, fusing a Predicate directly over a TableGet into the
// index-scan fast path where possible. It follows the
// `rowexec.DefaultBuilder`/`.WithExecBuilder(...)` wiring pattern
// dolthub/go-mysql-server uses.
type DefaultBuilder struct{}

func (DefaultBuilder) Build(node plan.Node, trx storage.Trx, outer row.Tuple) (plan.RowIter, error) {
	return buildNode(node, trx, outer)
}

func buildNode(n plan.Node, trx storage.Trx, outer row.Tuple) (plan.RowIter, error) {
	switch node := n.(type) {
	case *plan.TableGet:
		return buildTableGet(node, trx)

	case *plan.Predicate:
		if tg, ok := node.Child.(*plan.TableGet); ok {
			return buildTableGetFiltered(tg, node.Expr, trx)
		}
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		return &predicateIter{child: child, expr: node.Expr, outer: outer}, nil

	case *plan.Projection:
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		return &projectIter{child: child, exprs: node.Exprs, outer: outer}, nil

	case *plan.Join:
		left, err := buildNode(node.Left, trx, outer)
		if err != nil {
			return nil, err
		}
		right := node.Right
		buildRight := func(leftTuple row.Tuple) (plan.RowIter, error) {
			rightOuter := leftTuple
			if outer != nil {
				rightOuter = row.NewCompositeTuple(outer, leftTuple)
			}
			return buildNode(right, trx, rightOuter)
		}
		return &nestedLoopJoinIter{left: left, buildRight: buildRight, on: node.On, outer: outer}, nil

	case *plan.GroupBy:
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		aggExprs := make([]*expression.Aggregate, len(node.AggregateExprs))
		for i, a := range node.AggregateExprs {
			agg, ok := a.(*expression.Aggregate)
			if !ok {
				return nil, rc.New(rc.Internal, "GroupBy aggregate expression has unexpected type")
			}
			aggExprs[i] = agg
		}
		if len(node.GroupExprs) == 0 {
			return &aggregateIter{child: child, aggExprs: aggExprs, outer: outer}, nil
		}
		return &groupByIter{child: child, groupExprs: node.GroupExprs, aggExprs: aggExprs, outer: outer}, nil

	case *plan.OrderBy:
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		it := &orderByIter{child: child, units: node.Units, outer: outer}
		if err := it.materialize(); err != nil {
			return nil, err
		}
		return it, nil

	case *plan.Insert:
		return &insertIter{table: node.Table, rows: node.Rows, trx: trx}, nil

	case *plan.Update:
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		return &updateIter{child: child, table: node.Table, columns: node.Columns, valueExprs: node.ValueExprs}, nil

	case *plan.Delete:
		child, err := buildNode(node.Child, trx, outer)
		if err != nil {
			return nil, err
		}
		return &deleteIter{child: child, table: node.Table, trx: trx}, nil

	case *plan.Explain:
		return buildExplain(node), nil

	case *plan.Calc:
		return buildCalc(node, outer), nil

	default:
		return nil, rc.New(rc.Unimplemented, "no physical operator for logical node type %T", n)
	}
}
