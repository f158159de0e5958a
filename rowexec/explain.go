package rowexec

import (
	"fmt"
	"strings"

	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// explainIter is the physical Explain operator: it never executes the
// subtree for rows, only walks the logical Node tree structurally and
// emits one textual row describing it.
type explainIter struct {
	text string
	done bool
}

func buildExplain(node *plan.Explain) *explainIter {
	return &explainIter{text: describeNode(node.Child, 0)}
}

func (it *explainIter) Next() (row.Tuple, error) {
	if it.done {
		return nil, rc.New(rc.RecordEOF, "")
	}
	it.done = true
	spec := []row.TupleCellSpec{{Field: "plan"}}
	return row.NewValueListTuple(spec, []types.Value{types.CharsValue(it.text)}), nil
}

func (it *explainIter) Close() error { return nil }

func describeNode(n plan.Node, depth int) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(describeSelf(n))
	sb.WriteString("\n")
	for _, c := range n.Children() {
		sb.WriteString(describeNode(c, depth+1))
	}
	return sb.String()
}

func describeSelf(n plan.Node) string {
	switch v := n.(type) {
	case *plan.TableGet:
		mode := "scan"
		if v.ForUpdate {
			mode = "scan(rw)"
		}
		return fmt.Sprintf("TableGet(%s, %s)", v.Table.Name(), mode)
	case *plan.Predicate:
		return "Predicate"
	case *plan.Projection:
		return "Projection"
	case *plan.Join:
		return "Join"
	case *plan.GroupBy:
		if len(v.GroupExprs) == 0 {
			return "Aggregate"
		}
		return "GroupBy"
	case *plan.OrderBy:
		return "OrderBy"
	case *plan.Insert:
		return fmt.Sprintf("Insert(%s)", v.Table.Name())
	case *plan.Update:
		return fmt.Sprintf("Update(%s)", v.Table.Name())
	case *plan.Delete:
		return fmt.Sprintf("Delete(%s)", v.Table.Name())
	case *plan.Explain:
		return "Explain"
	case *plan.Calc:
		return "Calc"
	default:
		return "?"
	}
}
