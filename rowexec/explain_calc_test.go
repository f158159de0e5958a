package rowexec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/memtable"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/rowexec"
	"github.com/minidb/qcore/types"
)

func TestExplainDescribesTreeStructureWithoutExecutingIt(t *testing.T) {
	db := memtable.NewDatabase("d")
	tbl := memtable.NewIntTable(db, "t", "a")
	insertInts(t, tbl, []int{1})

	explain := &plan.Explain{
		Child: &plan.Projection{
			Child: &plan.Predicate{
				Child: &plan.TableGet{Table: tbl},
				Expr:  expression.NewComparison(expression.Eq, expression.NewField("t", "a", types.Int, 4), expression.NewLiteral(types.IntValue(1))),
			},
			Exprs: []row.Expression{expression.NewField("t", "a", types.Int, 4)},
		},
	}

	trx := memtable.NewTrx()
	iter, err := rowexec.DefaultBuilder{}.Build(explain, trx, nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(0)
	require.NoError(t, err)
	text := v.String()
	require.True(t, strings.Contains(text, "Projection"))
	require.True(t, strings.Contains(text, "Predicate"))
	require.True(t, strings.Contains(text, "TableGet(t, scan)"))

	_, err = iter.Next()
	require.True(t, rc.Is(err, rc.RecordEOF))
}

func TestCalcEvaluatesConstantExpressionsWithNoFromClause(t *testing.T) {
	calc := &plan.Calc{
		Exprs: []row.Expression{
			expression.NewArithmetic(expression.Add, expression.NewLiteral(types.IntValue(1)), expression.NewLiteral(types.IntValue(2))),
		},
	}
	iter, err := rowexec.DefaultBuilder{}.Build(calc, memtable.NewTrx(), nil)
	require.NoError(t, err)
	defer iter.Close()

	rt, err := iter.Next()
	require.NoError(t, err)
	v, err := rt.CellAt(0)
	require.NoError(t, err)
	require.Equal(t, 3, v.Int())

	_, err = iter.Next()
	require.True(t, rc.Is(err, rc.RecordEOF))
}
