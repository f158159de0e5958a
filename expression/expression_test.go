package expression_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

func tupleOf(vals ...types.Value) row.Tuple {
	specs := make([]row.TupleCellSpec, len(vals))
	for i := range specs {
		specs[i] = row.TupleCellSpec{Table: "t", Field: "c"}
	}
	return row.NewValueListTuple(specs, vals)
}

func TestArithmeticIntStaysInt(t *testing.T) {
	e := expression.NewArithmetic(expression.Add,
		expression.NewLiteral(types.IntValue(2)),
		expression.NewLiteral(types.IntValue(3)))
	require.Equal(t, types.Int, e.ValueType())
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.Equal(t, 5, out.Int())
}

func TestArithmeticDivisionByZeroYieldsNull(t *testing.T) {
	e := expression.NewArithmetic(expression.Div,
		expression.NewLiteral(types.IntValue(1)),
		expression.NewLiteral(types.IntValue(0)))
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.True(t, out.IsNull())
}

func TestComparisonEquality(t *testing.T) {
	e := expression.NewComparison(expression.Eq,
		expression.NewLiteral(types.IntValue(1)),
		expression.NewLiteral(types.IntValue(1)))
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.True(t, out.Bool())
}

func TestInSemanticsNullLeftIsFalse(t *testing.T) {
	list := expression.NewExprList(
		expression.NewLiteral(types.IntValue(1)),
		expression.NewLiteral(types.IntValue(2)),
	)
	e := expression.NewComparison(expression.In, expression.NewLiteral(types.NullValue()), list)
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.False(t, out.Bool())
}

func TestInSemanticsNotInWithNullElement(t *testing.T) {
	list := expression.NewExprList(
		expression.NewLiteral(types.IntValue(2)),
		expression.NewLiteral(types.NullValue()),
	)
	e := expression.NewComparison(expression.NotIn, expression.NewLiteral(types.IntValue(1)), list)
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.False(t, out.Bool())
}

func TestConjunctionShortCircuitsAnd(t *testing.T) {
	e := expression.NewConjunction(expression.And,
		expression.NewLiteral(types.BoolValue(false)),
		expression.NewLiteral(types.BoolValue(true)))
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.False(t, out.Bool())
}

func TestDeepCopyIndependence(t *testing.T) {
	orig := expression.NewField("t", "a", types.Int, 4)
	cp := orig.DeepCopy().(*expression.Field)
	cp.SetAlias("x")
	require.Empty(t, orig.Alias())
	require.Equal(t, "x", cp.Alias())
}

func TestPostOrderTraversalVisitsChildrenFirst(t *testing.T) {
	e := expression.NewArithmetic(expression.Add,
		expression.NewLiteral(types.IntValue(1)),
		expression.NewLiteral(types.IntValue(2)))
	var order []row.ExprType
	e.Traverse(nil, func(n row.Expression) { order = append(order, n.Type()) })
	require.Equal(t, []row.ExprType{row.ExprValue, row.ExprValue, row.ExprArithmetic}, order)
}

func TestDateFormat(t *testing.T) {
	d, err := types.ParseDate("2024-03-01")
	require.NoError(t, err)
	e := expression.NewSysFunc(expression.DateFormat,
		expression.NewLiteral(types.DateVal(d)),
		expression.NewLiteral(types.CharsValue("%Y-%m-%D")))
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.Equal(t, "2024-03-1st", out.String())
}

func TestLength(t *testing.T) {
	e := expression.NewSysFunc(expression.Length, expression.NewLiteral(types.CharsValue("hello")))
	var out types.Value
	require.NoError(t, e.GetValue(tupleOf(), &out))
	require.Equal(t, 5, out.Int())
}
