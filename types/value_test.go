package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/types"
)

func TestCompareSameKind(t *testing.T) {
	c, err := types.IntValue(1).Compare(types.IntValue(2))
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestCompareIntFloatWidening(t *testing.T) {
	c, err := types.IntValue(2).Compare(types.FloatValue(2.0))
	require.NoError(t, err)
	require.Equal(t, 0, c)
}

func TestCompareUnrelatedKindsFails(t *testing.T) {
	_, err := types.CharsValue("x").Compare(types.IntValue(1))
	require.Error(t, err)
}

func TestStringCompareIsByteOrder(t *testing.T) {
	c, err := types.CharsValue("abc").Compare(types.CharsValue("abd"))
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestDateCompareYearMajor(t *testing.T) {
	d1, err := types.ParseDate("2024-03-01")
	require.NoError(t, err)
	d2, err := types.ParseDate("2023-12-31")
	require.NoError(t, err)
	c, err := types.DateVal(d1).Compare(types.DateVal(d2))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestParseDateRejectsOutOfRange(t *testing.T) {
	_, err := types.ParseDate("2039-01-01")
	require.Error(t, err)

	_, err = types.ParseDate("2038-03-01")
	require.Error(t, err)

	_, err = types.ParseDate("2038-02-28")
	require.NoError(t, err)
}

func TestParseDateLeapYear(t *testing.T) {
	_, err := types.ParseDate("2024-02-29")
	require.NoError(t, err)

	_, err = types.ParseDate("2023-02-29")
	require.Error(t, err)
}

func TestTypecastCharsToInt(t *testing.T) {
	v, err := types.CharsValue("42").Typecast(types.Int)
	require.NoError(t, err)
	require.Equal(t, 42, v.Int())
}

func TestNullTypecastStaysNull(t *testing.T) {
	v, err := types.NullValue().Typecast(types.Int)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestBoolFromNumericEpsilon(t *testing.T) {
	require.False(t, types.FloatValue(0).Bool())
	require.True(t, types.FloatValue(1).Bool())
}
