package numeric

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/rt"
)

func TestBinaryOpI32Add(t *testing.T) {
	v, err := BinaryOp(OpAdd, rt.I32(2), rt.I32(3))
	require.NoError(t, err)
	require.Equal(t, int32(5), v.I32())
}

func TestBinaryOpI32DivSByZeroTraps(t *testing.T) {
	_, err := BinaryOp(OpDivS, rt.I32(1), rt.I32(0))
	require.ErrorIs(t, err, errIntDivByZero)
}

func TestBinaryOpI32DivSOverflowTraps(t *testing.T) {
	_, err := BinaryOp(OpDivS, rt.I32(-2147483648), rt.I32(-1))
	require.ErrorIs(t, err, errIntOverflow)
}

func TestCompareOpTypeMismatch(t *testing.T) {
	_, err := CompareOp(OpEq, rt.I32(1), rt.I64(1))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestTestOpEqz(t *testing.T) {
	v, err := TestOp(OpEqz, rt.I32(0))
	require.NoError(t, err)
	require.Equal(t, int32(1), v.I32())
}

func TestConvertWrap(t *testing.T) {
	v, err := ConvertOp(OpWrap, rt.I64(0).Type, rt.I32(0).Type, rt.I64(0x1_0000_0001))
	require.NoError(t, err)
	require.Equal(t, int32(1), v.I32())
}

func TestConvertTruncSNaNTraps(t *testing.T) {
	nan, err := UnaryOp(OpSqrt, rt.F64(-1))
	require.NoError(t, err)
	_, err = ConvertOp(OpTruncS, nan.Type, rt.I32(0).Type, nan)
	require.ErrorIs(t, err, errInvalidConversion)
}
