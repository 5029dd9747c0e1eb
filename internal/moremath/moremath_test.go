package moremath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWasmCompatMin(t *testing.T) {
	require.Equal(t, -1.1, WasmCompatMin(-1.1, 123))
	require.Equal(t, -1.1, WasmCompatMin(-1.1, math.Inf(1)))
	require.Equal(t, math.Inf(-1), WasmCompatMin(math.Inf(-1), 123))

	require.True(t, math.IsNaN(WasmCompatMin(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(WasmCompatMin(1.0, math.NaN())))
	require.True(t, math.IsNaN(WasmCompatMin(math.Inf(-1), math.NaN())))
	require.True(t, math.IsNaN(WasmCompatMin(math.Inf(1), math.NaN())))
}

func TestWasmCompatMax(t *testing.T) {
	require.Equal(t, 123.1, WasmCompatMax(-1.1, 123.1))
	require.Equal(t, math.Inf(1), WasmCompatMax(-1.1, math.Inf(1)))
	require.Equal(t, 123.1, WasmCompatMax(math.Inf(-1), 123.1))

	require.True(t, math.IsNaN(WasmCompatMax(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(WasmCompatMax(1.0, math.NaN())))
}

func TestWasmCompatNearestF64(t *testing.T) {
	require.Equal(t, -2.0, WasmCompatNearestF64(-1.5))
	require.Equal(t, -4.0, WasmCompatNearestF64(-4.5)) // ties to even, unlike math.Round

	zero := float64(0)
	negZero := -zero
	require.False(t, math.Signbit(WasmCompatNearestF64(zero)))
	require.True(t, math.Signbit(WasmCompatNearestF64(negZero)))
}

func TestWasmCompatNearestF32(t *testing.T) {
	require.Equal(t, float32(-2.0), WasmCompatNearestF32(-1.5))
	require.Equal(t, float32(-4.0), WasmCompatNearestF32(-4.5))
}
