// Package moremath collects floating-point helpers whose semantics differ
// slightly from the Go standard library's in ways WebAssembly's spec
// requires, adapted from the teacher's internal/moremath package.
package moremath

import "math"

// WasmCompatMin doesn't just call math.Min: Wasm's f32.min/f64.min must
// return NaN if either operand is NaN even when the other is -Inf, which
// math.Min does not guarantee.
func WasmCompatMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// WasmCompatMax is WasmCompatMin's mirror for f32.max/f64.max.
func WasmCompatMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// WasmCompatNearestF64 implements f64.nearest: round to the nearest
// integer, ties to even, which differs from math.Round's ties-away-from-
// zero behavior.
func WasmCompatNearestF64(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return f
	}
	rounded := math.Round(f)
	if diff := math.Abs(f - math.Trunc(f)); diff == 0.5 {
		// math.Round breaks ties away from zero; Wasm ties to even.
		if math.Mod(rounded, 2) != 0 {
			if rounded > f {
				rounded--
			} else {
				rounded++
			}
		}
	}
	if rounded == 0 {
		return math.Copysign(0, f)
	}
	return rounded
}

// WasmCompatNearestF32 is WasmCompatNearestF64's float32 counterpart.
func WasmCompatNearestF32(f float32) float32 {
	return float32(WasmCompatNearestF64(float64(f)))
}
