// Package numeric implements the pure operator layer spec.md §4.2
// describes: test/compare/unary/binary/convert dispatch over the four
// value types. Every function here is a pure function of its operands;
// type mismatches (which a validated module should never produce) come
// back as an error rather than a panic, exactly as spec.md requires so the
// stepper can convert it into a trap.
package numeric

import (
	"errors"
	"math"
	"math/bits"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/moremath"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// ErrTypeMismatch is returned when dispatch is asked to operate on a value
// whose type doesn't match the instruction's declared operand type. Per
// spec.md §4.2 this "must not happen on a validated module".
var ErrTypeMismatch = errors.New("type mismatch")

// NumOp constants. Grouped by the family (Test/Compare/Unary/Binary/Cvt)
// they're dispatched under; all groups share one iota sequence, so every
// value is unique across families as well as within one.
const (
	// Test (i32/i64 only)
	OpEqz ast.NumOp = iota

	// Compare (same-type operands, i32 result)
	OpEq
	OpNe
	OpLtS
	OpLtU
	OpGtS
	OpGtU
	OpLeS
	OpLeU
	OpGeS
	OpGeU
	OpLt // float
	OpGt // float
	OpLe // float
	OpGe // float

	// Unary
	OpClz
	OpCtz
	OpPopcnt
	OpAbs
	OpNeg
	OpCeil
	OpFloor
	OpTrunc
	OpNearest
	OpSqrt

	// Binary
	OpAdd
	OpSub
	OpMul
	OpDivS
	OpDivU
	OpDiv // float
	OpRemS
	OpRemU
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShrS
	OpShrU
	OpRotl
	OpRotr
	OpMin
	OpMax
	OpCopysign

	// Convert
	OpWrap        // i64 -> i32
	OpExtendS     // i32 -> i64 signed
	OpExtendU     // i32 -> i64 unsigned
	OpTruncS      // float -> int, trap on NaN/overflow
	OpTruncU      // float -> int unsigned, trap on NaN/overflow
	OpConvertS    // int -> float signed
	OpConvertU    // int -> float unsigned
	OpDemote      // f64 -> f32
	OpPromote     // f32 -> f64
	OpReinterpret // bit-preserving cross family
)

// TestOp evaluates a single-operand i32/i64 test, per spec.md §4.2.
func TestOp(op ast.NumOp, v rt.Value) (rt.Value, error) {
	if op != OpEqz {
		return rt.Value{}, ErrTypeMismatch
	}
	switch v.Type {
	case ast.ValueTypeI32:
		return boolValue(v.I32() == 0), nil
	case ast.ValueTypeI64:
		return boolValue(v.I64() == 0), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

// CompareOp evaluates a two-operand, same-type comparison producing i32
// 0/1, per spec.md §4.2. v1 is the first operand (deeper on the stack),
// v2 the second (spec.md §3 operand-order invariant).
func CompareOp(op ast.NumOp, v1, v2 rt.Value) (rt.Value, error) {
	if v1.Type != v2.Type {
		return rt.Value{}, ErrTypeMismatch
	}
	switch v1.Type {
	case ast.ValueTypeI32:
		a, b := v1.I32(), v2.I32()
		ua, ub := uint32(a), uint32(b)
		switch op {
		case OpEq:
			return boolValue(a == b), nil
		case OpNe:
			return boolValue(a != b), nil
		case OpLtS:
			return boolValue(a < b), nil
		case OpLtU:
			return boolValue(ua < ub), nil
		case OpGtS:
			return boolValue(a > b), nil
		case OpGtU:
			return boolValue(ua > ub), nil
		case OpLeS:
			return boolValue(a <= b), nil
		case OpLeU:
			return boolValue(ua <= ub), nil
		case OpGeS:
			return boolValue(a >= b), nil
		case OpGeU:
			return boolValue(ua >= ub), nil
		}
	case ast.ValueTypeI64:
		a, b := v1.I64(), v2.I64()
		ua, ub := uint64(a), uint64(b)
		switch op {
		case OpEq:
			return boolValue(a == b), nil
		case OpNe:
			return boolValue(a != b), nil
		case OpLtS:
			return boolValue(a < b), nil
		case OpLtU:
			return boolValue(ua < ub), nil
		case OpGtS:
			return boolValue(a > b), nil
		case OpGtU:
			return boolValue(ua > ub), nil
		case OpLeS:
			return boolValue(a <= b), nil
		case OpLeU:
			return boolValue(ua <= ub), nil
		case OpGeS:
			return boolValue(a >= b), nil
		case OpGeU:
			return boolValue(ua >= ub), nil
		}
	case ast.ValueTypeF32:
		a, b := v1.F32(), v2.F32()
		switch op {
		case OpEq:
			return boolValue(a == b), nil
		case OpNe:
			return boolValue(a != b), nil
		case OpLt:
			return boolValue(a < b), nil
		case OpGt:
			return boolValue(a > b), nil
		case OpLe:
			return boolValue(a <= b), nil
		case OpGe:
			return boolValue(a >= b), nil
		}
	case ast.ValueTypeF64:
		a, b := v1.F64(), v2.F64()
		switch op {
		case OpEq:
			return boolValue(a == b), nil
		case OpNe:
			return boolValue(a != b), nil
		case OpLt:
			return boolValue(a < b), nil
		case OpGt:
			return boolValue(a > b), nil
		case OpLe:
			return boolValue(a <= b), nil
		case OpGe:
			return boolValue(a >= b), nil
		}
	}
	return rt.Value{}, ErrTypeMismatch
}

// UnaryOp evaluates a same-type-in-same-type-out unary operator.
func UnaryOp(op ast.NumOp, v rt.Value) (rt.Value, error) {
	switch v.Type {
	case ast.ValueTypeI32:
		u := uint32(v.I32())
		switch op {
		case OpClz:
			return rt.I32(int32(bits.LeadingZeros32(u))), nil
		case OpCtz:
			return rt.I32(int32(bits.TrailingZeros32(u))), nil
		case OpPopcnt:
			return rt.I32(int32(bits.OnesCount32(u))), nil
		}
	case ast.ValueTypeI64:
		u := uint64(v.I64())
		switch op {
		case OpClz:
			return rt.I64(int64(bits.LeadingZeros64(u))), nil
		case OpCtz:
			return rt.I64(int64(bits.TrailingZeros64(u))), nil
		case OpPopcnt:
			return rt.I64(int64(bits.OnesCount64(u))), nil
		}
	case ast.ValueTypeF32:
		f := v.F32()
		switch op {
		case OpAbs:
			return rt.F32(float32(math.Abs(float64(f)))), nil
		case OpNeg:
			return rt.F32(-f), nil
		case OpCeil:
			return rt.F32(float32(math.Ceil(float64(f)))), nil
		case OpFloor:
			return rt.F32(float32(math.Floor(float64(f)))), nil
		case OpTrunc:
			return rt.F32(float32(math.Trunc(float64(f)))), nil
		case OpNearest:
			return rt.F32(moremath.WasmCompatNearestF32(f)), nil
		case OpSqrt:
			return rt.F32(float32(math.Sqrt(float64(f)))), nil
		}
	case ast.ValueTypeF64:
		f := v.F64()
		switch op {
		case OpAbs:
			return rt.F64(math.Abs(f)), nil
		case OpNeg:
			return rt.F64(-f), nil
		case OpCeil:
			return rt.F64(math.Ceil(f)), nil
		case OpFloor:
			return rt.F64(math.Floor(f)), nil
		case OpTrunc:
			return rt.F64(math.Trunc(f)), nil
		case OpNearest:
			return rt.F64(moremath.WasmCompatNearestF64(f)), nil
		case OpSqrt:
			return rt.F64(math.Sqrt(f)), nil
		}
	}
	return rt.Value{}, ErrTypeMismatch
}

// BinaryOp evaluates a same-type binary operator. v1 is the first operand
// (deeper on the stack), v2 the second — spec.md §3's "pop v2 then v1,
// compute op(v1, v2)" invariant is the caller's responsibility (the
// stepper's Binary clause), not this function's.
func BinaryOp(op ast.NumOp, v1, v2 rt.Value) (rt.Value, error) {
	if v1.Type != v2.Type {
		return rt.Value{}, ErrTypeMismatch
	}
	switch v1.Type {
	case ast.ValueTypeI32:
		return binaryI32(op, v1.I32(), v2.I32())
	case ast.ValueTypeI64:
		return binaryI64(op, v1.I64(), v2.I64())
	case ast.ValueTypeF32:
		return binaryF32(op, v1.F32(), v2.F32())
	default:
		return binaryF64(op, v1.F64(), v2.F64())
	}
}

func binaryI32(op ast.NumOp, a, b int32) (rt.Value, error) {
	ua, ub := uint32(a), uint32(b)
	switch op {
	case OpAdd:
		return rt.I32(int32(ua + ub)), nil
	case OpSub:
		return rt.I32(int32(ua - ub)), nil
	case OpMul:
		return rt.I32(int32(ua * ub)), nil
	case OpDivS:
		if b == 0 {
			return rt.Value{}, errIntDivByZero
		}
		if a == math.MinInt32 && b == -1 {
			return rt.Value{}, errIntOverflow
		}
		return rt.I32(a / b), nil
	case OpDivU:
		if ub == 0 {
			return rt.Value{}, errIntDivByZero
		}
		return rt.I32(int32(ua / ub)), nil
	case OpRemS:
		if b == 0 {
			return rt.Value{}, errIntDivByZero
		}
		if a == math.MinInt32 && b == -1 {
			return rt.I32(0), nil
		}
		return rt.I32(a % b), nil
	case OpRemU:
		if ub == 0 {
			return rt.Value{}, errIntDivByZero
		}
		return rt.I32(int32(ua % ub)), nil
	case OpAnd:
		return rt.I32(a & b), nil
	case OpOr:
		return rt.I32(a | b), nil
	case OpXor:
		return rt.I32(a ^ b), nil
	case OpShl:
		return rt.I32(int32(ua << (ub % 32))), nil
	case OpShrS:
		return rt.I32(a >> (ub % 32)), nil
	case OpShrU:
		return rt.I32(int32(ua >> (ub % 32))), nil
	case OpRotl:
		return rt.I32(int32(bits.RotateLeft32(ua, int(ub%32)))), nil
	case OpRotr:
		return rt.I32(int32(bits.RotateLeft32(ua, -int(ub%32)))), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

func binaryI64(op ast.NumOp, a, b int64) (rt.Value, error) {
	ua, ub := uint64(a), uint64(b)
	switch op {
	case OpAdd:
		return rt.I64(int64(ua + ub)), nil
	case OpSub:
		return rt.I64(int64(ua - ub)), nil
	case OpMul:
		return rt.I64(int64(ua * ub)), nil
	case OpDivS:
		if b == 0 {
			return rt.Value{}, errIntDivByZero
		}
		if a == math.MinInt64 && b == -1 {
			return rt.Value{}, errIntOverflow
		}
		return rt.I64(a / b), nil
	case OpDivU:
		if ub == 0 {
			return rt.Value{}, errIntDivByZero
		}
		return rt.I64(int64(ua / ub)), nil
	case OpRemS:
		if b == 0 {
			return rt.Value{}, errIntDivByZero
		}
		if a == math.MinInt64 && b == -1 {
			return rt.I64(0), nil
		}
		return rt.I64(a % b), nil
	case OpRemU:
		if ub == 0 {
			return rt.Value{}, errIntDivByZero
		}
		return rt.I64(int64(ua % ub)), nil
	case OpAnd:
		return rt.I64(a & b), nil
	case OpOr:
		return rt.I64(a | b), nil
	case OpXor:
		return rt.I64(a ^ b), nil
	case OpShl:
		return rt.I64(int64(ua << (ub % 64))), nil
	case OpShrS:
		return rt.I64(a >> (ub % 64)), nil
	case OpShrU:
		return rt.I64(int64(ua >> (ub % 64))), nil
	case OpRotl:
		return rt.I64(int64(bits.RotateLeft64(ua, int(ub%64)))), nil
	case OpRotr:
		return rt.I64(int64(bits.RotateLeft64(ua, -int(ub%64)))), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

func binaryF32(op ast.NumOp, a, b float32) (rt.Value, error) {
	switch op {
	case OpAdd:
		return rt.F32(a + b), nil
	case OpSub:
		return rt.F32(a - b), nil
	case OpMul:
		return rt.F32(a * b), nil
	case OpDiv:
		return rt.F32(a / b), nil
	case OpMin:
		return rt.F32(float32(moremath.WasmCompatMin(float64(a), float64(b)))), nil
	case OpMax:
		return rt.F32(float32(moremath.WasmCompatMax(float64(a), float64(b)))), nil
	case OpCopysign:
		return rt.F32(float32(math.Copysign(float64(a), float64(b)))), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

func binaryF64(op ast.NumOp, a, b float64) (rt.Value, error) {
	switch op {
	case OpAdd:
		return rt.F64(a + b), nil
	case OpSub:
		return rt.F64(a - b), nil
	case OpMul:
		return rt.F64(a * b), nil
	case OpDiv:
		return rt.F64(a / b), nil
	case OpMin:
		return rt.F64(moremath.WasmCompatMin(a, b)), nil
	case OpMax:
		return rt.F64(moremath.WasmCompatMax(a, b)), nil
	case OpCopysign:
		return rt.F64(math.Copysign(a, b)), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

func boolValue(b bool) rt.Value {
	if b {
		return rt.I32(1)
	}
	return rt.I32(0)
}

var (
	errIntDivByZero = errors.New("integer divide by zero")
	errIntOverflow  = errors.New("integer overflow")
)
