package numeric

import (
	"errors"
	"math"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// ConvertOp evaluates a type-directed conversion (spec.md §4.2's
// intCvtOp/floatCvtOp, merged here since both share one dispatch table
// keyed by op). from is the operand's actual type, to is the instruction's
// declared result type.
func ConvertOp(op ast.NumOp, from, to ast.ValueType, v rt.Value) (rt.Value, error) {
	if v.Type != from {
		return rt.Value{}, ErrTypeMismatch
	}
	switch op {
	case OpWrap:
		return rt.I32(int32(uint32(v.I64()))), nil
	case OpExtendS:
		return rt.I64(int64(v.I32())), nil
	case OpExtendU:
		return rt.I64(int64(uint32(v.I32()))), nil
	case OpConvertS:
		return convertSigned(from, to, v)
	case OpConvertU:
		return convertUnsigned(from, to, v)
	case OpTruncS:
		return truncSigned(from, to, v)
	case OpTruncU:
		return truncUnsigned(from, to, v)
	case OpDemote:
		return rt.F32(float32(v.F64())), nil
	case OpPromote:
		return rt.F64(float64(v.F32())), nil
	case OpReinterpret:
		return reinterpret(to, v), nil
	default:
		return rt.Value{}, ErrTypeMismatch
	}
}

func convertSigned(from, to ast.ValueType, v rt.Value) (rt.Value, error) {
	var src int64
	switch from {
	case ast.ValueTypeI32:
		src = int64(v.I32())
	case ast.ValueTypeI64:
		src = v.I64()
	default:
		return rt.Value{}, ErrTypeMismatch
	}
	if to == ast.ValueTypeF32 {
		return rt.F32(float32(src)), nil
	}
	return rt.F64(float64(src)), nil
}

func convertUnsigned(from, to ast.ValueType, v rt.Value) (rt.Value, error) {
	var src uint64
	switch from {
	case ast.ValueTypeI32:
		src = uint64(uint32(v.I32()))
	case ast.ValueTypeI64:
		src = uint64(v.I64())
	default:
		return rt.Value{}, ErrTypeMismatch
	}
	if to == ast.ValueTypeF32 {
		return rt.F32(float32(src)), nil
	}
	return rt.F64(float64(src)), nil
}

// truncSigned implements i32/i64.trunc_f32/f64_s: convert toward zero,
// trapping on NaN or values that don't fit the target integer's range.
func truncSigned(from, to ast.ValueType, v rt.Value) (rt.Value, error) {
	f, err := asFloat64(from, v)
	if err != nil {
		return rt.Value{}, err
	}
	if math.IsNaN(f) {
		return rt.Value{}, errInvalidConversion
	}
	t := math.Trunc(f)
	if to == ast.ValueTypeI32 {
		if t < math.MinInt32 || t > math.MaxInt32 {
			return rt.Value{}, errIntOverflow
		}
		return rt.I32(int32(t)), nil
	}
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return rt.Value{}, errIntOverflow
	}
	return rt.I64(int64(t)), nil
}

// truncUnsigned is truncSigned's unsigned counterpart.
func truncUnsigned(from, to ast.ValueType, v rt.Value) (rt.Value, error) {
	f, err := asFloat64(from, v)
	if err != nil {
		return rt.Value{}, err
	}
	if math.IsNaN(f) {
		return rt.Value{}, errInvalidConversion
	}
	t := math.Trunc(f)
	if to == ast.ValueTypeI32 {
		if t < 0 || t > math.MaxUint32 {
			return rt.Value{}, errIntOverflow
		}
		return rt.I32(int32(uint32(t))), nil
	}
	if t < 0 || t >= 18446744073709551616.0 {
		return rt.Value{}, errIntOverflow
	}
	return rt.I64(int64(uint64(t))), nil
}

func asFloat64(from ast.ValueType, v rt.Value) (float64, error) {
	switch from {
	case ast.ValueTypeF32:
		return float64(v.F32()), nil
	case ast.ValueTypeF64:
		return v.F64(), nil
	default:
		return 0, ErrTypeMismatch
	}
}

func reinterpret(to ast.ValueType, v rt.Value) rt.Value {
	switch to {
	case ast.ValueTypeI32:
		return rt.I32(int32(uint32(v.Bits())))
	case ast.ValueTypeI64:
		return rt.I64(int64(v.Bits()))
	case ast.ValueTypeF32:
		return rt.F32(math.Float32frombits(uint32(v.Bits())))
	default:
		return rt.F64(math.Float64frombits(v.Bits()))
	}
}

var errInvalidConversion = errors.New("invalid conversion to integer")
