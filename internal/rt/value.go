// Package rt holds the interpreter's runtime entities: values, mutable
// cells, and the heap-allocated Func/Table/Memory/Global/ModuleInstance
// objects addressed by stable references (spec.md §3-4.1).
package rt

import (
	"math"
	"strconv"

	"github.com/wasmleaf/gowasm/internal/ast"
)

// Value is a tagged union over {I32, I64, F32, F64}. Floats are stored by
// bit pattern (the F32/F64 constructors and accessors below), the same trick the teacher's public
// api package uses (api.EncodeF32/DecodeF32) to keep one uint64 slot per
// value regardless of type.
type Value struct {
	Type ast.ValueType
	bits uint64
}

func I32(v int32) Value  { return Value{Type: ast.ValueTypeI32, bits: uint64(uint32(v))} }
func I64(v int64) Value  { return Value{Type: ast.ValueTypeI64, bits: uint64(v)} }
func F32(v float32) Value {
	return Value{Type: ast.ValueTypeF32, bits: uint64(math.Float32bits(v))}
}
func F64(v float64) Value { return Value{Type: ast.ValueTypeF64, bits: math.Float64bits(v)} }

// Zero returns the zero value of the given type, used to default-initialize
// declared locals (spec.md §3, Frame).
func Zero(t ast.ValueType) Value {
	switch t {
	case ast.ValueTypeI32:
		return I32(0)
	case ast.ValueTypeI64:
		return I64(0)
	case ast.ValueTypeF32:
		return F32(0)
	default:
		return F64(0)
	}
}

func (v Value) I32() int32     { return int32(uint32(v.bits)) }
func (v Value) I64() int64     { return int64(v.bits) }
func (v Value) F32() float32   { return math.Float32frombits(uint32(v.bits)) }
func (v Value) F64() float64   { return math.Float64frombits(v.bits) }
func (v Value) Bits() uint64   { return v.bits }

// Equal compares type tag and bit pattern; NaN payloads with the same bits
// compare equal, matching spec.md §3's "floats compare by bit pattern only
// where noted".
func (v Value) Equal(o Value) bool { return v.Type == o.Type && v.bits == o.bits }

func (v Value) String() string {
	switch v.Type {
	case ast.ValueTypeI32:
		return "i32:" + strconv.FormatInt(int64(v.I32()), 10)
	case ast.ValueTypeI64:
		return "i64:" + strconv.FormatInt(v.I64(), 10)
	case ast.ValueTypeF32:
		return "f32:" + strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	default:
		return "f64:" + strconv.FormatFloat(v.F64(), 'g', -1, 64)
	}
}

// Cell is a single-slot mutable container, used for locals and global
// contents (spec.md §3). Its lifetime is bound to its owner (a Frame or a
// GlobalInstance) — there is no independent lifetime management.
type Cell struct {
	v Value
}

func NewCell(v Value) *Cell { return &Cell{v: v} }
func (c *Cell) Get() Value  { return c.v }
func (c *Cell) Set(v Value) { c.v = v }
