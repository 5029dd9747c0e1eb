package rt

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wasmleaf/gowasm/internal/ast"
)

// PageSize is the unit of memory length in WebAssembly (spec.md §6). It is
// a variable, not a constant, so Config.WithPageSize can shrink it for
// tests that would otherwise need to allocate full 64KiB pages; production
// embeddings never call SetPageSize and get the spec default.
var PageSize = uint32(65536)

// SetPageSize overrides PageSize — Config.WithPageSize's underlying
// primitive.
func SetPageSize(n uint32) { PageSize = n }

// MemoryInstance is a linear byte buffer with a page-multiple logical size
// and a physical bound (spec.md §3). Following the teacher's memory.go,
// the buffer's own length doubles as both: Bound returns len(Buffer) and
// SizePages is that length divided by PageSize.
type MemoryInstance struct {
	Buffer []byte
	Max    *uint32 // pages, nil == unbounded up to the implementation ceiling
}

// maxMemoryPages is the 32-bit address space ceiling on page count, shared
// by NewMemory's validation and Grow's runtime check.
const maxMemoryPages = 65536

// NewMemory allocates a zeroed, page-aligned buffer (spec.md §4.1),
// rejecting a min>max declaration or a min above the address space
// ceiling the way NewTable validates a table's limits before allocation.
func NewMemory(t ast.MemoryType) (*MemoryInstance, error) {
	if t.Limits.Max != nil && t.Limits.Min > *t.Limits.Max {
		return nil, fmt.Errorf("%s: min %d exceeds max %d", MsgMemorySizeLimit, t.Limits.Min, *t.Limits.Max)
	}
	if t.Limits.Min > maxMemoryPages {
		return nil, fmt.Errorf("%s: min %d exceeds page limit %d", MsgMemorySizeOverflow, t.Limits.Min, maxMemoryPages)
	}
	return &MemoryInstance{
		Buffer: make([]byte, uint64(t.Limits.Min)*uint64(PageSize)),
		Max:    t.Limits.Max,
	}, nil
}

func (m *MemoryInstance) SizePages() uint32 { return uint32(uint64(len(m.Buffer)) / uint64(PageSize)) }
func (m *MemoryInstance) Bound() uint32     { return uint32(len(m.Buffer)) }

// MaxPages returns the memory's declared maximum in pages, or nil if
// unbounded — used by import matching's limits subtype check (spec.md
// §4.6 step 2).
func (m *MemoryInstance) MaxPages() *uint32 { return m.Max }

// Grow attempts to add delta pages, returning the prior page count on
// success or -1 on failure (spec.md §4.4 MemoryGrow, §6). Growth never
// traps.
func (m *MemoryInstance) Grow(delta uint32) int64 {
	prior := m.SizePages()
	next := uint64(prior) + uint64(delta)
	if next > maxMemoryPages {
		return -1
	}
	if m.Max != nil && next > uint64(*m.Max) {
		return -1
	}
	m.Buffer = append(m.Buffer, make([]byte, uint64(delta)*uint64(PageSize))...)
	return int64(prior)
}

// effectiveAddress computes base + offset as spec.md §3 prescribes: the
// base is a zero-extended i32, the offset is a static u32, and the sum is
// carried in 64 bits so overflow is detectable rather than silently
// wrapping.
func effectiveAddress(base uint32, offset uint32) uint64 {
	return uint64(base) + uint64(offset)
}

func widthOf(sz ast.MemSize) uint64 {
	switch sz {
	case ast.MemSize8:
		return 1
	case ast.MemSize16:
		return 2
	case ast.MemSize32:
		return 4
	default:
		return 8
	}
}

// LoadPacked reads a possibly-narrower-than-register integer at the given
// effective address, sign- or zero-extending it to the target ValueType.
func (m *MemoryInstance) LoadPacked(r Region, base, offset uint32, sz ast.MemSize, signExt bool, target ast.ValueType) (Value, error) {
	ea := effectiveAddress(base, offset)
	w := widthOf(sz)
	end := ea + w
	if end > uint64(len(m.Buffer)) {
		return Value{}, TrapError(r, MsgOOBMemory)
	}
	raw := m.Buffer[ea:end]
	var u64 uint64
	for i := len(raw) - 1; i >= 0; i-- {
		u64 = u64<<8 | uint64(raw[i])
	}
	bits := w * 8
	if signExt {
		shift := 64 - bits
		return valueFromBits(target, uint64(int64(u64<<shift)>>shift)), nil
	}
	return valueFromBits(target, u64), nil
}

// StorePacked writes the low w bytes of v's integer bits at the effective
// address.
func (m *MemoryInstance) StorePacked(r Region, base, offset uint32, sz ast.MemSize, v Value) error {
	ea := effectiveAddress(base, offset)
	w := widthOf(sz)
	end := ea + w
	if end > uint64(len(m.Buffer)) {
		return TrapError(r, MsgOOBMemory)
	}
	u64 := v.Bits()
	for i := uint64(0); i < w; i++ {
		m.Buffer[ea+i] = byte(u64 >> (8 * i))
	}
	return nil
}

// LoadValue reads a full-width value (i32/i64/f32/f64) at the effective
// address; used by Load ops whose MemSize matches the value's natural
// width.
func (m *MemoryInstance) LoadValue(r Region, base, offset uint32, t ast.ValueType) (Value, error) {
	ea := effectiveAddress(base, offset)
	w := naturalWidth(t)
	end := ea + w
	if end > uint64(len(m.Buffer)) {
		return Value{}, TrapError(r, MsgOOBMemory)
	}
	switch t {
	case ast.ValueTypeI32:
		return I32(int32(binary.LittleEndian.Uint32(m.Buffer[ea:end]))), nil
	case ast.ValueTypeI64:
		return I64(int64(binary.LittleEndian.Uint64(m.Buffer[ea:end]))), nil
	case ast.ValueTypeF32:
		return F32(math.Float32frombits(binary.LittleEndian.Uint32(m.Buffer[ea:end]))), nil
	default:
		return F64(math.Float64frombits(binary.LittleEndian.Uint64(m.Buffer[ea:end]))), nil
	}
}

// StoreValue writes a full-width value at the effective address.
func (m *MemoryInstance) StoreValue(r Region, base, offset uint32, v Value) error {
	ea := effectiveAddress(base, offset)
	w := naturalWidth(v.Type)
	end := ea + w
	if end > uint64(len(m.Buffer)) {
		return TrapError(r, MsgOOBMemory)
	}
	switch v.Type {
	case ast.ValueTypeI32:
		binary.LittleEndian.PutUint32(m.Buffer[ea:end], uint32(v.I32()))
	case ast.ValueTypeI64:
		binary.LittleEndian.PutUint64(m.Buffer[ea:end], uint64(v.I64()))
	case ast.ValueTypeF32:
		binary.LittleEndian.PutUint32(m.Buffer[ea:end], math.Float32bits(v.F32()))
	default:
		binary.LittleEndian.PutUint64(m.Buffer[ea:end], math.Float64bits(v.F64()))
	}
	return nil
}

// StoreBytes copies raw bytes starting at a byte offset; used for data
// segment initialization (spec.md §4.6 step 7).
func (m *MemoryInstance) StoreBytes(offset uint64, data []byte) error {
	end := offset + uint64(len(data))
	if end > uint64(len(m.Buffer)) {
		return TrapError(DefaultRegion, MsgOOBMemory)
	}
	copy(m.Buffer[offset:end], data)
	return nil
}

func naturalWidth(t ast.ValueType) uint64 {
	if t == ast.ValueTypeI32 || t == ast.ValueTypeF32 {
		return 4
	}
	return 8
}

func valueFromBits(t ast.ValueType, bits uint64) Value {
	switch t {
	case ast.ValueTypeI32:
		return I32(int32(uint32(bits)))
	default:
		return I64(int64(bits))
	}
}
