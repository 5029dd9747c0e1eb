package rt

import (
	"fmt"

	"github.com/wasmleaf/gowasm/internal/ast"
)

// TableInstance is a fixed-max bounded sequence of optional function
// references (spec.md §3). Table.alloc equivalent lives in NewTable.
type TableInstance struct {
	elems []ModuleFunc // nil entry == uninitialized
	max   *uint32
}

// NewTable allocates a table, rejecting a min>max declaration the way the
// teacher's table.go validates limits before allocation.
func NewTable(t ast.TableType) (*TableInstance, error) {
	if t.Limits.Max != nil && t.Limits.Min > *t.Limits.Max {
		return nil, fmt.Errorf("table: min %d exceeds max %d", t.Limits.Min, *t.Limits.Max)
	}
	return &TableInstance{elems: make([]ModuleFunc, t.Limits.Min), max: t.Limits.Max}, nil
}

func (t *TableInstance) Size() uint32 { return uint32(len(t.elems)) }

// Max returns the table's declared maximum, or nil if unbounded — used by
// import matching's limits subtype check (spec.md §4.6 step 2).
func (t *TableInstance) Max() *uint32 { return t.max }

// Load returns the function at index i, or a TableError if i is out of
// bounds. A nil ModuleFunc with a nil error means the slot exists but is
// uninitialized.
func (t *TableInstance) Load(r Region, i uint32) (ModuleFunc, error) {
	if i >= uint32(len(t.elems)) {
		return nil, TableErrorf(r, "out of bounds table access: %d >= %d", i, len(t.elems))
	}
	return t.elems[i], nil
}

// Blit overwrites [offset, offset+len(values)) with values, used by element
// segment initialization (spec.md §4.6 step 6).
func (t *TableInstance) Blit(offset uint32, values []ModuleFunc) error {
	end := uint64(offset) + uint64(len(values))
	if end > uint64(len(t.elems)) {
		return fmt.Errorf("table: blit range [%d,%d) exceeds size %d", offset, end, len(t.elems))
	}
	copy(t.elems[offset:], values)
	return nil
}

// Grow extends the table by delta elements, returning the prior size, or
// -1 (as would be pushed for i32 -1) if growth would exceed max.
func (t *TableInstance) Grow(delta uint32) int64 {
	prior := uint32(len(t.elems))
	if t.max != nil && uint64(prior)+uint64(delta) > uint64(*t.max) {
		return -1
	}
	t.elems = append(t.elems, make([]ModuleFunc, delta)...)
	return int64(prior)
}
