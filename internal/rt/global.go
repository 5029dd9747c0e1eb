package rt

import "github.com/wasmleaf/gowasm/internal/ast"

// GlobalInstance is a typed, optionally mutable storage cell (spec.md §3).
type GlobalInstance struct {
	Type    ast.GlobalType
	content *Cell
}

// NewGlobal allocates a global, checking that v's type tag matches the
// declared value type (spec.md §4.1 Global.alloc).
func NewGlobal(t ast.GlobalType, v Value) (*GlobalInstance, error) {
	if v.Type != t.ValType {
		return nil, GlobalError(DefaultRegion, MsgGlobalTypeMismatch)
	}
	return &GlobalInstance{Type: t, content: NewCell(v)}, nil
}

func (g *GlobalInstance) Get() Value { return g.content.Get() }

// Set stores v, failing with NotMutable or TypeError per spec.md §3.
func (g *GlobalInstance) Set(r Region, v Value) error {
	if !g.Type.Mutable {
		return GlobalError(r, MsgImmutableGlobal)
	}
	if v.Type != g.Type.ValType {
		return GlobalError(r, MsgGlobalTypeMismatch)
	}
	g.content.Set(v)
	return nil
}
