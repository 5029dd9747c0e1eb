package interp

import (
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// EvalConstExpr evaluates a constant initializer expression — a global's
// init, or an element/data segment's offset — per spec.md §4.5. Only
// Const and GlobalGet (of an already-linked import) are legal; the
// expression must yield exactly one value. Checking that the referenced
// global is actually an imported immutable one is a validator concern
// (spec.md §1's decoder/validator boundary); this evaluator only resolves
// the index.
func EvalConstExpr(store *rt.Store, ref rt.ModuleRef, instrs []ast.Instr) (rt.Value, error) {
	var values []rt.Value
	for _, ins := range instrs {
		switch ins.Op {
		case ast.OpcodeConst:
			values = append(values, constValue(ins))
		case ast.OpcodeGlobalGet:
			mod, ok := store.Get(ref)
			if !ok {
				return rt.Value{}, rt.CrashError("undefined module")
			}
			if int(ins.Index) >= len(mod.Globals) {
				return rt.Value{}, rt.CrashError("undefined global index")
			}
			values = append(values, mod.Globals[ins.Index].Get())
		default:
			return rt.Value{}, rt.CrashError("illegal instruction in constant expression")
		}
	}
	if len(values) != 1 {
		return rt.Value{}, rt.CrashError("constant expression did not yield exactly one value")
	}
	return values[0], nil
}
