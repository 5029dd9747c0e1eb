package instantiate

import (
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// matchExternType checks the Wasm MVP import subtype relation (spec.md
// §4.6 step 2): the resolved extern's actual type must be a subtype of the
// importing declaration — an equal function or global type, or table/memory
// limits with an equal-or-larger minimum and an equal-or-tighter maximum.
func matchExternType(inst *rt.ModuleInstance, imp ast.Import, actual rt.ExternVal) bool {
	switch imp.Type {
	case ast.ExternTypeFunc:
		if actual.Kind != rt.ExternFunc {
			return false
		}
		if int(imp.FuncTypeIdx) >= len(inst.Types) {
			return false
		}
		return funcTypeEqual(actual.Func.Type(), inst.Types[imp.FuncTypeIdx])
	case ast.ExternTypeTable:
		if actual.Kind != rt.ExternTable {
			return false
		}
		return limitsMatch(actual.Table.Size(), actual.Table.Max(), imp.Table.Limits)
	case ast.ExternTypeMemory:
		if actual.Kind != rt.ExternMemory {
			return false
		}
		return limitsMatch(actual.Memory.SizePages(), actual.Memory.MaxPages(), imp.Memory.Limits)
	case ast.ExternTypeGlobal:
		if actual.Kind != rt.ExternGlobal {
			return false
		}
		return actual.Global.Type == imp.Global
	default:
		return false
	}
}

// limitsMatch reports whether an extern with the given current size and
// declared max satisfies the importer's declared limits: the actual
// minimum must be at least the expected minimum, and if the importer caps
// growth, the actual extern must carry an equal-or-tighter cap.
func limitsMatch(actualMin uint32, actualMax *uint32, want ast.Limits) bool {
	if actualMin < want.Min {
		return false
	}
	if want.Max == nil {
		return true
	}
	return actualMax != nil && *actualMax <= *want.Max
}

func funcTypeEqual(a, b ast.FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}
