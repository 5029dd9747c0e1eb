// Package instantiate implements spec.md §4.6's instantiation pipeline:
// import resolution, allocation, non-transactional segment initialization,
// export publishing, and the start-function call.
package instantiate

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/interp"
	"github.com/wasmleaf/gowasm/internal/rt"
	"github.com/wasmleaf/gowasm/internal/rtlog"
)

// Initialize runs spec.md §4.6's ten-step pipeline against module, using
// names to resolve the two-level imports and store as both the source of
// already-instantiated modules and the destination for the new one. On
// success the new instance is already registered in store under the
// returned ref, per spec.md §4.6 step 10.
func Initialize(module *ast.Module, names rt.Names, store *rt.Store) (rt.ModuleRef, *rt.ModuleInstance, error) {
	inst := rt.NewModuleInstance(module)

	if err := resolveImports(module, names, store, inst); err != nil {
		rtlog.Logger().Warn("import resolution failed", zap.Error(err))
		return 0, nil, err
	}

	ref := store.NextKey()
	store.Put(ref, inst) // early insertion: const-expr evaluation below resolves globals against this in-progress instance

	if err := allocate(module, ref, store, inst); err != nil {
		return 0, nil, err
	}

	if err := initElements(module, inst); err != nil {
		return 0, nil, err
	}
	if err := initData(module, inst); err != nil {
		return 0, nil, err
	}

	buildExports(module, inst)

	if module.Start != nil {
		if int(*module.Start) >= len(inst.Funcs) {
			return 0, nil, rt.CrashError("undefined start function index")
		}
		rtlog.Logger().Debug("invoking start function", zap.Int("ref", int(ref)))
		if _, err := interp.Invoke(store, ref, inst.Funcs[*module.Start], nil); err != nil {
			return 0, nil, err
		}
	}

	return ref, inst, nil
}

// resolveImports implements spec.md §4.6 step 2. Every failed import is
// collected via multierr rather than aborting at the first one, so a
// module with several bad imports reports all of them in one LinkError.
func resolveImports(module *ast.Module, names rt.Names, store *rt.Store, inst *rt.ModuleInstance) error {
	var errs error
	for _, imp := range module.Imports {
		ev, err := resolveImport(names, store, inst, imp)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		switch imp.Type {
		case ast.ExternTypeFunc:
			inst.Funcs = append(inst.Funcs, ev.Func)
		case ast.ExternTypeTable:
			inst.Tables = append(inst.Tables, ev.Table)
		case ast.ExternTypeMemory:
			inst.Mems = append(inst.Mems, ev.Memory)
		case ast.ExternTypeGlobal:
			inst.Globals = append(inst.Globals, ev.Global)
		}
	}
	return errs
}

func resolveImport(names rt.Names, store *rt.Store, inst *rt.ModuleInstance, imp ast.Import) (rt.ExternVal, error) {
	ref, ok := names[imp.Module]
	if !ok {
		return rt.ExternVal{}, rt.LinkError(rt.DefaultRegion, fmt.Sprintf("Missing module for import: %s", imp.Module))
	}
	owner, ok := store.Get(ref)
	if !ok {
		return rt.ExternVal{}, rt.LinkError(rt.DefaultRegion, fmt.Sprintf("Missing module for import: %s", imp.Module))
	}
	ev, ok := owner.Exports[imp.Name]
	if !ok {
		return rt.ExternVal{}, rt.LinkError(rt.DefaultRegion, fmt.Sprintf("Missing extern for import: %s.%s", imp.Module, imp.Name))
	}
	if !matchExternType(inst, imp, ev) {
		return rt.ExternVal{}, rt.LinkError(rt.DefaultRegion, "incompatible import type")
	}
	return ev, nil
}

// allocate implements spec.md §4.6 steps 4-5: module-owned tables,
// functions, memories, and globals are allocated and appended to inst's
// vectors, continuing the index space imports started.
func allocate(module *ast.Module, ref rt.ModuleRef, store *rt.Store, inst *rt.ModuleInstance) error {
	for _, tt := range module.Tables {
		tbl, err := rt.NewTable(tt)
		if err != nil {
			return rt.LinkError(rt.DefaultRegion, err.Error())
		}
		inst.Tables = append(inst.Tables, tbl)
	}
	for _, mt := range module.Memories {
		mem, err := rt.NewMemory(mt)
		if err != nil {
			return rt.LinkError(rt.DefaultRegion, err.Error())
		}
		inst.Mems = append(inst.Mems, mem)
	}
	for _, fn := range module.Funcs {
		if int(fn.TypeIdx) >= len(inst.Types) {
			return rt.CrashError("undefined type index")
		}
		inst.Funcs = append(inst.Funcs, rt.NewAstFunc(inst.Types[fn.TypeIdx], ref, fn.Locals, fn.Body))
	}
	// Globals are allocated last and one at a time: each initializer may
	// reference an earlier global-in-this-module by index (spec.md §4.5).
	for _, gd := range module.Globals {
		v, err := interp.EvalConstExpr(store, ref, gd.Init)
		if err != nil {
			return err
		}
		g, err := rt.NewGlobal(gd.Type, v)
		if err != nil {
			return rt.LinkError(rt.DefaultRegion, err.Error())
		}
		inst.Globals = append(inst.Globals, g)
	}
	return nil
}

// initElements implements spec.md §4.6 step 6, non-transactionally.
func initElements(module *ast.Module, inst *rt.ModuleInstance) error {
	for _, seg := range module.Elems {
		offVal, err := evalOffsetAgainst(inst, seg.OffsetExpr)
		if err != nil {
			return err
		}
		if int(seg.TableIdx) >= len(inst.Tables) {
			return rt.CrashError("undefined table index")
		}
		tbl := inst.Tables[seg.TableIdx]
		offset := uint32(offVal.I32())
		end := uint64(offset) + uint64(len(seg.Init))
		if end > uint64(tbl.Size()) {
			return rt.LinkError(rt.DefaultRegion, "elements segment does not fit table")
		}
		funcs := make([]rt.ModuleFunc, len(seg.Init))
		for i, fi := range seg.Init {
			if int(fi) >= len(inst.Funcs) {
				return rt.CrashError("undefined function index")
			}
			funcs[i] = inst.Funcs[fi]
		}
		if err := tbl.Blit(offset, funcs); err != nil {
			return rt.LinkError(rt.DefaultRegion, "elements segment does not fit table")
		}
	}
	return nil
}

// initData implements spec.md §4.6 step 7, non-transactionally.
func initData(module *ast.Module, inst *rt.ModuleInstance) error {
	for _, seg := range module.Datas {
		offVal, err := evalOffsetAgainst(inst, seg.OffsetExpr)
		if err != nil {
			return err
		}
		if int(seg.MemIdx) >= len(inst.Mems) {
			return rt.CrashError("undefined memory index")
		}
		mem := inst.Mems[seg.MemIdx]
		offset := uint64(uint32(offVal.I32()))
		end := offset + uint64(len(seg.Init))
		if end > uint64(mem.Bound()) {
			return rt.LinkError(rt.DefaultRegion, "data segment does not fit memory")
		}
		if err := mem.StoreBytes(offset, seg.Init); err != nil {
			return rt.LinkError(rt.DefaultRegion, "data segment does not fit memory")
		}
	}
	return nil
}

// evalOffsetAgainst evaluates a constant offset expression directly
// against the in-progress instance's already-allocated globals, without
// needing a store lookup — element and data segment offsets only ever
// reference Const or an already-resolved import global (spec.md §4.5).
func evalOffsetAgainst(inst *rt.ModuleInstance, instrs []ast.Instr) (rt.Value, error) {
	var values []rt.Value
	for _, ins := range instrs {
		switch ins.Op {
		case ast.OpcodeConst:
			values = append(values, constOffsetValue(ins))
		case ast.OpcodeGlobalGet:
			if int(ins.Index) >= len(inst.Globals) {
				return rt.Value{}, rt.CrashError("undefined global index")
			}
			values = append(values, inst.Globals[ins.Index].Get())
		default:
			return rt.Value{}, rt.CrashError("illegal instruction in constant expression")
		}
	}
	if len(values) != 1 {
		return rt.Value{}, rt.CrashError("constant expression did not yield exactly one value")
	}
	return values[0], nil
}

func constOffsetValue(ins ast.Instr) rt.Value {
	switch ins.Type {
	case ast.ValueTypeI32:
		return rt.I32(ins.I32)
	case ast.ValueTypeI64:
		return rt.I64(ins.I64)
	case ast.ValueTypeF32:
		return rt.F32(ins.F32)
	default:
		return rt.F64(ins.F64)
	}
}

// buildExports implements spec.md §4.6 step 8.
func buildExports(module *ast.Module, inst *rt.ModuleInstance) {
	for _, exp := range module.Exports {
		var ev rt.ExternVal
		switch exp.Type {
		case ast.ExternTypeFunc:
			ev = rt.ExternVal{Kind: rt.ExternFunc, Func: inst.Funcs[exp.Index]}
		case ast.ExternTypeTable:
			ev = rt.ExternVal{Kind: rt.ExternTable, Table: inst.Tables[exp.Index]}
		case ast.ExternTypeMemory:
			ev = rt.ExternVal{Kind: rt.ExternMemory, Memory: inst.Mems[exp.Index]}
		case ast.ExternTypeGlobal:
			ev = rt.ExternVal{Kind: rt.ExternGlobal, Global: inst.Globals[exp.Index]}
		}
		inst.Exports[exp.Name] = ev
	}
}
