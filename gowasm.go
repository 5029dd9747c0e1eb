// Package gowasm is the public entry point for the engine (spec.md §4.7,
// §6): instantiate a decoded module against a store, invoke and read its
// exports, and build host functions for it to import. It is a thin facade
// over internal/instantiate and internal/interp — mirroring the way the
// teacher's root wazero.go sits over internal/wasm.
package gowasm

import (
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/instantiate"
	"github.com/wasmleaf/gowasm/internal/interp"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// Initialize runs the instantiation pipeline (spec.md §4.6) for module
// against store, resolving its imports through names. cfg may be nil, in
// which case the process-wide defaults (a 300-frame budget, 65536-byte
// pages, a no-op logger) are left untouched.
func Initialize(cfg *Config, module *ast.Module, names rt.Names, store *rt.Store) (rt.ModuleRef, *rt.ModuleInstance, error) {
	if cfg != nil {
		cfg.apply()
	}
	return instantiate.Initialize(module, names, store)
}

// InvokeByName resolves a function export by name and invokes it with args,
// running the stepper to completion (spec.md §4.7).
func InvokeByName(store *rt.Store, ref rt.ModuleRef, inst *rt.ModuleInstance, name string, args []rt.Value) ([]rt.Value, error) {
	ext, ok := inst.GetExport(name, rt.ExternFunc)
	if !ok {
		return nil, rt.CrashError("no such function export: " + name)
	}
	return interp.Invoke(store, ref, ext.Func, args)
}

// GetByName reads a global export's current value by name (spec.md §4.7).
func GetByName(inst *rt.ModuleInstance, name string) (rt.Value, error) {
	ext, ok := inst.GetExport(name, rt.ExternGlobal)
	if !ok {
		return rt.Value{}, rt.CrashError("no such global export: " + name)
	}
	return ext.Global.Get(), nil
}

// SetByName writes a mutable global export's value by name, subject to the
// same mutability/type checks GlobalInstance.Set enforces (spec.md §3).
func SetByName(inst *rt.ModuleInstance, name string, v rt.Value) error {
	ext, ok := inst.GetExport(name, rt.ExternGlobal)
	if !ok {
		return rt.CrashError("no such global export: " + name)
	}
	return ext.Global.Set(rt.DefaultRegion, v)
}

// CreateHostFunc wraps a Go function that cannot fail as a ModuleFunc a
// host module can export for another module to import (spec.md §3 HostFunc).
func CreateHostFunc(ft ast.FuncType, fn func(args []rt.Value) []rt.Value) rt.ModuleFunc {
	return rt.NewHostFunc(ft, fn)
}

// CreateHostFuncEff wraps a Go function that can signal failure as a
// ModuleFunc; fn returns (msg, nil, false) to trap the caller, or
// ("", results, true) on success (spec.md §3 HostFuncEff).
func CreateHostFuncEff(ft ast.FuncType, fn func(args []rt.Value) (string, []rt.Value, bool)) rt.ModuleFunc {
	return rt.NewHostFuncEff(ft, fn)
}

// NewHostModule builds a ModuleInstance exporting fns under their given
// names, suitable for registering in a Store under a name imports can
// resolve against (spec.md §4.6 step 2's host-module case).
func NewHostModule(fns map[string]rt.ModuleFunc) *rt.ModuleInstance {
	exports := make(map[string]rt.ExternVal, len(fns))
	funcs := make([]rt.ModuleFunc, 0, len(fns))
	for name, f := range fns {
		exports[name] = rt.ExternVal{Kind: rt.ExternFunc, Func: f}
		funcs = append(funcs, f)
	}
	return &rt.ModuleInstance{Module: &ast.Module{}, Funcs: funcs, Exports: exports}
}

// Register stores an already-built host module instance in store under a
// fresh ref, records that ref in names under moduleName, and returns it.
func Register(store *rt.Store, names rt.Names, moduleName string, inst *rt.ModuleInstance) rt.ModuleRef {
	ref := store.NextKey()
	store.Put(ref, inst)
	names[moduleName] = ref
	return ref
}
