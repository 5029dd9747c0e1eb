package rt

import "github.com/wasmleaf/gowasm/internal/ast"

// ExternKind tags the four kinds an ExternVal can wrap.
type ExternKind byte

const (
	ExternFunc ExternKind = iota
	ExternTable
	ExternMemory
	ExternGlobal
)

// ExternVal is a reference to one of a module's importable/exportable
// entities (spec.md §3). Only one of the fields is populated, selected by
// Kind — imports and exports pass these around uninspected until a
// specific kind is required.
type ExternVal struct {
	Kind   ExternKind
	Func   ModuleFunc
	Table  *TableInstance
	Memory *MemoryInstance
	Global *GlobalInstance
}

// ModuleInstance is a runtime instantiation of a Module AST bound to
// specific imports and allocated runtime entities (spec.md §3). Imports
// are prepended to Funcs/Tables/Memories/Globals so a module-local index
// continues to address the right slot after linking.
type ModuleInstance struct {
	Module  *ast.Module
	Types   []ast.FuncType
	Funcs   []ModuleFunc
	Tables  []*TableInstance
	Mems    []*MemoryInstance
	Globals []*GlobalInstance
	Exports map[string]ExternVal
}

// NewModuleInstance starts an empty instance holding only the module AST,
// per spec.md §4.6 step 1.
func NewModuleInstance(m *ast.Module) *ModuleInstance {
	return &ModuleInstance{Module: m, Types: append([]ast.FuncType(nil), m.Types...), Exports: map[string]ExternVal{}}
}

// GetExport looks up a named export and checks its kind, mirroring the
// teacher's ModuleInstance.GetExport in internal/wasm/store.go.
func (m *ModuleInstance) GetExport(name string, kind ExternKind) (ExternVal, bool) {
	e, ok := m.Exports[name]
	if !ok || e.Kind != kind {
		return ExternVal{}, false
	}
	return e, true
}
