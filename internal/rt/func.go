package rt

import "github.com/wasmleaf/gowasm/internal/ast"

// ModuleRef is an opaque integer key naming a ModuleInstance in a Store
// (spec.md §3). AstFunc stores one instead of a direct pointer to the
// owning ModuleInstance, which would otherwise create a reference cycle
// (a module's functions point at the module, whose exports point at the
// functions) — see spec.md §9 "Module store as indirection".
type ModuleRef int

// ModuleFunc is the union of ways a callable can be implemented
// (spec.md §3).
type ModuleFunc interface {
	Type() ast.FuncType
	isModuleFunc()
}

// AstFunc is a function defined in a module, executed by the stepper.
type AstFunc struct {
	FuncType ast.FuncType
	Owner    ModuleRef
	Locals   []ast.ValueType
	Body     []ast.Instr
}

func (f *AstFunc) Type() ast.FuncType { return f.FuncType }
func (*AstFunc) isModuleFunc()        {}

// HostFunc is a host function that must not fail: [Value] -> [Value].
type HostFunc struct {
	FuncType ast.FuncType
	Fn       func(args []Value) []Value
}

func (f *HostFunc) Type() ast.FuncType { return f.FuncType }
func (*HostFunc) isModuleFunc()        {}

// HostFuncEff is a host function that can signal failure; failure becomes
// a trap at the call site (spec.md §3, §4.3 Invoke handling). Fn returns
// (msg, nil, false) to signal a trap, or ("", results, true) on success —
// the Go rendering of Either<String, [Value]>.
type HostFuncEff struct {
	FuncType ast.FuncType
	Fn       func(args []Value) (msg string, results []Value, ok bool)
}

func (f *HostFuncEff) Type() ast.FuncType { return f.FuncType }
func (*HostFuncEff) isModuleFunc()        {}

// NewAstFunc allocates a module-defined function, recording its owning
// module so Call/CallIndirect targets resolve locals/globals against the
// callee's module rather than the caller's (spec.md §4.1 Func.alloc).
func NewAstFunc(t ast.FuncType, owner ModuleRef, locals []ast.ValueType, body []ast.Instr) *AstFunc {
	return &AstFunc{FuncType: t, Owner: owner, Locals: locals, Body: body}
}

// NewHostFunc wraps a pure Go function as a ModuleFunc.
func NewHostFunc(t ast.FuncType, fn func(args []Value) []Value) *HostFunc {
	return &HostFunc{FuncType: t, Fn: fn}
}

// NewHostFuncEff wraps a fallible Go function as a ModuleFunc. Fn returns
// (msg, nil, false) for a trap or ("", results, true) on success.
func NewHostFuncEff(t ast.FuncType, fn func(args []Value) (string, []Value, bool)) *HostFuncEff {
	return &HostFuncEff{FuncType: t, Fn: fn}
}
