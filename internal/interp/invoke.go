package interp

import (
	"go.uber.org/zap"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
	"github.com/wasmleaf/gowasm/internal/rtlog"
)

// Invoke runs f with args to completion, starting a fresh Config against
// store rooted at the calling module ref (spec.md §4.7 InvokeByName's
// underlying primitive). It never runs the toolchain-only decoder path —
// f is already a resolved rt.ModuleFunc, typically obtained via
// ModuleInstance.GetExport.
func Invoke(store *rt.Store, ref rt.ModuleRef, f rt.ModuleFunc, args []rt.Value) ([]rt.Value, error) {
	cfg := NewConfig(store, &Frame{ModRef: ref})
	code := NewCode(args, []AdminInstr{{Kind: AdminInvoke, Func: f, Region: rt.DefaultRegion}})
	return Run(cfg, code)
}

// stepInvoke implements spec.md §4.3's Invoke handling: pop arguments,
// type-check them, and either run a host function directly or install a
// Framed activation for an AstFunc.
func stepInvoke(cfg *Config, head AdminInstr, code *Code) error {
	f := head.Func
	ft := f.Type()
	args, ok := code.PopN(len(ft.Params))
	if !ok {
		return rt.CrashError("stack underflow at call")
	}
	for i, want := range ft.Params {
		if args[i].Type != want {
			return rt.CrashError("argument type mismatch at call")
		}
	}

	switch fn := f.(type) {
	case *rt.AstFunc:
		if cfg.Budget <= 0 {
			rtlog.Logger().Warn("call budget exhausted", zap.Int("budget", CallBudget))
			return rt.ExhaustionError(msgCallStackExhausted)
		}
		cfg.Budget--
		if cfg.Budget == 0 {
			rtlog.Logger().Warn("call budget exhausted", zap.Int("budget", CallBudget))
			return rt.ExhaustionError(msgCallStackExhausted)
		}
		rtlog.Logger().Debug("entering frame", zap.Int("owner", int(fn.Owner)), zap.Int("remaining_budget", cfg.Budget))

		locals := make([]*rt.Cell, 0, len(args)+len(fn.Locals))
		for _, a := range args {
			locals = append(locals, rt.NewCell(a))
		}
		for _, t := range fn.Locals {
			locals = append(locals, rt.NewCell(rt.Zero(t)))
		}
		frame := &Frame{ModRef: fn.Owner, Locals: locals}
		// spec.md §4.3: a Framed activation's body is Code([], [Block(outs,
		// body)]) — the implicit outer Label a bare top-level `br 0` targets,
		// the same way OpcodeBlock installs one in execPlain.
		body := NewCode(nil, plainInstrs(fn.Body, head.Region))
		inner := NewCode(nil, []AdminInstr{{Kind: AdminLabel, Arity: len(ft.Results), Inner: body}})
		code.PrependInstrs(AdminInstr{
			Kind:       AdminFramed,
			FrameArity: len(ft.Results),
			ActFrame:   frame,
			Inner:      inner,
		})
		return nil

	case *rt.HostFunc:
		results := fn.Fn(args)
		if err := checkResults(ft, results); err != nil {
			return err
		}
		code.PushN(results)
		return nil

	case *rt.HostFuncEff:
		msg, results, ok := fn.Fn(args)
		if !ok {
			return trap(code, msg, head.Region)
		}
		if err := checkResults(ft, results); err != nil {
			return err
		}
		code.PushN(results)
		return nil

	default:
		return rt.CrashError("unknown callable kind")
	}
}

func checkResults(ft ast.FuncType, results []rt.Value) error {
	if len(results) != len(ft.Results) {
		return rt.CrashError("host function returned the wrong number of results")
	}
	for i, want := range ft.Results {
		if results[i].Type != want {
			return rt.CrashError("host function returned the wrong result type")
		}
	}
	return nil
}
