package interp

import (
	"go.uber.org/zap"

	"github.com/wasmleaf/gowasm/internal/rt"
	"github.com/wasmleaf/gowasm/internal/rtlog"
)

// logCrash reports a crash-class error at Warn level: unlike traps, these
// indicate a bug (a validated module should never trigger one) and are
// worth surfacing regardless of debug verbosity.
func logCrash(err error) error {
	rtlog.Logger().Warn("wasm interpreter crash", zap.Error(err))
	return err
}

// currentModule resolves the module owning the active frame, per spec.md
// §4.3's "locals/globals/tables/memories resolve against the current
// frame's module" rule.
func (cfg *Config) currentModule() (*rt.ModuleInstance, error) {
	inst, ok := cfg.Store.Get(cfg.Frame.ModRef)
	if !ok {
		return nil, rt.CrashError("undefined module")
	}
	return inst, nil
}

// Run drives Step until the instruction stream is exhausted, a trap
// surfaces at the outermost level, or a crash aborts execution
// immediately (spec.md §4.3). The returned values are code's final stack.
func Run(cfg *Config, code *Code) ([]rt.Value, error) {
	for {
		if len(code.Instrs) == 0 {
			return code.Values, nil
		}
		head := code.Instrs[0]
		switch head.Kind {
		case AdminTrapping:
			err := rt.TrapError(head.Region, head.Msg)
			rtlog.Logger().Debug("wasm trap", zap.String("msg", head.Msg))
			return nil, err
		case AdminReturning:
			return nil, logCrash(rt.CrashError("return with no enclosing frame"))
		case AdminBreaking:
			return nil, logCrash(rt.CrashError("break with no enclosing label"))
		}
		if err := Step(cfg, code); err != nil {
			if rt.IsTrap(err) {
				rtlog.Logger().Debug("wasm trap", zap.Error(err))
			} else {
				logCrash(err)
			}
			return nil, err
		}
	}
}

// Step advances code by exactly one administrative instruction (spec.md
// §4.3). It never returns a trap as a Go error: traps are represented by
// rewriting code.Instrs to hold a Trapping marker, which Label/Framed
// handling (and ultimately Run) propagate outward. Step only returns an
// error for crash-class conditions — invariants a validated module should
// never violate — and for budget exhaustion.
func Step(cfg *Config, code *Code) error {
	head := code.Instrs[0]
	rest := code.Instrs[1:]
	switch head.Kind {
	case AdminPlain:
		code.Instrs = rest
		return execPlain(cfg, head.Plain, head.Region, code)
	case AdminInvoke:
		code.Instrs = rest
		return stepInvoke(cfg, head, code)
	case AdminLabel:
		return stepLabel(cfg, head, code, rest)
	case AdminFramed:
		return stepFramed(cfg, head, code, rest)
	default:
		return rt.CrashError("stepped into an administrative instruction with no enclosing label or frame")
	}
}

// stepLabel implements spec.md §4.3's Label handling.
func stepLabel(cfg *Config, head AdminInstr, code *Code, rest []AdminInstr) error {
	inner := head.Inner
	if len(inner.Instrs) == 0 {
		code.PushN(inner.Values)
		code.Instrs = rest
		return nil
	}
	innerHead := inner.Instrs[0]
	switch innerHead.Kind {
	case AdminTrapping:
		code.Instrs = prepend(innerHead, rest)
		return nil
	case AdminReturning:
		code.Instrs = prepend(innerHead, rest)
		return nil
	case AdminBreaking:
		if innerHead.Depth == 0 {
			n := head.Arity
			if len(innerHead.Values) < n {
				return rt.CrashError("stack underflow at break")
			}
			code.Values = append(code.Values, innerHead.Values[len(innerHead.Values)-n:]...)
			code.Instrs = append(append([]AdminInstr(nil), head.Cont...), rest...)
			return nil
		}
		code.Instrs = prepend(AdminInstr{Kind: AdminBreaking, Depth: innerHead.Depth - 1, Values: innerHead.Values}, rest)
		return nil
	default:
		if err := Step(cfg, inner); err != nil {
			return err
		}
		code.Instrs = prepend(head, rest)
		return nil
	}
}

// stepFramed implements spec.md §4.3's Framed handling: it mirrors Label
// except Returning consumes the frame (final function result) and a
// Breaking reaching the frame boundary is a crash — a validated module's
// branches never target a depth outside their enclosing function.
func stepFramed(cfg *Config, head AdminInstr, code *Code, rest []AdminInstr) error {
	inner := head.Inner
	if len(inner.Instrs) == 0 {
		n := head.FrameArity
		if len(inner.Values) < n {
			return rt.CrashError("stack underflow at function return")
		}
		code.Values = append(code.Values, inner.Values[len(inner.Values)-n:]...)
		code.Instrs = rest
		cfg.Budget++ // the frame is gone: give back the entry stepInvoke took
		return nil
	}
	innerHead := inner.Instrs[0]
	switch innerHead.Kind {
	case AdminTrapping:
		code.Instrs = prepend(innerHead, rest)
		return nil
	case AdminReturning:
		n := head.FrameArity
		if len(innerHead.Values) < n {
			return rt.CrashError("stack underflow at return")
		}
		code.Values = append(code.Values, innerHead.Values[len(innerHead.Values)-n:]...)
		code.Instrs = rest
		cfg.Budget++
		return nil
	case AdminBreaking:
		return rt.CrashError("break escaped its enclosing function")
	default:
		prevFrame := cfg.Frame
		cfg.Frame = head.ActFrame
		err := Step(cfg, inner)
		cfg.Frame = prevFrame
		if err != nil {
			return err
		}
		code.Instrs = prepend(head, rest)
		return nil
	}
}

func prepend(i AdminInstr, rest []AdminInstr) []AdminInstr {
	out := make([]AdminInstr, 0, len(rest)+1)
	out = append(out, i)
	return append(out, rest...)
}
