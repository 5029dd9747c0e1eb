package interp

import (
	"errors"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/numeric"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// execPlain implements spec.md §4.4, the plain instruction interpreter.
// code.Instrs already holds the continuation (the caller popped the head);
// most cases leave it untouched and only push/pop code.Values. Control
// instructions rewrite code.Instrs to install a Label/Invoke, or replace
// it outright for Br/Return, which drop the current continuation.
func execPlain(cfg *Config, ins ast.Instr, region rt.Region, code *Code) error {
	switch ins.Op {
	case ast.OpcodeUnreachable:
		return trap(code, msgUnreachable, region)

	case ast.OpcodeNop:
		return nil

	case ast.OpcodeDrop:
		if _, ok := code.Pop(); !ok {
			return rt.CrashError("stack underflow: drop")
		}
		return nil

	case ast.OpcodeSelect:
		cond, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: select")
		}
		v2, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: select")
		}
		v1, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: select")
		}
		if cond.I32() != 0 {
			code.Push(v1)
		} else {
			code.Push(v2)
		}
		return nil

	case ast.OpcodeBlock:
		inner := NewCode(nil, plainInstrs(ins.Then, region))
		code.PrependInstrs(AdminInstr{Kind: AdminLabel, Arity: blockArity(ins), Inner: inner})
		return nil

	case ast.OpcodeLoop:
		cont := []AdminInstr{{Kind: AdminPlain, Plain: ins, Region: region}}
		inner := NewCode(nil, plainInstrs(ins.Then, region))
		code.PrependInstrs(AdminInstr{Kind: AdminLabel, Arity: 0, Cont: cont, Inner: inner})
		return nil

	case ast.OpcodeIf:
		cond, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: if")
		}
		branch := ins.Else
		if cond.I32() != 0 {
			branch = ins.Then
		}
		inner := NewCode(nil, plainInstrs(branch, region))
		code.PrependInstrs(AdminInstr{Kind: AdminLabel, Arity: blockArity(ins), Inner: inner})
		return nil

	case ast.OpcodeBr:
		return branch(code, ins.Label)

	case ast.OpcodeBrIf:
		cond, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: br_if")
		}
		if cond.I32() == 0 {
			return nil
		}
		return branch(code, ins.Label)

	case ast.OpcodeBrTable:
		idx, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: br_table")
		}
		i := uint32(idx.I32())
		target := ins.Default
		if i < uint32(len(ins.Labels)) {
			target = ins.Labels[i]
		}
		return branch(code, target)

	case ast.OpcodeReturn:
		vs := code.Values
		code.Values = nil
		code.Instrs = []AdminInstr{{Kind: AdminReturning, Values: vs}}
		return nil

	case ast.OpcodeCall:
		mod, err := cfg.currentModule()
		if err != nil {
			return err
		}
		if int(ins.Index) >= len(mod.Funcs) {
			return rt.CrashError("undefined function index")
		}
		code.PrependInstrs(AdminInstr{Kind: AdminInvoke, Func: mod.Funcs[ins.Index], Region: region})
		return nil

	case ast.OpcodeCallIndirect:
		return execCallIndirect(cfg, ins, region, code)

	case ast.OpcodeLocalGet:
		v, err := localGet(cfg, ins.Index)
		if err != nil {
			return err
		}
		code.Push(v)
		return nil

	case ast.OpcodeLocalSet:
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: local.set")
		}
		return localSet(cfg, ins.Index, v)

	case ast.OpcodeLocalTee:
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: local.tee")
		}
		if err := localSet(cfg, ins.Index, v); err != nil {
			return err
		}
		code.Push(v)
		return nil

	case ast.OpcodeGlobalGet:
		mod, err := cfg.currentModule()
		if err != nil {
			return err
		}
		if int(ins.Index) >= len(mod.Globals) {
			return rt.CrashError("undefined global index")
		}
		code.Push(mod.Globals[ins.Index].Get())
		return nil

	case ast.OpcodeGlobalSet:
		mod, err := cfg.currentModule()
		if err != nil {
			return err
		}
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: global.set")
		}
		if int(ins.Index) >= len(mod.Globals) {
			return rt.CrashError("undefined global index")
		}
		if err := mod.Globals[ins.Index].Set(region, v); err != nil {
			return trap(code, err.Error(), region)
		}
		return nil

	case ast.OpcodeLoad:
		return execLoad(cfg, ins, region, code)

	case ast.OpcodeStore:
		return execStore(cfg, ins, region, code)

	case ast.OpcodeMemorySize:
		mod, err := cfg.currentModule()
		if err != nil {
			return err
		}
		if len(mod.Mems) == 0 {
			return rt.CrashError("module has no memory")
		}
		code.Push(rt.I32(int32(mod.Mems[0].SizePages())))
		return nil

	case ast.OpcodeMemoryGrow:
		mod, err := cfg.currentModule()
		if err != nil {
			return err
		}
		if len(mod.Mems) == 0 {
			return rt.CrashError("module has no memory")
		}
		code.Push(rt.I32(int32(mod.Mems[0].Grow(ins.Delta))))
		return nil

	case ast.OpcodeConst:
		code.Push(constValue(ins))
		return nil

	case ast.OpcodeTest:
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: test")
		}
		r, err := numeric.TestOp(ins.Num, v)
		if err != nil {
			return trap(code, err.Error(), region)
		}
		code.Push(r)
		return nil

	case ast.OpcodeCompare:
		v2, ok2 := code.Pop()
		v1, ok1 := code.Pop()
		if !ok1 || !ok2 {
			return rt.CrashError("stack underflow: compare")
		}
		r, err := numeric.CompareOp(ins.Num, v1, v2)
		if err != nil {
			return trap(code, err.Error(), region)
		}
		code.Push(r)
		return nil

	case ast.OpcodeUnary:
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: unary")
		}
		r, err := numeric.UnaryOp(ins.Num, v)
		if err != nil {
			return trap(code, err.Error(), region)
		}
		code.Push(r)
		return nil

	case ast.OpcodeBinary:
		v2, ok2 := code.Pop()
		v1, ok1 := code.Pop()
		if !ok1 || !ok2 {
			return rt.CrashError("stack underflow: binary")
		}
		r, err := numeric.BinaryOp(ins.Num, v1, v2)
		if err != nil {
			return trap(code, err.Error(), region)
		}
		code.Push(r)
		return nil

	case ast.OpcodeConvert:
		v, ok := code.Pop()
		if !ok {
			return rt.CrashError("stack underflow: convert")
		}
		r, err := numeric.ConvertOp(ins.Num, ins.NumType, ins.Type, v)
		if err != nil {
			return trap(code, err.Error(), region)
		}
		code.Push(r)
		return nil

	default:
		return rt.CrashError("unknown opcode")
	}
}

// branch implements Br's shared "drop current values, push Breaking(x,
// vs)" behavior (spec.md §4.4): it discards whatever continuation
// followed the branch instruction, transferring the current stack
// contents to the Breaking marker.
func branch(code *Code, depth uint32) error {
	vs := code.Values
	code.Values = nil
	code.Instrs = []AdminInstr{{Kind: AdminBreaking, Depth: depth, Values: vs}}
	return nil
}

func trap(code *Code, msg string, region rt.Region) error {
	code.Instrs = []AdminInstr{{Kind: AdminTrapping, Msg: msg, Region: region}}
	return nil
}

func blockArity(ins ast.Instr) int {
	if ins.HasBlockType {
		return 1
	}
	return 0
}

func constValue(ins ast.Instr) rt.Value {
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

func localGet(cfg *Config, idx ast.Index) (rt.Value, error) {
	if int(idx) >= len(cfg.Frame.Locals) {
		return rt.Value{}, rt.CrashError("undefined local index")
	}
	return cfg.Frame.Locals[idx].Get(), nil
}

func localSet(cfg *Config, idx ast.Index, v rt.Value) error {
	if int(idx) >= len(cfg.Frame.Locals) {
		return rt.CrashError("undefined local index")
	}
	cfg.Frame.Locals[idx].Set(v)
	return nil
}

func execCallIndirect(cfg *Config, ins ast.Instr, region rt.Region, code *Code) error {
	mod, err := cfg.currentModule()
	if err != nil {
		return err
	}
	idxv, ok := code.Pop()
	if !ok {
		return rt.CrashError("stack underflow: call_indirect")
	}
	if int(ins.Index) >= len(mod.Types) {
		return rt.CrashError("undefined type index")
	}
	if len(mod.Tables) == 0 {
		return rt.CrashError("module has no table")
	}
	want := mod.Types[ins.Index]
	i := uint32(idxv.I32())
	f, lerr := mod.Tables[0].Load(region, i)
	if lerr != nil {
		return trap(code, "out of bounds table access", region)
	}
	if f == nil {
		return trap(code, msgUninitializedElement(i), region)
	}
	if !funcTypeEqual(f.Type(), want) {
		return trap(code, msgIndirectMismatch, region)
	}
	code.PrependInstrs(AdminInstr{Kind: AdminInvoke, Func: f, Region: region})
	return nil
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

func execLoad(cfg *Config, ins ast.Instr, region rt.Region, code *Code) error {
	mod, err := cfg.currentModule()
	if err != nil {
		return err
	}
	if len(mod.Mems) == 0 {
		return rt.CrashError("module has no memory")
	}
	addr, ok := code.Pop()
	if !ok {
		return rt.CrashError("stack underflow: load")
	}
	base := uint32(addr.I32())
	mem := mod.Mems[0]
	var v rt.Value
	var lerr error
	if memSizeWidth(ins.Size) == valueTypeWidth(ins.Type) {
		v, lerr = mem.LoadValue(region, base, ins.Mem.Offset, ins.Type)
	} else {
		v, lerr = mem.LoadPacked(region, base, ins.Mem.Offset, ins.Size, ins.Sign, ins.Type)
	}
	if lerr != nil {
		msg, ok := trapMessage(lerr)
		if !ok {
			return lerr
		}
		return trap(code, msg, region)
	}
	code.Push(v)
	return nil
}

func execStore(cfg *Config, ins ast.Instr, region rt.Region, code *Code) error {
	mod, err := cfg.currentModule()
	if err != nil {
		return err
	}
	if len(mod.Mems) == 0 {
		return rt.CrashError("module has no memory")
	}
	v, ok := code.Pop()
	if !ok {
		return rt.CrashError("stack underflow: store")
	}
	addr, ok := code.Pop()
	if !ok {
		return rt.CrashError("stack underflow: store")
	}
	base := uint32(addr.I32())
	mem := mod.Mems[0]
	var serr error
	if memSizeWidth(ins.Size) == valueTypeWidth(v.Type) {
		serr = mem.StoreValue(region, base, ins.Mem.Offset, v)
	} else {
		serr = mem.StorePacked(region, base, ins.Mem.Offset, ins.Size, v)
	}
	if serr != nil {
		msg, ok := trapMessage(serr)
		if !ok {
			return serr
		}
		return trap(code, msg, region)
	}
	return nil
}

func memSizeWidth(sz ast.MemSize) uint32 {
	switch sz {
	case ast.MemSize8:
		return 1
	case ast.MemSize16:
		return 2
	case ast.MemSize32:
		return 4
	default:
		return 8
	}
}

func valueTypeWidth(t ast.ValueType) uint32 {
	if t == ast.ValueTypeI32 || t == ast.ValueTypeF32 {
		return 4
	}
	return 8
}

func trapMessage(err error) (string, bool) {
	var ee *rt.EvalError
	if errors.As(err, &ee) && ee.Kind == rt.KindTrap {
		return ee.Msg, true
	}
	return "", false
}
