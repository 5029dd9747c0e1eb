package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/numeric"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// wireModule builds a bare ModuleInstance directly against the runtime
// layer, bypassing internal/instantiate — these tests exercise the
// stepper in isolation, the way spec.md §8's worked examples are stated
// (a function body plus the runtime state it closes over). Every AstFunc in
// funcs is re-pointed at the returned ref, since the tests build them
// before that ref is known.
func wireModule(t *testing.T, funcs []rt.ModuleFunc, mems []*rt.MemoryInstance, tables []*rt.TableInstance) (*rt.Store, rt.ModuleRef) {
	t.Helper()
	store := rt.NewStore()
	inst := &rt.ModuleInstance{
		Module:  &ast.Module{},
		Funcs:   funcs,
		Mems:    mems,
		Tables:  tables,
		Exports: map[string]rt.ExternVal{},
	}
	ref := store.NextKey()
	store.Put(ref, inst)
	for _, f := range funcs {
		if af, ok := f.(*rt.AstFunc); ok {
			af.Owner = ref
		}
	}
	return store, ref
}

func TestInvokeArithmeticAdd(t *testing.T) {
	body := []ast.Instr{
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 2},
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 3},
		{Op: ast.OpcodeBinary, NumType: ast.ValueTypeI32, Num: numeric.OpAdd},
	}
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	f := rt.NewAstFunc(ft, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int32(5), results[0].I32())
}

func TestInvokeUnreachableTraps(t *testing.T) {
	body := []ast.Instr{{Op: ast.OpcodeUnreachable}}
	f := rt.NewAstFunc(ast.FuncType{}, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	_, err := Invoke(store, ref, f, nil)
	require.True(t, rt.IsTrap(err))
	require.Contains(t, err.Error(), msgUnreachable)
}

func TestInvokeLoopSumOneToTen(t *testing.T) {
	const idxI, idxSum = 0, 1
	loopBody := []ast.Instr{
		{Op: ast.OpcodeLocalGet, Index: idxSum},
		{Op: ast.OpcodeLocalGet, Index: idxI},
		{Op: ast.OpcodeBinary, NumType: ast.ValueTypeI32, Num: numeric.OpAdd},
		{Op: ast.OpcodeLocalSet, Index: idxSum},

		{Op: ast.OpcodeLocalGet, Index: idxI},
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 1},
		{Op: ast.OpcodeBinary, NumType: ast.ValueTypeI32, Num: numeric.OpAdd},
		{Op: ast.OpcodeLocalSet, Index: idxI},

		{Op: ast.OpcodeLocalGet, Index: idxI},
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 10},
		{Op: ast.OpcodeCompare, NumType: ast.ValueTypeI32, Num: numeric.OpLeS},
		{Op: ast.OpcodeBrIf, Label: 0},
	}
	body := []ast.Instr{
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 1},
		{Op: ast.OpcodeLocalSet, Index: idxI},
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 0},
		{Op: ast.OpcodeLocalSet, Index: idxSum},
		{Op: ast.OpcodeLoop, Then: loopBody},
		{Op: ast.OpcodeLocalGet, Index: idxSum},
	}
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	f := rt.NewAstFunc(ft, 0, []ast.ValueType{ast.ValueTypeI32, ast.ValueTypeI32}, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Equal(t, int32(55), results[0].I32())
}

func TestInvokeMemoryGrowReturnsPriorSize(t *testing.T) {
	mem, err := rt.NewMemory(ast.MemoryType{Limits: ast.Limits{Min: 1}})
	require.NoError(t, err)
	body := []ast.Instr{{Op: ast.OpcodeMemoryGrow, Delta: 2}}
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	f := rt.NewAstFunc(ft, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, []*rt.MemoryInstance{mem}, nil)

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), results[0].I32())
	require.Equal(t, uint32(3), mem.SizePages())
}

func TestInvokeCallIndirectTypeMismatchTraps(t *testing.T) {
	callee := rt.NewAstFunc(ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}, 0, nil,
		[]ast.Instr{{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 1}})
	tbl, err := rt.NewTable(ast.TableType{Limits: ast.Limits{Min: 1}})
	require.NoError(t, err)
	require.NoError(t, tbl.Blit(0, []rt.ModuleFunc{callee}))

	body := []ast.Instr{
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 0},
		{Op: ast.OpcodeCallIndirect, Index: 0},
	}
	caller := rt.NewAstFunc(ast.FuncType{}, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{caller, callee}, nil, []*rt.TableInstance{tbl})
	inst, _ := store.Get(ref)
	inst.Types = []ast.FuncType{{Params: []ast.ValueType{ast.ValueTypeI64}}}

	_, err = Invoke(store, ref, caller, nil)
	require.True(t, rt.IsTrap(err))
	require.Contains(t, err.Error(), msgIndirectMismatch)
}

func TestInvokeBudgetExhaustion(t *testing.T) {
	f := rt.NewAstFunc(ast.FuncType{}, 0, nil, []ast.Instr{{Op: ast.OpcodeCall, Index: 0}})
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	_, err := Invoke(store, ref, f, nil)
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindExhaustion, ee.Kind)
}

// TestInvokeTopLevelBrReturnsFrameResult confirms a validated function whose
// body ends in a bare `br 0` — targeting the function's own implicit outer
// label, not a nested block — completes the frame normally instead of
// crashing with "break escaped its enclosing function".
func TestInvokeTopLevelBrReturnsFrameResult(t *testing.T) {
	body := []ast.Instr{
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 9},
		{Op: ast.OpcodeBr, Label: 0},
	}
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	f := rt.NewAstFunc(ft, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Equal(t, int32(9), results[0].I32())
}

func TestInvokeGlobalRoundTrip(t *testing.T) {
	g, err := rt.NewGlobal(ast.GlobalType{ValType: ast.ValueTypeI32, Mutable: true}, rt.I32(0))
	require.NoError(t, err)

	body := []ast.Instr{
		{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 42},
		{Op: ast.OpcodeGlobalSet, Index: 0},
		{Op: ast.OpcodeGlobalGet, Index: 0},
	}
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	f := rt.NewAstFunc(ft, 0, nil, body)
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)
	inst, _ := store.Get(ref)
	inst.Globals = []*rt.GlobalInstance{g}

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Equal(t, int32(42), results[0].I32())
	require.Equal(t, int32(42), g.Get().I32())
}
