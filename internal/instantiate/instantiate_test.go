package instantiate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/interp"
	"github.com/wasmleaf/gowasm/internal/rt"
)

func TestInitializeSelfContainedModule(t *testing.T) {
	m := &ast.Module{
		Types:    []ast.FuncType{{Results: []ast.ValueType{ast.ValueTypeI32}}},
		Tables:   []ast.TableType{{Limits: ast.Limits{Min: 1}}},
		Memories: []ast.MemoryType{{Limits: ast.Limits{Min: 1}}},
		Globals: []ast.GlobalDef{
			{Type: ast.GlobalType{ValType: ast.ValueTypeI32}, Init: []ast.Instr{
				{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 7},
			}},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 5}}},
		},
		Exports: []ast.Export{
			{Name: "get5", Type: ast.ExternTypeFunc, Index: 0},
			{Name: "g", Type: ast.ExternTypeGlobal, Index: 0},
		},
		Elems: []ast.ElementSegment{
			{TableIdx: 0, OffsetExpr: []ast.Instr{{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 0}}, Init: []ast.Index{0}},
		},
		Datas: []ast.DataSegment{
			{MemIdx: 0, OffsetExpr: []ast.Instr{{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 0}}, Init: []byte{1, 2, 3}},
		},
	}
	start := ast.Index(0)
	m.Start = &start

	store := rt.NewStore()
	ref, inst, err := Initialize(m, rt.Names{}, store)
	require.NoError(t, err)

	f, ok := inst.GetExport("get5", rt.ExternFunc)
	require.True(t, ok)
	results, err := interp.Invoke(store, ref, f.Func, nil)
	require.NoError(t, err)
	require.Equal(t, int32(5), results[0].I32())

	g, ok := inst.GetExport("g", rt.ExternGlobal)
	require.True(t, ok)
	require.Equal(t, int32(7), g.Global.Get().I32())

	elem, err := inst.Tables[0].Load(rt.DefaultRegion, 0)
	require.NoError(t, err)
	require.NotNil(t, elem)

	require.Equal(t, []byte{1, 2, 3}, inst.Mems[0].Buffer[0:3])
}

func TestInitializeResolvesImportedHostFunc(t *testing.T) {
	store := rt.NewStore()
	double := rt.NewHostFunc(
		ast.FuncType{Params: []ast.ValueType{ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		func(args []rt.Value) []rt.Value { return []rt.Value{rt.I32(args[0].I32() * 2)} },
	)
	provider := &rt.ModuleInstance{
		Module:  &ast.Module{},
		Funcs:   []rt.ModuleFunc{double},
		Exports: map[string]rt.ExternVal{"double": {Kind: rt.ExternFunc, Func: double}},
	}
	providerRef := store.NextKey()
	store.Put(providerRef, provider)

	m := &ast.Module{
		Types: []ast.FuncType{
			{Params: []ast.ValueType{ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Imports: []ast.Import{
			{Module: "math", Name: "double", Type: ast.ExternTypeFunc, FuncTypeIdx: 0},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{
				{Op: ast.OpcodeLocalGet, Index: 0},
				{Op: ast.OpcodeCall, Index: 0},
			}},
		},
		Exports: []ast.Export{{Name: "run", Type: ast.ExternTypeFunc, Index: 1}},
	}

	ref, inst, err := Initialize(m, rt.Names{"math": providerRef}, store)
	require.NoError(t, err)

	f, ok := inst.GetExport("run", rt.ExternFunc)
	require.True(t, ok)
	results, err := interp.Invoke(store, ref, f.Func, []rt.Value{rt.I32(21)})
	require.NoError(t, err)
	require.Equal(t, int32(42), results[0].I32())
}

func TestInitializeInvalidMemoryLimitsProducesLinkError(t *testing.T) {
	max := uint32(1)
	m := &ast.Module{
		Memories: []ast.MemoryType{{Limits: ast.Limits{Min: 2, Max: &max}}},
	}
	_, _, err := Initialize(m, rt.Names{}, rt.NewStore())
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindLink, ee.Kind)
	require.Contains(t, err.Error(), rt.MsgMemorySizeLimit)
}

func TestInitializeMissingImportProducesLinkError(t *testing.T) {
	m := &ast.Module{
		Imports: []ast.Import{
			{Module: "nope", Name: "x", Type: ast.ExternTypeFunc},
		},
	}
	_, _, err := Initialize(m, rt.Names{}, rt.NewStore())
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindLink, ee.Kind)
}
