package gowasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/interp"
	"github.com/wasmleaf/gowasm/internal/rt"
)

func addOneModule() *ast.Module {
	return &ast.Module{
		Types: []ast.FuncType{
			{Params: []ast.ValueType{ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Imports: []ast.Import{
			{Module: "env", Name: "inc", Type: ast.ExternTypeFunc, FuncTypeIdx: 0},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{
				{Op: ast.OpcodeLocalGet, Index: 0},
				{Op: ast.OpcodeCall, Index: 0},
			}},
		},
		Exports: []ast.Export{{Name: "addOne", Type: ast.ExternTypeFunc, Index: 1}},
	}
}

func TestInitializeAndInvokeByNameWithHostImport(t *testing.T) {
	store := rt.NewStore()
	names := rt.Names{}

	inc := CreateHostFunc(
		ast.FuncType{Params: []ast.ValueType{ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		func(args []rt.Value) []rt.Value { return []rt.Value{rt.I32(args[0].I32() + 1)} },
	)
	host := NewHostModule(map[string]rt.ModuleFunc{"inc": inc})
	Register(store, names, "env", host)

	ref, inst, err := Initialize(nil, addOneModule(), names, store)
	require.NoError(t, err)

	results, err := InvokeByName(store, ref, inst, "addOne", []rt.Value{rt.I32(41)})
	require.NoError(t, err)
	require.Equal(t, int32(42), results[0].I32())
}

func TestInvokeByNameMissingExportCrashes(t *testing.T) {
	store := rt.NewStore()
	ref, inst, err := Initialize(nil, &ast.Module{}, rt.Names{}, store)
	require.NoError(t, err)

	_, err = InvokeByName(store, ref, inst, "nope", nil)
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindCrash, ee.Kind)
}

func TestGetSetByNameGlobalRoundTrip(t *testing.T) {
	m := &ast.Module{
		Globals: []ast.GlobalDef{
			{Type: ast.GlobalType{ValType: ast.ValueTypeI32, Mutable: true}, Init: []ast.Instr{
				{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 1},
			}},
		},
		Exports: []ast.Export{{Name: "counter", Type: ast.ExternTypeGlobal, Index: 0}},
	}
	_, inst, err := Initialize(nil, m, rt.Names{}, rt.NewStore())
	require.NoError(t, err)

	v, err := GetByName(inst, "counter")
	require.NoError(t, err)
	require.Equal(t, int32(1), v.I32())

	require.NoError(t, SetByName(inst, "counter", rt.I32(9)))
	v, err = GetByName(inst, "counter")
	require.NoError(t, err)
	require.Equal(t, int32(9), v.I32())
}

func TestInitializeWithConfigShrunkBudgetExhausts(t *testing.T) {
	m := &ast.Module{
		Types: []ast.FuncType{{}},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{{Op: ast.OpcodeCall, Index: 0}}},
		},
		Exports: []ast.Export{{Name: "loop", Type: ast.ExternTypeFunc, Index: 0}},
	}
	cfg := NewConfig().WithCallBudget(5)
	t.Cleanup(func() { interp.SetCallBudget(interp.DefaultBudget) })
	store := rt.NewStore()
	ref, inst, err := Initialize(cfg, m, rt.Names{}, store)
	require.NoError(t, err)

	_, err = InvokeByName(store, ref, inst, "loop", nil)
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindExhaustion, ee.Kind)
}
