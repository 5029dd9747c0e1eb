package main

import (
	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/numeric"
)

// demo bundles a hand-built module together with the human-readable name it
// is offered under in the picker. Since decoding a real .wasm binary is
// outside this engine's boundary (spec.md §1), wasmstep ships a small
// library of constructed ast.Module values instead of reading a file.
type demo struct {
	name   string
	module *ast.Module
}

func demos() []demo {
	return []demo{
		{"add", addModule()},
		{"sum-to-n", sumToNModule()},
		{"grow-memory", growMemoryModule()},
		{"divide-checked", divideCheckedModule()},
	}
}

// addModule exports a single function: (a i32, b i32) -> i32, a + b.
func addModule() *ast.Module {
	return &ast.Module{
		Types: []ast.FuncType{
			{Params: []ast.ValueType{ast.ValueTypeI32, ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{
				{Op: ast.OpcodeLocalGet, Index: 0},
				{Op: ast.OpcodeLocalGet, Index: 1},
				{Op: ast.OpcodeBinary, NumType: ast.ValueTypeI32, Num: numeric.OpAdd},
			}},
		},
		Exports: []ast.Export{{Name: "add", Type: ast.ExternTypeFunc, Index: 0}},
	}
}

// sumToNModule exports sum(n i32) -> i32, summing 1..n with a Loop/BrIf, the
// same construct internal/interp/step_test.go's TestInvokeLoopSumOneToTen
// exercises against a fixed bound.
func sumToNModule() *ast.Module {
	const idxN, idxI, idxSum = 0, 1, 2
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
		{Op: ast.OpcodeLocalGet, Index: idxN},
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
	return &ast.Module{
		Types: []ast.FuncType{
			{Params: []ast.ValueType{ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Locals: []ast.ValueType{ast.ValueTypeI32, ast.ValueTypeI32}, Body: body},
		},
		Exports: []ast.Export{{Name: "sum", Type: ast.ExternTypeFunc, Index: 0}},
	}
}

// growMemoryModule exports grow() -> i32, which grows memory by one page
// and returns the prior page count (or -1 once the 4-page max is reached),
// against a memory starting at 1 page. MemoryGrow takes its page delta from
// the instruction, not from the operand stack.
func growMemoryModule() *ast.Module {
	max := uint32(4)
	return &ast.Module{
		Types: []ast.FuncType{
			{Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Memories: []ast.MemoryType{{Limits: ast.Limits{Min: 1, Max: &max}}},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{
				{Op: ast.OpcodeMemoryGrow, Delta: 1},
			}},
		},
		Exports: []ast.Export{{Name: "grow", Type: ast.ExternTypeFunc, Index: 0}},
	}
}

// divideCheckedModule exports divide(a i32, b i32) -> i32, which traps on
// division by zero the way spec.md §6 requires.
func divideCheckedModule() *ast.Module {
	return &ast.Module{
		Types: []ast.FuncType{
			{Params: []ast.ValueType{ast.ValueTypeI32, ast.ValueTypeI32}, Results: []ast.ValueType{ast.ValueTypeI32}},
		},
		Funcs: []ast.Func{
			{TypeIdx: 0, Body: []ast.Instr{
				{Op: ast.OpcodeLocalGet, Index: 0},
				{Op: ast.OpcodeLocalGet, Index: 1},
				{Op: ast.OpcodeBinary, NumType: ast.ValueTypeI32, Num: numeric.OpDivS},
			}},
		},
		Exports: []ast.Export{{Name: "divide", Type: ast.ExternTypeFunc, Index: 0}},
	}
}
