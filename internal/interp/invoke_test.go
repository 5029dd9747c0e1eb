package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
	"github.com/wasmleaf/gowasm/internal/rt"
)

// trivialFunc is a single Framed entry with no recursion: invoking it costs
// exactly one budget decrement.
func trivialFunc() *rt.AstFunc {
	ft := ast.FuncType{Results: []ast.ValueType{ast.ValueTypeI32}}
	return rt.NewAstFunc(ft, 0, nil, []ast.Instr{{Op: ast.OpcodeConst, Type: ast.ValueTypeI32, I32: 5}})
}

// TestInvokeBudgetExhaustsOnNthEntry pins spec.md §8's boundary: a budget of
// N permits only N-1 successful Framed entries, so a budget of 1 must fail
// on its very first (and only) entry.
func TestInvokeBudgetExhaustsOnNthEntry(t *testing.T) {
	SetCallBudget(1)
	t.Cleanup(func() { SetCallBudget(DefaultBudget) })

	f := trivialFunc()
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	_, err := Invoke(store, ref, f, nil)
	require.Error(t, err)
	var ee *rt.EvalError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, rt.KindExhaustion, ee.Kind)
}

// TestInvokeBudgetAllowsBudgetMinusOneEntries is the complementary case: a
// budget of 2 must permit exactly one successful entry.
func TestInvokeBudgetAllowsBudgetMinusOneEntries(t *testing.T) {
	SetCallBudget(2)
	t.Cleanup(func() { SetCallBudget(DefaultBudget) })

	f := trivialFunc()
	store, ref := wireModule(t, []rt.ModuleFunc{f}, nil, nil)

	results, err := Invoke(store, ref, f, nil)
	require.NoError(t, err)
	require.Equal(t, int32(5), results[0].I32())
}
