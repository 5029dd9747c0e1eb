package rt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
)

func TestNewGlobalRejectsTypeMismatch(t *testing.T) {
	_, err := NewGlobal(ast.GlobalType{ValType: ast.ValueTypeI32}, I64(0))
	require.Error(t, err)
	require.Contains(t, err.Error(), MsgGlobalTypeMismatch)
}

func TestGlobalSetRejectsImmutableWrite(t *testing.T) {
	g, err := NewGlobal(ast.GlobalType{ValType: ast.ValueTypeI32, Mutable: false}, I32(1))
	require.NoError(t, err)

	err = g.Set(DefaultRegion, I32(2))
	require.Error(t, err)
	require.Contains(t, err.Error(), MsgImmutableGlobal)
}

func TestGlobalSetRejectsTypeMismatch(t *testing.T) {
	g, err := NewGlobal(ast.GlobalType{ValType: ast.ValueTypeI32, Mutable: true}, I32(1))
	require.NoError(t, err)

	err = g.Set(DefaultRegion, F32(1.5))
	require.Error(t, err)
	require.Contains(t, err.Error(), MsgGlobalTypeMismatch)
}
