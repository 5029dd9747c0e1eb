package rt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmleaf/gowasm/internal/ast"
)

func TestNewMemoryRejectsMinAboveMax(t *testing.T) {
	max := uint32(1)
	_, err := NewMemory(ast.MemoryType{Limits: ast.Limits{Min: 2, Max: &max}})
	require.Error(t, err)
	require.Contains(t, err.Error(), MsgMemorySizeLimit)
}

func TestNewMemoryRejectsMinAbovePageCeiling(t *testing.T) {
	_, err := NewMemory(ast.MemoryType{Limits: ast.Limits{Min: maxMemoryPages + 1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), MsgMemorySizeOverflow)
}

func TestNewMemoryAcceptsValidLimits(t *testing.T) {
	max := uint32(4)
	mem, err := NewMemory(ast.MemoryType{Limits: ast.Limits{Min: 1, Max: &max}})
	require.NoError(t, err)
	require.Equal(t, uint32(1), mem.SizePages())
	require.Equal(t, &max, mem.MaxPages())
}
