package thrift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipScalarTypes(t *testing.T) {
	p, _ := newPair()
	ctx := context.Background()
	require.NoError(t, p.WriteStructBegin(ctx, "S"))
	require.NoError(t, p.WriteFieldBegin(ctx, "a", I32, 1))
	require.NoError(t, p.WriteI32(ctx, 42))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteFieldBegin(ctx, "b", STRING, 2))
	require.NoError(t, p.WriteString(ctx, "unrecognized by the reader"))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	_, err := p.ReadStructBegin(ctx)
	require.NoError(t, err)
	_, typeId, _, err := p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	require.NoError(t, SkipDefaultDepth(ctx, p, typeId))
	require.NoError(t, p.ReadFieldEnd(ctx))

	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	require.NoError(t, SkipDefaultDepth(ctx, p, typeId))
	require.NoError(t, p.ReadFieldEnd(ctx))

	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, STOP, typeId)
	require.NoError(t, p.ReadStructEnd(ctx))
}

func TestSkipNestedStructAndList(t *testing.T) {
	p, _ := newPair()
	ctx := context.Background()
	require.NoError(t, p.WriteStructBegin(ctx, "Outer"))
	require.NoError(t, p.WriteFieldBegin(ctx, "items", LIST, 1))
	require.NoError(t, p.WriteListBegin(ctx, STRUCT, 2))
	for i := 0; i < 2; i++ {
		require.NoError(t, p.WriteStructBegin(ctx, "Item"))
		require.NoError(t, p.WriteFieldBegin(ctx, "v", I32, 1))
		require.NoError(t, p.WriteI32(ctx, int32(i)))
		require.NoError(t, p.WriteFieldEnd(ctx))
		require.NoError(t, p.WriteStructEnd(ctx))
	}
	require.NoError(t, p.WriteListEnd(ctx))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	_, err := p.ReadStructBegin(ctx)
	require.NoError(t, err)
	_, typeId, _, err := p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	require.NoError(t, SkipDefaultDepth(ctx, p, typeId))
	require.NoError(t, p.ReadFieldEnd(ctx))

	_, typeId, _, err = p.ReadFieldBegin(ctx)
	require.NoError(t, err)
	assert.Equal(t, STOP, typeId)
	require.NoError(t, p.ReadStructEnd(ctx))
}

func TestSkipReportsDepthLimitExceeded(t *testing.T) {
	p, _ := newPair()
	ctx := context.Background()
	err := Skip(ctx, p, STRUCT, 0)
	require.Error(t, err)
	pe, ok := err.(*TProtocolException)
	require.True(t, ok)
	assert.Equal(t, DEPTH_LIMIT, pe.TypeId())
}
