package registry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRegistry(t *testing.T) (*ReleasedBatchRegistry, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	reg, err := NewReleasedBatchRegistry(mr.Addr())
	require.NoError(t, err)

	return reg, mr
}

func TestNewReleasedBatchRegistry_ConnectionFailure(t *testing.T) {
	_, err := NewReleasedBatchRegistry("localhost:1")
	assert.Error(t, err)
}

func TestReleased_Empty(t *testing.T) {
	reg, mr := setupTestRegistry(t)
	defer mr.Close()
	defer func() { _ = reg.Close() }()

	released, err := reg.Released(context.Background())
	require.NoError(t, err)
	assert.Empty(t, released)
}

func TestMarkReleased(t *testing.T) {
	reg, mr := setupTestRegistry(t)
	defer mr.Close()
	defer func() { _ = reg.Close() }()

	ctx := context.Background()
	require.NoError(t, reg.MarkReleased(ctx, "B1", "B2"))

	released, err := reg.Released(ctx)
	require.NoError(t, err)
	assert.Len(t, released, 2)
	assert.True(t, released["B1"])
	assert.True(t, released["B2"])
	assert.False(t, released["B3"])
}

func TestMarkReleased_NoBatches(t *testing.T) {
	reg, mr := setupTestRegistry(t)
	defer mr.Close()
	defer func() { _ = reg.Close() }()

	assert.NoError(t, reg.MarkReleased(context.Background()))
}

func TestMarkReleased_Idempotent(t *testing.T) {
	reg, mr := setupTestRegistry(t)
	defer mr.Close()
	defer func() { _ = reg.Close() }()

	ctx := context.Background()
	require.NoError(t, reg.MarkReleased(ctx, "B1"))
	require.NoError(t, reg.MarkReleased(ctx, "B1"))

	released, err := reg.Released(ctx)
	require.NoError(t, err)
	assert.Len(t, released, 1)
}

func TestUnmark(t *testing.T) {
	reg, mr := setupTestRegistry(t)
	defer mr.Close()
	defer func() { _ = reg.Close() }()

	ctx := context.Background()
	require.NoError(t, reg.MarkReleased(ctx, "B1", "B2"))
	require.NoError(t, reg.Unmark(ctx, "B1"))

	released, err := reg.Released(ctx)
	require.NoError(t, err)
	assert.Len(t, released, 1)
	assert.True(t, released["B2"])
}
