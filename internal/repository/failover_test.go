package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenKV fails every operation, standing in for an unreachable backend.
type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenKV) Set(ctx context.Context, key, value string) error {
	return errors.New("connection refused")
}

func (brokenKV) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func TestFailoverKVHealthyPrimary(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	primary := NewMemoryKV()
	fallback := NewMemoryKV()
	kv := NewFailoverKV(primary, fallback, &logger)

	require.NoError(t, kv.Set(ctx, "k", "v"))

	val, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	// fallback stays untouched while the primary is up
	_, ok, err = fallback.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailoverKVFallsBack(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	fallback := NewMemoryKV()
	kv := NewFailoverKV(brokenKV{}, fallback, &logger)

	require.NoError(t, kv.Set(ctx, "k", "v"))

	val, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	// the write landed in the fallback store
	val, ok, err = fallback.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, ok, err = fallback.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailoverKVStaysDown(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	kv := NewFailoverKV(brokenKV{}, NewMemoryKV(), &logger)

	// first call trips the breaker
	require.NoError(t, kv.Set(ctx, "a", "1"))
	// subsequent calls go straight to the fallback without re-probing
	require.NoError(t, kv.Set(ctx, "b", "2"))

	val, ok, err := kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", val)
}
