package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	require.NoError(t, s.Set(ctx, "k", payload{Name: "vix", Value: 18.5}, 0))

	var got payload
	require.NoError(t, s.Get(ctx, "k", &got))
	assert.Equal(t, "vix", got.Name)
	assert.InDelta(t, 18.5, got.Value, 0)

	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreMiss(t *testing.T) {
	s := NewMemoryStore()
	var got string
	assert.ErrorIs(t, s.Get(context.Background(), "absent", &got), ErrCacheMiss)
}

func TestMemoryStoreExpiration(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got string
	assert.ErrorIs(t, s.Get(ctx, "k", &got), ErrCacheMiss)

	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", 1, 0))
	require.NoError(t, s.Set(ctx, "b", 2, 0))
	require.NoError(t, s.Delete(ctx, "a", "b"))

	ok, err := s.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}
