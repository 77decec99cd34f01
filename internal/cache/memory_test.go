package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("t", 0)

	_, err := c.Get(ctx, "k")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)
	require.NoError(t, c.Set(ctx, "once", "payload", time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Take(ctx, "once"); err == nil && v == "payload" {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}
