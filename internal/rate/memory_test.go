package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(3, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i)
		require.EqualValues(t, 3-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 50*time.Second, res.RetryAfter)

	// otra key no comparte ventana
	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	// ventana siguiente
	l.now = func() time.Time { return base.Add(time.Minute) }
	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.EqualValues(t, 1, res.CurrentHits)
}

func TestEvaluate_RetryAfterFallback(t *testing.T) {
	res := evaluate(5, 2, -1, 30*time.Second)
	require.False(t, res.Allowed)
	require.Equal(t, 30*time.Second, res.RetryAfter)
	require.EqualValues(t, 0, res.Remaining)
}
