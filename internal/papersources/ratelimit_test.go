package papersources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow(), "burst of 2 is exhausted")
}

func TestRateLimiterWait(t *testing.T) {
	rl := NewRateLimiter(100, 1)

	require.NoError(t, rl.Wait(context.Background()))

	// Second call must wait roughly one token interval (10ms at 100/s).
	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	rl := NewRateLimiter(0.1, 1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
}

func TestRateLimiterSetRate(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.SetRate(1000)

	require.True(t, rl.Allow())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, rl.Allow(), "tokens refill at the updated rate")
}
