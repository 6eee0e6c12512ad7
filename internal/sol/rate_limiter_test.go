package sol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowRespectsRate(t *testing.T) {
	rl := NewRateLimiter(1)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimiter_GetRateReflectsConstructor(t *testing.T) {
	rl := NewRateLimiter(5)
	assert.Equal(t, 5, rl.GetRate())
}

func TestRateLimiter_SetRateUpdatesBurst(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.SetRate(10)
	assert.Equal(t, 10, rl.GetRate())
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow())
	}
	assert.False(t, rl.Allow())
}

func TestRateLimiter_WaitWithTimeoutFailsWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1)
	require.True(t, rl.Allow())
	err := rl.WaitWithTimeout(context.Background(), 10*time.Millisecond)
	assert.Error(t, err)
}
