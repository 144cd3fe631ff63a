package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shopchat/shopchat-backend/internal/cache"
)

func TestLimiter_FixedWindow(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	limiter := NewLimiter(store, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.CheckLimit("ip:10.0.0.1"), "call %d should pass", i+1)
	}
	assert.False(t, limiter.CheckLimit("ip:10.0.0.1"))
	assert.False(t, limiter.CheckLimit("ip:10.0.0.1"))

	// A different identifier has its own window.
	assert.True(t, limiter.CheckLimit("ip:10.0.0.2"))
}

func TestLimiter_WindowReset(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	limiter := NewLimiter(store, 1, 10*time.Millisecond)

	assert.True(t, limiter.CheckLimit("user:7"))
	assert.False(t, limiter.CheckLimit("user:7"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, limiter.CheckLimit("user:7"))
}

func TestLimiter_RetryAfterIsFullWindow(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	limiter := NewLimiter(store, 1, 45*time.Second)

	limiter.CheckLimit("user:7")
	assert.Equal(t, 45*time.Second, limiter.RetryAfter("user:7"))
}
