package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryService_MintTierLimit(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	// 5 mint calls per minute pass, the 6th is rejected with a retry
	// hint close to the full window.
	for i := 0; i < 5; i++ {
		allowed, _, err := svc.Allow(ctx, "mint:10.0.0.1:admin", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, retryAfter, err := svc.Allow(ctx, "mint:10.0.0.1:admin", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.InDelta(t, time.Minute.Seconds(), retryAfter.Seconds(), 2)
}

func TestMemoryService_WindowReset(t *testing.T) {
	now := time.Now()
	svc := NewMemoryServiceWithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		svc.Allow(ctx, "k", 5, time.Minute)
	}
	allowed, _, _ := svc.Allow(ctx, "k", 5, time.Minute)
	assert.False(t, allowed)

	// Advancing past the window opens a fresh one.
	now = now.Add(61 * time.Second)
	allowed, _, err := svc.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryService_KeysAreIndependent(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.Allow(ctx, "mint:10.0.0.1:a", 5, time.Minute)
	}
	blocked, _, _ := svc.Allow(ctx, "mint:10.0.0.1:a", 5, time.Minute)
	assert.False(t, blocked)

	// A different caller and a different tier are unaffected.
	otherCaller, _, _ := svc.Allow(ctx, "mint:10.0.0.2:b", 5, time.Minute)
	assert.True(t, otherCaller)
	otherTier, _, _ := svc.Allow(ctx, "general:10.0.0.1:a", 100, 15*time.Minute)
	assert.True(t, otherTier)
}

func TestMemoryService_ConcurrentIncrements(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	const total = 50
	results := make(chan bool, total)
	for i := 0; i < total; i++ {
		go func() {
			allowed, _, _ := svc.Allow(ctx, "k", 10, time.Minute)
			results <- allowed
		}()
	}

	allowed := 0
	for i := 0; i < total; i++ {
		if <-results {
			allowed++
		}
	}
	// Atomic per-key increments: exactly the limit passes, never more.
	assert.Equal(t, 10, allowed)
}
