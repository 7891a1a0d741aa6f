package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(2, 1, time.Minute)

	allowed, _ := bucket.Allow()
	assert.True(t, allowed)
	allowed, _ = bucket.Allow()
	assert.True(t, allowed)

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestRateLimiterStartChatBudget(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow(10, ActionStartChat)
		assert.True(t, allowed, "attempt %d within budget", i+1)
	}

	allowed, wait := rl.Allow(10, ActionStartChat)
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))

	// Another user has an independent bucket.
	allowed, _ = rl.Allow(20, ActionStartChat)
	assert.True(t, allowed)
}

func TestRateLimiterActionsAreIndependent(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow(10, ActionStartChat)
	}

	allowed, _ := rl.Allow(10, ActionSendMessage)
	assert.True(t, allowed, "exhausting start_chat leaves send_message untouched")
}
