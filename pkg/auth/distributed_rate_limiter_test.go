package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributedRateLimiter_FailsOpenWithoutStore(t *testing.T) {
	// A nil client means no table is configured; every request passes
	// so local development is never throttled.
	limiter := NewDistributedRateLimiter(nil, "openclique-main", 5, time.Minute, "API")

	allowed, err := limiter.Allow(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, allowed)

	remaining, resetIn, err := limiter.Remaining(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
	assert.Greater(t, resetIn, time.Duration(0))
}

func TestDistributedRateLimiter_SetHeaders(t *testing.T) {
	limiter := NewDistributedRateLimiter(nil, "openclique-main", 5, time.Minute, "API")

	headers := make(map[string]string)
	require.NoError(t, limiter.SetHeaders(context.Background(), "203.0.113.7", headers))

	assert.Equal(t, "5", headers["X-RateLimit-Limit"])
	assert.Equal(t, "5", headers["X-RateLimit-Remaining"])
	assert.Contains(t, headers, "X-RateLimit-Reset")
}
