package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subwavelabs/subwave/internal/config"
)

func TestQuoteLimiter_DisabledWithoutRedis(t *testing.T) {
	limiter := NewQuoteLimiter(config.Config{}, config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()))
	require.Nil(t, limiter)

	assert.False(t, limiter.Enabled())

	ok, err := limiter.AllowClient(context.Background(), "client-a")
	require.NoError(t, err)
	assert.True(t, ok)

	token, ok, err := limiter.TryLockCatalogWrite(context.Background(), "device_rate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)

	require.NoError(t, limiter.ReleaseCatalogWrite(context.Background(), "device_rate", token))
}

func TestWriteLock_NilClient(t *testing.T) {
	require.Nil(t, NewWriteLock(nil))

	var lock *WriteLock
	_, ok, err := lock.Acquire(context.Background(), "catalog:write:device_rate", time.Second)
	require.ErrorIs(t, err, ErrLockNotConfigured)
	assert.False(t, ok)

	require.NoError(t, lock.Release(context.Background(), "catalog:write:device_rate", "token"))
}

func TestWriteLock_RejectsBadArguments(t *testing.T) {
	// The client never dials: validation fails before any command.
	lock := NewWriteLock(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))

	_, ok, err := lock.Acquire(context.Background(), "", time.Second)
	require.Error(t, err)
	assert.False(t, ok)

	_, ok, err = lock.Acquire(context.Background(), "catalog:write:device_rate", 0)
	require.Error(t, err)
	assert.False(t, ok)
}
