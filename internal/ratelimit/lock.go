package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// The delete compares the fencing token first, so a holder whose lease
// expired and was re-acquired elsewhere can never release the new
// holder's lease.
var releaseIfHolder = redis.NewScript(`
local holder = redis.call("GET", KEYS[1])
if holder == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

var ErrLockNotConfigured = errors.New("lock_client_not_configured")

// WriteLock serializes short critical sections across replicas with a
// redis SET NX lease. Each acquisition carries a per-holder token.
type WriteLock struct {
	client *redis.Client
}

func NewWriteLock(client *redis.Client) *WriteLock {
	if client == nil {
		return nil
	}
	return &WriteLock{client: client}
}

// Acquire takes the lease named by key for at most ttl. The returned
// token identifies this holder and must be passed back to Release.
func (w *WriteLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	switch {
	case w == nil || w.client == nil:
		return "", false, ErrLockNotConfigured
	case key == "":
		return "", false, errors.New("lock key is empty")
	case ttl <= 0:
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	acquired, err := w.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lease if this holder still owns it. Releasing a
// lease that already expired is a no-op, not an error.
func (w *WriteLock) Release(ctx context.Context, key, token string) error {
	if w == nil || w.client == nil || key == "" || token == "" {
		return nil
	}
	return releaseIfHolder.Run(ctx, w.client, []string{key}, token).Err()
}
