package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/subwavelabs/subwave/internal/config"
)

const (
	keyQuoteClient  = "quote:client:%s"
	keyCatalogWrite = "catalog:write:%s"

	catalogWriteTTL = 10 * time.Second
)

// QuoteLimiter throttles quote requests per client and serializes
// catalog writes across replicas. Disabled entirely when no Redis
// address is configured.
type QuoteLimiter struct {
	enabled bool

	bucket  *TokenBucket
	lock    *WriteLock
	pricing *config.PricingConfigHolder
}

func NewQuoteLimiter(cfg config.Config, pricing *config.PricingConfigHolder) *QuoteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &QuoteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		lock:    NewWriteLock(client),
		pricing: pricing,
	}
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowClient consumes one token from the caller's bucket. The rate
// and burst come from the hot-reloadable pricing config.
func (l *QuoteLimiter) AllowClient(ctx context.Context, clientID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	cfg := l.pricing.Get()
	return l.bucket.Allow(
		ctx,
		fmt.Sprintf(keyQuoteClient, strings.TrimSpace(clientID)),
		cfg.QuoteRateLimit,
		cfg.QuoteRateBurst,
	)
}

// TryLockCatalogWrite guards multi-row catalog mutations, such as
// retiring the previous device rate, against concurrent replicas.
func (l *QuoteLimiter) TryLockCatalogWrite(ctx context.Context, entity string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.lock.Acquire(ctx, fmt.Sprintf(keyCatalogWrite, strings.TrimSpace(entity)), catalogWriteTTL)
}

func (l *QuoteLimiter) ReleaseCatalogWrite(ctx context.Context, entity, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.lock.Release(ctx, fmt.Sprintf(keyCatalogWrite, strings.TrimSpace(entity)), token)
}
