package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether a caller identified by key may perform another request.
type Limiter interface {
	// Allow consumes one token from key's current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Remaining reports how many tokens are left in key's current window.
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// FixedWindowLimiter counts requests per key in fixed time windows stored in Redis,
// so every API instance shares the same budget.
type FixedWindowLimiter struct {
	client   *redis.Client
	logger   *zap.Logger
	failOpen bool
	now      func() time.Time
}

// NewFixedWindowLimiter creates a limiter backed by client.
//
// Parameters:
//   - client: Redis client holding the counters
//   - logger: receives denials and backend failures
//   - failOpen: when true, requests are let through while Redis is unreachable
func NewFixedWindowLimiter(client *redis.Client, logger *zap.Logger, failOpen bool) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		client:   client,
		logger:   logger,
		failOpen: failOpen,
		now:      time.Now,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := l.bucketKey(key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		if l.failOpen {
			l.logger.Warn("rate limit backend unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if incr.Val() > int64(limit) {
		l.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", incr.Val()),
			zap.Int("limit", limit),
		)
		return false, nil
	}
	return true, nil
}

func (l *FixedWindowLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	count, err := l.client.Get(ctx, l.bucketKey(key, window)).Int()
	if errors.Is(err, redis.Nil) {
		return limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return max(limit-count, 0), nil
}

func (l *FixedWindowLimiter) bucketKey(key string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, l.now().UnixMilli()/window.Milliseconds())
}
