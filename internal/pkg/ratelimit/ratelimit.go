package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// LoginMaxAttempts failed attempts per client address before blocking.
	LoginMaxAttempts = 5
	// LoginWindow is the fixed window starting at the first recorded attempt.
	LoginWindow = 15 * time.Minute

	loginKeyPrefix = "et:login_limit:"
)

// Limiter counts authentication attempts per client address in a fixed Redis
// window. The window key expires on its own, so the first attempt after the
// window elapses starts a fresh count.
type Limiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

// NewLoginLimiter returns a limiter with the stock 5-attempts/15-minute policy.
func NewLoginLimiter(rdb *redis.Client) *Limiter {
	return New(rdb, LoginMaxAttempts, LoginWindow)
}

func New(rdb *redis.Client, max int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: max, window: window}
}

// Check reports whether another attempt is allowed. When blocked, retryAfter
// is the remaining window in seconds (always positive).
func (l *Limiter) Check(ctx context.Context, key string) (retryAfter int64, allowed bool, err error) {
	count, err := l.rdb.Get(ctx, loginKeyPrefix+key).Int64()
	if err == redis.Nil {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	if count < l.max {
		return 0, true, nil
	}

	ttl, err := l.rdb.TTL(ctx, loginKeyPrefix+key).Result()
	if err != nil {
		return 0, false, err
	}
	return ceilSeconds(ttl), false, nil
}

// RecordAttempt increments the counter, stamping the window on the first hit.
func (l *Limiter) RecordAttempt(ctx context.Context, key string) error {
	count, err := l.rdb.Incr(ctx, loginKeyPrefix+key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.rdb.PExpire(ctx, loginKeyPrefix+key, l.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful authentication.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, loginKeyPrefix+key).Err()
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
