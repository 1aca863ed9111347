// Package ratelimit counts admin writes per client in fixed Redis windows.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultLimit  = 60
	DefaultPrefix = "sniply:ratelimit:"
)

// Limiter allows Limit calls per key in each Window. A nil client allows
// everything, which is how the service runs without Redis.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
	// Now is overridable for tests.
	Now func() time.Time
}

// Allow counts one call for key. When the call is over the limit it
// returns the time left until the current window closes.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil || l.Client == nil {
		return true, 0, nil
	}

	windowKey, retryAfter := l.window(key)

	var count *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, windowKey)
		pipe.PExpire(ctx, windowKey, l.windowSize())
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if count.Val() > int64(l.limit()) {
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// window names the bucket the current instant falls in and the time left
// in it.
func (l *Limiter) window(key string) (string, time.Duration) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	size := l.windowSize().Milliseconds()
	slot := now.UnixMilli() / size
	end := time.UnixMilli((slot + 1) * size)

	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + key + ":" + strconv.FormatInt(slot, 10), end.Sub(now)
}

func (l *Limiter) limit() int {
	if l.Limit <= 0 {
		return DefaultLimit
	}
	return l.Limit
}

func (l *Limiter) windowSize() time.Duration {
	if l.Window < time.Millisecond {
		return time.Minute
	}
	return l.Window
}
