package limiter

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed fixed-window limiter. Counters expire with their window.
type Redis struct {
	client redis.Cmdable
	window time.Duration
	max    int
}

// NewRedis constructs a Redis-backed limiter allowing max hits per window.
func NewRedis(client redis.Cmdable, window time.Duration, max int) *Redis {
	return &Redis{client: client, window: window, max: max}
}

func redisKey(bucket string, subject []byte) string {
	return "limiter:" + bucket + ":" + hex.EncodeToString(subject)
}

// Hit increments the window counter; the first hit of a window arms its expiry.
func (l *Redis) Hit(ctx context.Context, bucket string, subject []byte) (bool, time.Duration, error) {
	key := redisKey(bucket, subject)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := l.client.PExpire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if n <= int64(l.max) {
		return true, 0, nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		// counter lost its expiry; re-arm it
		if err := l.client.PExpire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
		ttl = l.window
	}
	return false, ttl, nil
}
