// Package limiter implements fixed-window request limiting keyed by a hashed client subject.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter counts hits per (bucket, subject) within a window.
type Limiter interface {
	// Hit records one hit and reports whether it is within the limit, with the time until the
	// window resets when it is not.
	Hit(ctx context.Context, bucket string, subject []byte) (bool, time.Duration, error)
}

// HashSubject returns a stable hash for a client address to avoid storing raw addresses.
func HashSubject(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

func retryAfter(windowStart time.Time, window time.Duration, now time.Time) time.Duration {
	d := windowStart.Add(window).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
