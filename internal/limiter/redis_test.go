package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisHit_FixedWindow(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedis(client, time.Hour, 2)
	ctx := context.Background()
	subj := HashSubject("10.0.0.1")

	for i := 0; i < 2; i++ {
		ok, _, err := l.Hit(ctx, "keys", subj)
		require.NoError(t, err)
		require.True(t, ok, "hit %d", i+1)
	}

	ok, retry, err := l.Hit(ctx, "keys", subj)
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, retry, time.Duration(0))
	require.LessOrEqual(t, retry, time.Hour)

	// other subjects and buckets are independent
	ok, _, err = l.Hit(ctx, "keys", HashSubject("10.0.0.2"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, _, err = l.Hit(ctx, "other", subj)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Hour + time.Second)
	ok, _, err = l.Hit(ctx, "keys", subj)
	require.NoError(t, err)
	require.True(t, ok, "window must reset after expiry")
}

func TestRedisHit_RearmsLostExpiry(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedis(client, time.Minute, 1)
	ctx := context.Background()
	subj := []byte("s")

	require.NoError(t, mr.Set(redisKey("keys", subj), "5"))

	ok, retry, err := l.Hit(ctx, "keys", subj)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, time.Minute, retry)
	require.Equal(t, time.Minute, mr.TTL(redisKey("keys", subj)))
}

func TestRedisHit_ConnectionError(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedis(client, time.Minute, 1)
	mr.Close()

	_, _, err := l.Hit(context.Background(), "keys", []byte("s"))
	require.Error(t, err)
}
