package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *rdb.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	clk := newFakeClock()
	l := NewRedisLimiter(client, "test:rl:", 3, time.Hour)
	l.Clock = clk
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "10.1.1.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(3-i), res.Remaining)
	}

	res, err := l.Allow(ctx, "10.1.1.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Hour)

	// Nueva ventana → nueva clave.
	mr.FastForward(time.Hour)
	clk.Advance(time.Hour)
	res, err = l.Allow(ctx, "10.1.1.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.CurrentHits)
}

func TestRedisLimiter_SetsExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "", 5, time.Minute)

	_, err := l.Allow(context.Background(), "a b")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rl:a_b:")
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestRedisLimiter_BackendDown(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "", 5, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "a")
	assert.Error(t, err)
}
