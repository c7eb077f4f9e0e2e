package rate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestWindowLimiter_LimitThenReject(t *testing.T) {
	clk := newFakeClock()
	l := NewWindowLimiter(5, time.Hour, time.Minute, WithClock(clk))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := l.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, int64(5-i), res.Remaining)
		assert.Equal(t, int64(i), res.CurrentHits)
	}

	res, err := l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Equal(t, time.Hour, res.RetryAfter)

	// El rechazo no incrementa.
	clk.Advance(30 * time.Minute)
	res, _ = l.Allow(ctx, "203.0.113.7")
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(5), res.CurrentHits)
	assert.Equal(t, 30*time.Minute, res.RetryAfter)
}

func TestWindowLimiter_ResetAfterWindow(t *testing.T) {
	clk := newFakeClock()
	l := NewWindowLimiter(5, time.Hour, time.Minute, WithClock(clk))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = l.Allow(ctx, "a")
	}

	// Justo en start+window la ventana ya venció.
	clk.Advance(time.Hour)
	res, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.CurrentHits)
	assert.Equal(t, int64(4), res.Remaining)
}

func TestWindowLimiter_WindowStartsAtFirstRequest(t *testing.T) {
	clk := newFakeClock()
	l := NewWindowLimiter(2, time.Hour, time.Minute, WithClock(clk))
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	clk.Advance(59 * time.Minute)
	res, _ := l.Allow(ctx, "a")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "a")
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestWindowLimiter_AddressesAreIndependent(t *testing.T) {
	l := NewWindowLimiter(1, time.Hour, time.Minute, WithClock(newFakeClock()))
	ctx := context.Background()

	r1, _ := l.Allow(ctx, "10.0.0.1")
	r2, _ := l.Allow(ctx, "10.0.0.2")
	r3, _ := l.Allow(ctx, "10.0.0.1")
	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
	assert.False(t, r3.Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestWindowLimiter_ConcurrentSameAddressNeverExceedsLimit(t *testing.T) {
	const limit = 5
	l := NewWindowLimiter(limit, time.Hour, time.Minute, WithClock(newFakeClock()))
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Allow(ctx, "198.51.100.1")
			if err == nil && res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(limit), allowed.Load())
}

func TestWindowLimiter_StaleEntryDoesNotClobberReplacement(t *testing.T) {
	clk := newFakeClock()
	l := NewWindowLimiter(2, time.Hour, time.Minute, WithClock(clk))
	ctx := context.Background()
	const addr = "198.51.100.9"

	// Una goroutine se queda con la entrada vieja; mientras tanto vence y se reemplaza.
	stale := l.entry(addr)
	l.entries.Delete(addr)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, addr)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	fresh, ok := l.entries.Get(addr)
	require.True(t, ok)
	require.NotSame(t, stale, fresh)

	stale.mu.Lock()
	_, applied := l.take(addr, stale)
	stale.mu.Unlock()
	assert.False(t, applied)

	cur, ok := l.entries.Get(addr)
	require.True(t, ok)
	assert.Same(t, fresh, cur)

	res, err := l.Allow(ctx, addr)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "the replacement entry keeps its count")
	assert.Equal(t, int64(2), res.CurrentHits)
}

func TestWindowLimiter_EntriesExpire(t *testing.T) {
	// Reloj real: la entrada vence en go-cache tras window+cleanup.
	l := NewWindowLimiter(5, 20*time.Millisecond, 10*time.Millisecond)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	require.Equal(t, 2, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)
}
