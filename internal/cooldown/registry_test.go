package cooldown

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbpair/internal/clock"
	"arbpair/internal/kv"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T) (*Registry, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	clk := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewRegistry(kv.NewStore(rdb), clk), clk, mr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cooldown:acme:bookie-a:acc-1", Key("acme", "bookie-a", "acc-1"))
}

func TestAcquireIsScopedToOneAccount(t *testing.T) {
	reg, _, mr := newTestRegistry(t)

	keyA := Key("acme", "bookie-a", "acc-1")
	keyB := Key("acme", "bookie-a", "acc-2")
	reg.Acquire(context.Background(), keyA)

	_, active := reg.Remaining(keyB)
	assert.False(t, active)
	assert.False(t, mr.Exists(keyB))
}

func TestAcquirePersistsWithWindowTTL(t *testing.T) {
	reg, clk, mr := newTestRegistry(t)

	key := Key("acme", "bookie-a", "acc-1")
	at := reg.Acquire(context.Background(), key)
	assert.Equal(t, clk.Now(), at)

	v, err := mr.Get(key)
	require.NoError(t, err)
	parsed, err := strconv.ParseFloat(v, 64)
	require.NoError(t, err)
	assert.InDelta(t, clock.Seconds(at), parsed, 1e-6)
	assert.Equal(t, Seconds*time.Second, mr.TTL(key))
}

func TestRemainingCountsDownToExpiry(t *testing.T) {
	reg, clk, _ := newTestRegistry(t)
	key := Key("acme", "bookie-a", "acc-1")

	_, active := reg.Remaining(key)
	assert.False(t, active)

	reg.Acquire(context.Background(), key)

	remaining, active := reg.Remaining(key)
	assert.True(t, active)
	assert.InDelta(t, 60, remaining, 1e-6)

	clk.Advance(45 * time.Second)
	remaining, active = reg.Remaining(key)
	assert.True(t, active)
	assert.InDelta(t, 15, remaining, 1e-6)

	clk.Advance(15 * time.Second)
	_, active = reg.Remaining(key)
	assert.False(t, active)
}

func TestReacquireRestartsWindow(t *testing.T) {
	reg, clk, _ := newTestRegistry(t)
	key := Key("acme", "bookie-a", "acc-1")

	reg.Acquire(context.Background(), key)
	clk.Advance(90 * time.Second)
	_, active := reg.Remaining(key)
	assert.False(t, active)

	reg.Acquire(context.Background(), key)
	remaining, active := reg.Remaining(key)
	assert.True(t, active)
	assert.InDelta(t, 60, remaining, 1e-6)
}

func TestLoadHydratesAndSkipsGarbage(t *testing.T) {
	reg, clk, mr := newTestRegistry(t)

	at := clock.Seconds(clk.Now().Add(-10 * time.Second))
	mr.Set(Key("acme", "bookie-a", "acc-1"), strconv.FormatFloat(at, 'f', -1, 64))
	mr.Set(Key("acme", "bookie-b", "acc-2"), "not-a-number")
	mr.Set("unrelated", "1")

	require.NoError(t, reg.Load(context.Background()))
	assert.Equal(t, 1, reg.Len())

	remaining, active := reg.Remaining(Key("acme", "bookie-a", "acc-1"))
	assert.True(t, active)
	assert.InDelta(t, 50, remaining, 1e-6)

	_, active = reg.Remaining(Key("acme", "bookie-b", "acc-2"))
	assert.False(t, active)
}

func TestLoadFailsWhenStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	reg := NewRegistry(kv.NewStore(rdb), nil)

	mr.Close()
	require.Error(t, reg.Load(context.Background()))
}

func TestAcquireHoldsInMemoryWhenPersistFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	clk := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	reg := NewRegistry(kv.NewStore(rdb), clk)

	mr.Close()

	key := Key("acme", "bookie-a", "acc-1")
	reg.Acquire(context.Background(), key)

	remaining, active := reg.Remaining(key)
	assert.True(t, active)
	assert.InDelta(t, 60, remaining, 1e-6)
}
