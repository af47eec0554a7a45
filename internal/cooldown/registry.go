// Package cooldown enforces the 60-second exclusion window that follows
// every pair placement on a (tenant, provider, account) triple. The registry
// is an in-memory mirror of the KV state: hydrated once at start-up, written
// through on every acquisition, and consulted synchronously before any
// placement.
package cooldown

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"arbpair/internal/clock"
	"arbpair/internal/kv"
)

// Seconds is the cooldown window. It is a hard constant: the remaining-time
// math, the persisted TTL, and the cooldownUntil payload all assume it.
const Seconds = 60

// Prefix is the KV namespace cooldown entries live under.
const Prefix = "cooldown:"

// Key builds the canonical cooldown key. All three segments must be
// non-empty for the key to be meaningful; callers validate upstream.
func Key(tenant, provider, account string) string {
	return Prefix + tenant + ":" + provider + ":" + account
}

// Registry mirrors active cooldowns in memory. Entries are never evicted;
// the <60s predicate makes stale ones inert and a fresh acquire overwrites.
type Registry struct {
	store kv.Store
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]float64 // key -> acquired_at, fractional epoch seconds
}

func NewRegistry(store kv.Store, clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Registry{
		store:   store,
		clock:   clk,
		entries: make(map[string]float64),
	}
}

// Load hydrates the mirror from the KV store. Unparsable values are skipped
// with a warning; a transport failure aborts (start-up treats the store as
// critical).
func (r *Registry) Load(ctx context.Context) error {
	loaded := 0
	err := r.store.ScanPrefix(ctx, Prefix, func(key, value string) error {
		at, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			slog.Warn("cooldown.load.skip", "key", key, "err", perr)
			return nil
		}
		r.mu.Lock()
		r.entries[key] = at
		r.mu.Unlock()
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("cooldown: load: %w", err)
	}
	slog.Info("cooldown.loaded", "count", loaded)
	return nil
}

// Remaining reports whether the key is inside its window and how many
// seconds are left. A present-but-stale entry counts as inactive.
func (r *Registry) Remaining(key string) (float64, bool) {
	now := clock.Seconds(r.clock.Now())

	r.mu.Lock()
	at, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return 0, false
	}
	remaining := Seconds - (now - at)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// Acquire stamps the key with the current time, in memory first and then
// written through to the KV store with a TTL of exactly Seconds. Persistence
// failure is a warning: the in-memory entry still protects this process, and
// the TTL'd key would have expired on its own anyway.
func (r *Registry) Acquire(ctx context.Context, key string) time.Time {
	now := r.clock.Now()
	at := clock.Seconds(now)

	r.mu.Lock()
	r.entries[key] = at
	r.mu.Unlock()

	value := strconv.FormatFloat(at, 'f', -1, 64)
	if err := r.store.SetWithTTL(ctx, key, value, Seconds*time.Second); err != nil {
		slog.Warn("cooldown.persist", "key", key, "err", err)
	}
	return now
}

// Len reports how many entries the mirror holds, stale ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
