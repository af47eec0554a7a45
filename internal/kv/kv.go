// Package kv is the durable key-value contract the engine runs against.
// Production uses Redis; tests target the interface through miniredis.
package kv

import (
	"context"
	"time"
)

// Store is the slice of KV behavior the engine needs. All operations may
// fail with a transport error; callers decide per call site whether that is
// fatal (the idempotency claim) or a warning (cooldown and exposure writes).
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetIfAbsent writes value only when key is absent, with the given TTL.
	// It reports whether this call created the key. A false return with a
	// nil error means someone else holds the key.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// SetWithTTL writes value unconditionally with the given TTL.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// TTL returns the remaining lifetime of key, or -1 when the key is
	// missing or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, key string) error
	// ScanPrefix walks every key starting with prefix and calls fn with the
	// key and its current value. Keys that expire mid-scan are skipped.
	// A non-nil error from fn stops the walk.
	ScanPrefix(ctx context.Context, prefix string, fn func(key, value string) error) error
	Ping(ctx context.Context) error
}
