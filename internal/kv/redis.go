package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	rdb *redis.Client
}

// Open parses a redis:// URL and returns a connected store. Callers are
// expected to Ping before relying on it; the constructor itself does not
// touch the network.
func Open(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("kv: parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return &RedisStore{rdb: redis.NewClient(opts)}, nil
}

// NewStore wraps an existing client. Used by tests and by callers that share
// one client between the store and the queue.
func NewStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Client exposes the underlying connection for collaborators that need raw
// list operations (the queue) on the same server.
func (s *RedisStore) Client() *redis.Client { return s.rdb }

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("kv: setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("kv: ttl %s: %w", key, err)
	}
	// go-redis reports missing (-2) and no-expiry (-1) as raw negative
	// durations; both collapse to -1 here.
	if d < 0 {
		return -1, nil
	}
	return d, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv: del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ScanPrefix(ctx context.Context, prefix string, fn func(key, value string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("kv: scan %s*: %w", prefix, err)
		}
		for _, key := range keys {
			v, err := s.rdb.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			if err != nil {
				return fmt.Errorf("kv: scan get %s: %w", key, err)
			}
			if err := fn(key, v); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("kv: ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
