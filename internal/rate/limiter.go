package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config carries the key namespaces for the windowed limiter. The prefixes
// must not collide with any other namespace in the shared store.
type Config struct {
	CounterPrefix string
	BlockPrefix   string
}

// Limiter enforces per-key request ceilings using Redis as the only shared
// state. It is safe for concurrent use from any number of goroutines and
// processes.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowOnce permits at most one call per cooldown period for a fixed key.
// The first caller creates the key with TTL = cooldown and is allowed;
// every caller that finds the key present is denied until it expires.
//
// The check-and-set is a single SET NX EX, so concurrent callers cannot
// both be allowed.
func (l *Limiter) AllowOnce(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	ok, err := l.redis.SetNX(ctx, key, "", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok, nil
}

// AllowWindowed realizes a fixed-window counter with a punitive block.
// A present block flag denies immediately. Otherwise the counter for id is
// incremented atomically; the first hit in a window sets TTL = window.
// Once the post-increment count exceeds maxCount the block flag is set with
// TTL = block and the call is denied; the denial then persists for the full
// block period even after the counting window has reset.
func (l *Limiter) AllowWindowed(ctx context.Context, id string, maxCount int, window, block time.Duration) (bool, error) {
	blocked, err := l.redis.Exists(ctx, l.blockKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if blocked > 0 {
		return false, nil
	}

	count, err := l.incrementWithTTL(ctx, l.counterKey(id), window)
	if err != nil {
		return false, err
	}

	if count > int64(maxCount) {
		if err := l.redis.Set(ctx, l.blockKey(id), "", block).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return false, nil
	}

	return true, nil
}

// Reset clears the counter and block flag for id. Intended for tests and
// operator tooling, not for the request path.
func (l *Limiter) Reset(ctx context.Context, id string) error {
	if err := l.redis.Del(ctx, l.counterKey(id), l.blockKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Count returns the current window counter for id. Missing keys report zero.
func (l *Limiter) Count(ctx context.Context, id string) (int64, error) {
	count, err := l.redis.Get(ctx, l.counterKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return count, nil
}

func (l *Limiter) counterKey(id string) string {
	return l.config.CounterPrefix + id
}

func (l *Limiter) blockKey(id string) string {
	return l.config.BlockPrefix + id
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
