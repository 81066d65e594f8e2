package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCodeNotFound         = errors.New("verification code not found")
	ErrCodeRedisUnavailable = errors.New("verification code redis unavailable")
)

// CodeStore persists short-lived verification codes in Redis, keyed by
// purpose and email. At most one code is active per (purpose, email) pair:
// saving overwrites any prior code unconditionally.
type CodeStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewCodeStore creates a store writing under the given key prefix.
func NewCodeStore(redisClient redis.UniversalClient, prefix string) *CodeStore {
	return &CodeStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *CodeStore) key(purpose, email string) string {
	return s.prefix + purpose + ":" + email
}

// Save stores code for (purpose, email) with the given TTL, replacing any
// existing record.
func (s *CodeStore) Save(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(purpose, email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}
	return nil
}

// Get returns the active code for (purpose, email), or [ErrCodeNotFound]
// when none exists or the record has expired.
func (s *CodeStore) Get(ctx context.Context, purpose, email string) (string, error) {
	code, err := s.redis.Get(ctx, s.key(purpose, email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}
	return code, nil
}

// Delete removes the record for (purpose, email). Deleting an absent record
// is not an error.
func (s *CodeStore) Delete(ctx context.Context, purpose, email string) error {
	if err := s.redis.Del(ctx, s.key(purpose, email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeRedisUnavailable, err)
	}
	return nil
}
