package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which order an idempotency key produced.
// Key format: idem:<buyer_id>:<listing_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. Keys expire after ttl, or after a day
// when ttl is not positive.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	orderID, err := s.client.Get(ctx, s.key(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return orderID, true, nil
}

// Remember stores orderID under key unless a value is already present, so
// the first committed order for a key wins.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, orderID string) error {
	if err := s.client.SetNX(ctx, s.key(scope, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
