package ports

import "context"

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (orderID string, found bool, err error)
	Remember(ctx context.Context, scope, key, orderID string) error
}
