package ports

import (
	"context"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// ActorStore is the durable home of registered actors.
type ActorStore interface {
	LoadAll(ctx context.Context) ([]domain.Actor, error)
	Append(ctx context.Context, actor domain.Actor) error
	// Replace overwrites the stored record with the same ID. Used when a
	// session token is rotated.
	Replace(ctx context.Context, actor domain.Actor) error
}

// ListingStore is the durable home of listings. Listings are append-only.
type ListingStore interface {
	LoadAll(ctx context.Context) ([]domain.Listing, error)
	Append(ctx context.Context, listing domain.Listing) error
}

// OrderStore is the durable home of the order ledger. Records are never
// updated or deleted.
type OrderStore interface {
	LoadAll(ctx context.Context) ([]domain.OrderRecord, error)
	// Append is idempotent on order.ID: writing a record that is already
	// stored succeeds without adding a second copy.
	Append(ctx context.Context, order domain.OrderRecord) error
}

// Stores bundles one backend's entity stores. Ping reports backend health.
type Stores struct {
	Actors   ActorStore
	Listings ListingStore
	Orders   OrderStore
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}
