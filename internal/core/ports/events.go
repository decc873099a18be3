package ports

import (
	"context"
	"time"
)

const (
	EventListingCreated = "listing.created.v1"
	EventOrderPlaced    = "order.placed.v1"
)

// DomainEvent is a fact announced after it has been committed.
type DomainEvent struct {
	ID   string
	Type string
	// Key groups events that must be delivered in order (the listing ID).
	Key        string
	OccurredAt time.Time
	Payload    any
}

// EventPublisher announces committed facts to other systems. Publishing is
// best effort: callers log failures and never roll back.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
