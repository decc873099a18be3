// Package memory provides process-local stores. Data does not survive a
// restart; it backs tests and the default development setup.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// NewStores returns an empty in-memory bundle.
func NewStores() ports.Stores {
	return ports.Stores{
		Actors:   &ActorStore{},
		Listings: &ListingStore{},
		Orders:   &OrderStore{},
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

type ActorStore struct {
	mu     sync.Mutex
	actors []domain.Actor
}

func (s *ActorStore) LoadAll(_ context.Context) ([]domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Actor(nil), s.actors...), nil
}

func (s *ActorStore) Append(_ context.Context, a domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.actors {
		if existing.ID == a.ID {
			return fmt.Errorf("append actor %s: duplicate id", a.ID)
		}
	}
	s.actors = append(s.actors, a)
	return nil
}

func (s *ActorStore) Replace(_ context.Context, a domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.actors {
		if s.actors[i].ID == a.ID {
			s.actors[i] = a
			return nil
		}
	}
	return domain.ErrActorNotFound
}

type ListingStore struct {
	mu       sync.Mutex
	listings []domain.Listing
}

func (s *ListingStore) LoadAll(_ context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Listing(nil), s.listings...), nil
}

func (s *ListingStore) Append(_ context.Context, l domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, l)
	return nil
}

type OrderStore struct {
	mu     sync.Mutex
	orders []domain.OrderRecord
}

func (s *OrderStore) LoadAll(_ context.Context) ([]domain.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderRecord(nil), s.orders...), nil
}

func (s *OrderStore) Append(_ context.Context, o domain.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.ID == o.ID {
			return nil
		}
	}
	s.orders = append(s.orders, o)
	return nil
}
