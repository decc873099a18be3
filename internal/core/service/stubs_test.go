package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub stores
// ---------------------------------------------------------------------------

type stubActorStore struct {
	mu        sync.Mutex
	actors    []domain.Actor
	appendErr error
}

func (s *stubActorStore) LoadAll(_ context.Context) ([]domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Actor(nil), s.actors...), nil
}

func (s *stubActorStore) Append(_ context.Context, a domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.actors = append(s.actors, a)
	return nil
}

func (s *stubActorStore) Replace(_ context.Context, a domain.Actor) error {
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

type stubListingStore struct {
	mu       sync.Mutex
	listings []domain.Listing
}

func (s *stubListingStore) LoadAll(_ context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Listing(nil), s.listings...), nil
}

func (s *stubListingStore) Append(_ context.Context, l domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, l)
	return nil
}

type stubOrderStore struct {
	mu        sync.Mutex
	orders    []domain.OrderRecord
	appendErr error
	attempts  int

	// The next lostAcks writes are stored but answered with ackErr, as when
	// a timeout fires after the database committed.
	lostAcks int
	ackErr   error
}

func (s *stubOrderStore) LoadAll(_ context.Context) ([]domain.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderRecord(nil), s.orders...), nil
}

func (s *stubOrderStore) Append(ctx context.Context, o domain.OrderRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.appendErr != nil {
		return s.appendErr
	}
	stored := false
	for _, existing := range s.orders {
		if existing.ID == o.ID {
			stored = true
			break
		}
	}
	if !stored {
		s.orders = append(s.orders, o)
	}
	if s.lostAcks > 0 {
		s.lostAcks--
		return s.ackErr
	}
	return nil
}

func (s *stubOrderStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type stubIdempotency struct {
	mu        sync.Mutex
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[scope+"|"+key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[scope+"|"+key] = orderID
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []ports.DomainEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, ev ports.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *stubPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errStoreDown = errors.New("store down")

// ---------------------------------------------------------------------------
// Fixture: a fully wired marketplace on stub stores
// ---------------------------------------------------------------------------

type marketFixture struct {
	identity    *IdentityService
	catalog     *Catalog
	ledger      *Ledger
	orders      *OrderService
	listings    *CatalogService
	trends      *TrendsService
	orderStore  *stubOrderStore
	idempotency *stubIdempotency
	events      *stubPublisher
}

func newMarketFixture() *marketFixture {
	log := zerolog.Nop()
	f := &marketFixture{
		orderStore:  &stubOrderStore{},
		idempotency: newStubIdempotency(),
		events:      &stubPublisher{},
	}
	f.identity = NewIdentityService(&stubActorStore{}, "test-secret", log)
	f.catalog = NewCatalog(&stubListingStore{}, f.identity, log)
	f.ledger = NewLedger(f.orderStore)
	f.ledger.backoff = time.Millisecond
	f.orders = NewOrderService(f.identity, f.catalog, f.ledger, f.idempotency, f.events, log)
	f.listings = NewCatalogService(f.identity, f.catalog, f.ledger, f.events, log)
	f.trends = NewTrendsService(f.catalog, f.ledger)

	clock := tickingClock()
	f.identity.now = clock
	f.catalog.now = clock
	f.orders.now = clock
	return f
}

// tickingClock advances one second per call so ordering by time is stable.
func tickingClock() func() time.Time {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

func (f *marketFixture) register(name string, role domain.Role) *ports.Session {
	s, err := f.identity.Register(context.Background(), name, role)
	if err != nil {
		panic(err)
	}
	return s
}
