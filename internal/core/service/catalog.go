package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// Catalog holds every listing in memory, backed by a durable ListingStore.
type Catalog struct {
	store  ports.ListingStore
	actors ports.ActorDirectory
	log    zerolog.Logger
	now    func() time.Time

	writeMu sync.Mutex
	mu      sync.RWMutex
	byID    map[string]domain.Listing
	order   []string
}

func NewCatalog(store ports.ListingStore, actors ports.ActorDirectory, log zerolog.Logger) *Catalog {
	return &Catalog{
		store:  store,
		actors: actors,
		log:    log,
		now:    time.Now,
		byID:   make(map[string]domain.Listing),
	}
}

// Load rebuilds the catalog from the durable store.
func (c *Catalog) Load(ctx context.Context) error {
	listings, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.Before(listings[j].CreatedAt)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range listings {
		c.add(l)
	}
	c.log.Info().Int("listings", len(listings)).Msg("catalog loaded")
	return nil
}

// CreateListing validates and appends a new listing owned by a producer.
func (c *Catalog) CreateListing(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, domain.InvalidInputf("name is required")
	case !in.UnitPrice.IsPositive():
		return nil, domain.InvalidInputf("unit price must be greater than 0")
	case in.TotalQuantity <= 0:
		return nil, domain.InvalidInputf("total quantity must be greater than 0")
	}

	owner, err := c.actors.GetActor(ctx, in.OwnerID)
	if err != nil {
		return nil, domain.InvalidInputf("owner %q does not exist", in.OwnerID)
	}
	if owner.Role != domain.RoleProducer {
		return nil, fmt.Errorf("create listing: %w", domain.ErrForbidden)
	}

	listing := domain.Listing{
		ID:            uuid.NewString(),
		OwnerID:       owner.ID,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		UnitPrice:     in.UnitPrice,
		TotalQuantity: in.TotalQuantity,
		CreatedAt:     stamp(c.now()),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.store.Append(context.WithoutCancel(ctx), listing); err != nil {
		return nil, fmt.Errorf("append listing: %w", err)
	}

	c.mu.Lock()
	c.add(listing)
	c.mu.Unlock()

	return &listing, nil
}

// GetListing returns the listing with the given ID.
func (c *Catalog) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

// ListAll returns a snapshot of every listing in creation order.
func (c *Catalog) ListAll(_ context.Context) []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Listing, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ListByOwner returns a snapshot of the listings owned by ownerID.
func (c *Catalog) ListByOwner(_ context.Context, ownerID string) []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Listing
	for _, id := range c.order {
		if l := c.byID[id]; l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out
}

func (c *Catalog) add(l domain.Listing) {
	if _, exists := c.byID[l.ID]; exists {
		return
	}
	c.byID[l.ID] = l
	c.order = append(c.order, l.ID)
}
