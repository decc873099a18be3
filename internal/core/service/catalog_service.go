package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
	"github.com/harvestlink/marketplace-api/internal/pkg/metrics"
)

// ListingCreatedPayload is the body of a listing.created.v1 event.
type ListingCreatedPayload struct {
	ListingID     string          `json:"listing_id"`
	OwnerID       string          `json:"owner_id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalQuantity int64           `json:"total_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CatalogService exposes the catalog together with live availability.
type CatalogService struct {
	actors       ports.ActorDirectory
	catalog      *Catalog
	availability *Availability
	events       ports.EventPublisher
	log          zerolog.Logger
}

func NewCatalogService(actors ports.ActorDirectory, catalog *Catalog, ledger *Ledger, events ports.EventPublisher, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		actors:       actors,
		catalog:      catalog,
		availability: NewAvailability(catalog, ledger),
		events:       events,
		log:          log,
	}
}

func (s *CatalogService) CreateListing(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	listing, err := s.catalog.CreateListing(ctx, in)
	if err != nil {
		return nil, err
	}

	metrics.ListingsCreatedTotal.Inc()
	s.log.Info().
		Str("listing_id", listing.ID).
		Str("owner_id", listing.OwnerID).
		Str("name", listing.Name).
		Int64("total_quantity", listing.TotalQuantity).
		Msg("listing created")

	if s.events != nil {
		ev := ports.DomainEvent{
			ID:         uuid.NewString(),
			Type:       ports.EventListingCreated,
			Key:        listing.ID,
			OccurredAt: listing.CreatedAt,
			Payload: ListingCreatedPayload{
				ListingID:     listing.ID,
				OwnerID:       listing.OwnerID,
				Name:          listing.Name,
				UnitPrice:     listing.UnitPrice,
				TotalQuantity: listing.TotalQuantity,
				CreatedAt:     listing.CreatedAt,
			},
		}
		if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
			s.log.Warn().Err(err).Str("event_type", ev.Type).Msg("failed to publish event")
		}
	}

	return listing, nil
}

func (s *CatalogService) GetListing(ctx context.Context, id string) (*ports.ListingDetail, error) {
	listing, err := s.catalog.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	d := s.detail(ctx, *listing)
	return &d, nil
}

// ListCatalog returns listings with stock left, oldest first.
func (s *CatalogService) ListCatalog(ctx context.Context) ([]ports.ListingDetail, error) {
	all := s.catalog.ListAll(ctx)
	out := make([]ports.ListingDetail, 0, len(all))
	for _, l := range all {
		d := s.detail(ctx, l)
		if d.Remaining > 0 {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *CatalogService) CheckAvailability(ctx context.Context, listingID string, quantity int64) (*ports.AvailabilityResult, error) {
	if quantity <= 0 {
		return nil, domain.InvalidInputf("quantity must be greater than 0")
	}
	ok, remaining, err := s.availability.IsAvailableFor(ctx, listingID, quantity)
	if err != nil {
		return nil, err
	}
	return &ports.AvailabilityResult{
		ListingID: listingID,
		Requested: quantity,
		Remaining: remaining,
		Available: ok,
	}, nil
}

func (s *CatalogService) detail(ctx context.Context, l domain.Listing) ports.ListingDetail {
	d := ports.ListingDetail{
		Listing:   l,
		Remaining: l.TotalQuantity - s.availability.ledger.CommittedQuantity(l.ID),
	}
	if owner, err := s.actors.GetActor(ctx, l.OwnerID); err == nil {
		d.OwnerName = owner.DisplayName
	}
	return d
}
