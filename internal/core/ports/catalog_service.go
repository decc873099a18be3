package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// CreateListingInput carries everything needed to publish a listing.
type CreateListingInput struct {
	OwnerID       string
	Name          string
	Description   string
	UnitPrice     decimal.Decimal
	TotalQuantity int64
}

// ListingDetail is a listing augmented with its live availability and the
// owner's display name.
type ListingDetail struct {
	Listing   domain.Listing
	Remaining int64
	OwnerName string
}

// AvailabilityResult answers whether a quantity could be ordered right now.
type AvailabilityResult struct {
	ListingID string
	Requested int64
	Remaining int64
	Available bool
}

// CatalogService defines use-case operations on listings.
type CatalogService interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*ListingDetail, error)
	// ListCatalog returns every listing that still has stock.
	ListCatalog(ctx context.Context) ([]ListingDetail, error)
	CheckAvailability(ctx context.Context, listingID string, quantity int64) (*AvailabilityResult, error)
}
