package service

import (
	"context"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

type listingReader interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

// Availability derives remaining stock from the catalog and the ledger.
// Listings are immutable, so the only moving part is the ledger snapshot
// taken by CommittedQuantity.
type Availability struct {
	catalog listingReader
	ledger  *Ledger
}

func NewAvailability(catalog listingReader, ledger *Ledger) *Availability {
	return &Availability{catalog: catalog, ledger: ledger}
}

// Remaining returns total quantity minus every committed order quantity.
func (a *Availability) Remaining(ctx context.Context, listingID string) (int64, error) {
	listing, err := a.catalog.GetListing(ctx, listingID)
	if err != nil {
		return 0, err
	}
	return listing.TotalQuantity - a.ledger.CommittedQuantity(listingID), nil
}

// IsAvailableFor reports whether qty could be ordered against the current
// ledger. The answer only holds while the listing's order section is held;
// OrderService relies on that when deciding.
func (a *Availability) IsAvailableFor(ctx context.Context, listingID string, qty int64) (bool, int64, error) {
	remaining, err := a.Remaining(ctx, listingID)
	if err != nil {
		return false, 0, err
	}
	return qty > 0 && qty <= remaining, remaining, nil
}
