package domain

import "time"

// OrderRecord is an immutable purchase of some quantity of a listing.
// Records are only ever appended to the ledger.
type OrderRecord struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	BuyerID   string    `json:"buyer_id"`
	Quantity  int64     `json:"quantity"`
	PlacedAt  time.Time `json:"placed_at"`
}
