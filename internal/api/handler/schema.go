package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// ── Requests ──────────────────────────────────────────────────────────────────

type credentialsRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=120"`
	Role        string `json:"role"         validate:"required,oneof=producer consumer"`
}

type createListingRequest struct {
	Name          string          `json:"name"           validate:"required,max=200"`
	Description   string          `json:"description"    validate:"max=2000"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalQuantity int64           `json:"total_quantity" validate:"gt=0"`
}

type placeOrderRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	Quantity  int64  `json:"quantity"   validate:"gt=0"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

type actorResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	Actor actorResponse `json:"actor"`
}

type listingResponse struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	OwnerName     string          `json:"owner_name,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string"`
	TotalQuantity int64           `json:"total_quantity"`
	Remaining     *int64          `json:"remaining,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type availabilityResponse struct {
	ListingID string `json:"listing_id"`
	Requested int64  `json:"requested"`
	Remaining int64  `json:"remaining"`
	Available bool   `json:"available"`
}

type orderResponse struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	BuyerID      string    `json:"buyer_id"`
	Quantity     int64     `json:"quantity"`
	PlacedAt     time.Time `json:"placed_at"`
	ListingName  string    `json:"listing_name,omitempty"`
	ProducerID   string    `json:"producer_id,omitempty"`
	ProducerName string    `json:"producer_name,omitempty"`
	BuyerName    string    `json:"buyer_name,omitempty"`
}

type placeOrderResponse struct {
	Order     orderResponse `json:"order"`
	Remaining int64         `json:"remaining"`
}

type trendResponse struct {
	AveragePrice         decimal.Decimal `json:"average_price" swaggertype:"string"`
	TotalOrderedQuantity int64           `json:"total_ordered_quantity"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Requested *int64 `json:"requested,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func toActorResponse(a domain.Actor) actorResponse {
	return actorResponse{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		CreatedAt:   a.CreatedAt,
	}
}

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{Token: s.Token, Actor: toActorResponse(s.Actor)}
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Name:          l.Name,
		Description:   l.Description,
		UnitPrice:     l.UnitPrice,
		TotalQuantity: l.TotalQuantity,
		CreatedAt:     l.CreatedAt,
	}
}

func toListingDetailResponse(d ports.ListingDetail) listingResponse {
	resp := toListingResponse(d.Listing)
	remaining := d.Remaining
	resp.Remaining = &remaining
	resp.OwnerName = d.OwnerName
	return resp
}

func toOrderResponse(o domain.OrderRecord) orderResponse {
	return orderResponse{
		ID:        o.ID,
		ListingID: o.ListingID,
		BuyerID:   o.BuyerID,
		Quantity:  o.Quantity,
		PlacedAt:  o.PlacedAt,
	}
}

func toOrderViewResponse(v ports.OrderView) orderResponse {
	resp := toOrderResponse(v.Order)
	resp.ListingName = v.ListingName
	resp.ProducerID = v.ProducerID
	resp.ProducerName = v.ProducerName
	resp.BuyerName = v.BuyerName
	return resp
}
