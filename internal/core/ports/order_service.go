package ports

import (
	"context"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// PlaceOrderInput is the DTO passed from the transport layer to OrderService.
type PlaceOrderInput struct {
	BuyerID   string
	ListingID string
	Quantity  int64
	// IdempotencyKey is optional. A repeated key for the same buyer and
	// listing returns the original order instead of placing a new one.
	IdempotencyKey string
}

// PlaceOrderResult is returned after an order is committed or replayed.
type PlaceOrderResult struct {
	Order     domain.OrderRecord
	Remaining int64
	// AlreadyExisted is true when the idempotency key matched an earlier order.
	AlreadyExisted bool
}

// OrderView is an order enriched with the names a client needs to display it.
type OrderView struct {
	Order        domain.OrderRecord
	ListingName  string
	ProducerID   string
	ProducerName string
	BuyerName    string
}

// OrderService places orders and reports order history.
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	// ListOrders returns a consumer's own orders, or for a producer every
	// order placed against their listings.
	ListOrders(ctx context.Context, actor domain.Actor) ([]OrderView, error)
}

// TrendsService computes market summaries on demand.
type TrendsService interface {
	ComputeTrends(ctx context.Context) (map[string]domain.Trend, error)
}
