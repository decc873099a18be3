package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a producer's item for sale. It is immutable once created; there
// is no restock, edit or delete.
type Listing struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalQuantity int64           `json:"total_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}
