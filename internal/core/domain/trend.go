package domain

import "github.com/shopspring/decimal"

// Trend is the per-name market summary derived from listings and orders.
type Trend struct {
	AveragePrice         decimal.Decimal `json:"average_price"`
	TotalOrderedQuantity int64           `json:"total_ordered_quantity"`
}
