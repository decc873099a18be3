package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// TrendsService summarises the market per listing name. It only reads.
type TrendsService struct {
	catalog *Catalog
	ledger  *Ledger
}

func NewTrendsService(catalog *Catalog, ledger *Ledger) *TrendsService {
	return &TrendsService{catalog: catalog, ledger: ledger}
}

// ComputeTrends groups listings by name. AveragePrice is the mean unit price
// over listing rows, so two producers selling "Tomato" both count.
// TotalOrderedQuantity sums every order placed against a listing of that name.
func (s *TrendsService) ComputeTrends(ctx context.Context) (map[string]domain.Trend, error) {
	listings := s.catalog.ListAll(ctx)
	orders := s.ledger.All()

	type group struct {
		priceSum decimal.Decimal
		rows     int64
		ordered  int64
	}
	groups := make(map[string]*group)
	nameOf := make(map[string]string, len(listings))

	for _, l := range listings {
		g, ok := groups[l.Name]
		if !ok {
			g = &group{priceSum: decimal.Zero}
			groups[l.Name] = g
		}
		g.priceSum = g.priceSum.Add(l.UnitPrice)
		g.rows++
		nameOf[l.ID] = l.Name
	}

	for _, o := range orders {
		name, ok := nameOf[o.ListingID]
		if !ok {
			continue
		}
		groups[name].ordered += o.Quantity
	}

	out := make(map[string]domain.Trend, len(groups))
	for name, g := range groups {
		avg := decimal.Zero
		if g.rows > 0 {
			avg = g.priceSum.Div(decimal.NewFromInt(g.rows))
		}
		out[name] = domain.Trend{AveragePrice: avg, TotalOrderedQuantity: g.ordered}
	}
	return out, nil
}
