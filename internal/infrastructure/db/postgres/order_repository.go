package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

type OrderRepository struct {
	pool DBPool
}

func NewOrderRepository(pool DBPool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) LoadAll(ctx context.Context) ([]domain.OrderRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, listing_id::text, buyer_id::text, quantity, placed_at
		FROM orders
		ORDER BY placed_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderRecord, error) {
		var o domain.OrderRecord
		err := row.Scan(&o.ID, &o.ListingID, &o.BuyerID, &o.Quantity, &o.PlacedAt)
		o.PlacedAt = o.PlacedAt.UTC()
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) Append(ctx context.Context, o domain.OrderRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, listing_id, buyer_id, quantity, placed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, o.ID, o.ListingID, o.BuyerID, o.Quantity, o.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
