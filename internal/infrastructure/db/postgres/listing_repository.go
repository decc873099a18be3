package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

type ListingRepository struct {
	pool DBPool
}

func NewListingRepository(pool DBPool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) LoadAll(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, name, description, unit_price::text, total_quantity, created_at
		FROM listings
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Listing, error) {
		var (
			l     domain.Listing
			price string
		)
		if err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &price, &l.TotalQuantity, &l.CreatedAt); err != nil {
			return l, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return l, fmt.Errorf("listing %s: parse unit price: %w", l.ID, err)
		}
		l.UnitPrice = p
		l.CreatedAt = l.CreatedAt.UTC()
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) Append(ctx context.Context, l domain.Listing) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO listings (id, owner_id, name, description, unit_price, total_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
	`, l.ID, l.OwnerID, l.Name, l.Description, l.UnitPrice.String(), l.TotalQuantity, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}
