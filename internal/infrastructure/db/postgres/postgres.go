package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// DBPool matches the methods from *pgxpool.Pool that the repositories use.
// pgxmock satisfies it in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// NewPool parses dsn and opens a connection pool, verifying it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// NewStores wires the repositories over pool. Close closes the pool.
func NewStores(pool *pgxpool.Pool) ports.Stores {
	return ports.Stores{
		Actors:   NewActorRepository(pool),
		Listings: NewListingRepository(pool),
		Orders:   NewOrderRepository(pool),
		Ping:     pool.Ping,
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}
