package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

const uniqueViolation = "23505"

type ActorRepository struct {
	pool DBPool
}

func NewActorRepository(pool DBPool) *ActorRepository {
	return &ActorRepository{pool: pool}
}

func (r *ActorRepository) LoadAll(ctx context.Context) ([]domain.Actor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, display_name, role, token_hash, created_at, updated_at
		FROM actors
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}

	actors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Actor, error) {
		var (
			a    domain.Actor
			role string
		)
		err := row.Scan(&a.ID, &a.DisplayName, &role, &a.TokenHash, &a.CreatedAt, &a.UpdatedAt)
		a.Role = domain.Role(role)
		a.CreatedAt = a.CreatedAt.UTC()
		a.UpdatedAt = a.UpdatedAt.UTC()
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan actors: %w", err)
	}
	return actors, nil
}

func (r *ActorRepository) Append(ctx context.Context, a domain.Actor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO actors (id, display_name, role, token_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.DisplayName, string(a.Role), a.TokenHash, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateActor
		}
		return fmt.Errorf("insert actor: %w", err)
	}
	return nil
}

func (r *ActorRepository) Replace(ctx context.Context, a domain.Actor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE actors
		SET display_name = $2, role = $3, token_hash = $4, updated_at = $5
		WHERE id = $1
	`, a.ID, a.DisplayName, string(a.Role), a.TokenHash, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update actor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActorNotFound
	}
	return nil
}
