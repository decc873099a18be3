package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

type ActorRepository struct {
	col *mongo.Collection
}

func NewActorRepository(db *mongo.Database) *ActorRepository {
	return &ActorRepository{col: db.Collection(collectionActors)}
}

type actorDocument struct {
	ID          string    `bson:"_id"`
	DisplayName string    `bson:"display_name"`
	Role        string    `bson:"role"`
	TokenHash   string    `bson:"token_hash"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toActorDocument(a domain.Actor) actorDocument {
	return actorDocument{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		TokenHash:   a.TokenHash,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d actorDocument) toDomain() domain.Actor {
	return domain.Actor{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Role:        domain.Role(d.Role),
		TokenHash:   d.TokenHash,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *ActorRepository) LoadAll(ctx context.Context) ([]domain.Actor, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find actors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []actorDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode actors: %w", err)
	}

	out := make([]domain.Actor, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ActorRepository) Append(ctx context.Context, a domain.Actor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toActorDocument(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateActor
		}
		return fmt.Errorf("insert actor: %w", err)
	}
	return nil
}

func (r *ActorRepository) Replace(ctx context.Context, a domain.Actor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, toActorDocument(a))
	if err != nil {
		return fmt.Errorf("replace actor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrActorNotFound
	}
	return nil
}
