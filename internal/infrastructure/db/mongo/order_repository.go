package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// OrderRepository is insert-only; order documents are never updated.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type orderDocument struct {
	ID        string    `bson:"_id"`
	ListingID string    `bson:"listing_id"`
	BuyerID   string    `bson:"buyer_id"`
	Quantity  int64     `bson:"quantity"`
	PlacedAt  time.Time `bson:"placed_at"`
}

func (r *OrderRepository) LoadAll(ctx context.Context) ([]domain.OrderRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "placed_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]domain.OrderRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.OrderRecord{
			ID:        d.ID,
			ListingID: d.ListingID,
			BuyerID:   d.BuyerID,
			Quantity:  d.Quantity,
			PlacedAt:  d.PlacedAt.UTC(),
		})
	}
	return out, nil
}

func (r *OrderRepository) Append(ctx context.Context, o domain.OrderRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := orderDocument{
		ID:        o.ID,
		ListingID: o.ListingID,
		BuyerID:   o.BuyerID,
		Quantity:  o.Quantity,
		PlacedAt:  o.PlacedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		// _id is the order ID: a duplicate means an earlier attempt landed.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
