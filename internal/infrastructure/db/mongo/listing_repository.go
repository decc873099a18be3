package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

// Prices are kept as Decimal128 so they round-trip exactly.
type listingDocument struct {
	ID            string               `bson:"_id"`
	OwnerID       string               `bson:"owner_id"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description,omitempty"`
	UnitPrice     primitive.Decimal128 `bson:"unit_price"`
	TotalQuantity int64                `bson:"total_quantity"`
	CreatedAt     time.Time            `bson:"created_at"`
}

func (r *ListingRepository) LoadAll(ctx context.Context) ([]domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	out := make([]domain.Listing, 0, len(docs))
	for _, d := range docs {
		price, err := decimal.NewFromString(d.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("listing %s: parse unit price: %w", d.ID, err)
		}
		out = append(out, domain.Listing{
			ID:            d.ID,
			OwnerID:       d.OwnerID,
			Name:          d.Name,
			Description:   d.Description,
			UnitPrice:     price,
			TotalQuantity: d.TotalQuantity,
			CreatedAt:     d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *ListingRepository) Append(ctx context.Context, l domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	price, err := primitive.ParseDecimal128(l.UnitPrice.String())
	if err != nil {
		return fmt.Errorf("listing %s: encode unit price: %w", l.ID, err)
	}

	doc := listingDocument{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Name:          l.Name,
		Description:   l.Description,
		UnitPrice:     price,
		TotalQuantity: l.TotalQuantity,
		CreatedAt:     l.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}
