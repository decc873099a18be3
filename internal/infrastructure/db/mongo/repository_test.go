package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

func TestActorRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("append", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewActorRepository(mt.DB)

		if err := repo.Append(ctx, domain.Actor{ID: "a1", DisplayName: "Ann", Role: domain.RoleProducer}); err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("append duplicate identity", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewActorRepository(mt.DB)

		err := repo.Append(ctx, domain.Actor{ID: "a2", DisplayName: "Ann", Role: domain.RoleProducer})
		if !errors.Is(err, domain.ErrDuplicateActor) {
			mt.Fatalf("expected ErrDuplicateActor, got %v", err)
		}
	})

	mt.Run("replace missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewActorRepository(mt.DB)

		if err := repo.Replace(ctx, domain.Actor{ID: "ghost"}); !errors.Is(err, domain.ErrActorNotFound) {
			mt.Fatalf("expected ErrActorNotFound, got %v", err)
		}
	})

	mt.Run("load all", func(mt *mtest.T) {
		created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "marketplace.actors", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "a1"},
				{Key: "display_name", Value: "Ann"},
				{Key: "role", Value: "producer"},
				{Key: "token_hash", Value: "abc"},
				{Key: "created_at", Value: created},
				{Key: "updated_at", Value: created},
			},
		))
		repo := NewActorRepository(mt.DB)

		actors, err := repo.LoadAll(ctx)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(actors) != 1 {
			mt.Fatalf("expected 1 actor, got %d", len(actors))
		}
		a := actors[0]
		if a.ID != "a1" || a.Role != domain.RoleProducer || a.TokenHash != "abc" || !a.CreatedAt.Equal(created) {
			mt.Errorf("unexpected actor %+v", a)
		}
	})
}

func TestListingRepository_LoadAllDecodesPrice(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decimal price", func(mt *mtest.T) {
		price, _ := primitive.ParseDecimal128("2.75")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "marketplace.listings", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "l1"},
				{Key: "owner_id", Value: "a1"},
				{Key: "name", Value: "Tomato"},
				{Key: "unit_price", Value: price},
				{Key: "total_quantity", Value: int64(12)},
				{Key: "created_at", Value: time.Now().UTC()},
			},
		))
		repo := NewListingRepository(mt.DB)

		listings, err := repo.LoadAll(context.Background())
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(listings) != 1 {
			mt.Fatalf("expected 1 listing, got %d", len(listings))
		}
		if !listings[0].UnitPrice.Equal(decimal.RequireFromString("2.75")) {
			mt.Errorf("price = %s", listings[0].UnitPrice)
		}
		if listings[0].TotalQuantity != 12 {
			mt.Errorf("quantity = %d", listings[0].TotalQuantity)
		}
	})

	mt.Run("append", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewListingRepository(mt.DB)

		err := repo.Append(context.Background(), domain.Listing{
			ID:            "l2",
			OwnerID:       "a1",
			Name:          "Kale",
			UnitPrice:     decimal.RequireFromString("3.10"),
			TotalQuantity: 4,
			CreatedAt:     time.Now().UTC(),
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("append failure is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Message: "shutdown in progress",
		}))
		repo := NewOrderRepository(mt.DB)

		err := repo.Append(context.Background(), domain.OrderRecord{ID: "o1", ListingID: "l1", BuyerID: "b1", Quantity: 1})
		if err == nil {
			mt.Fatal("expected an error")
		}
	})

	mt.Run("append of an already stored order succeeds", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewOrderRepository(mt.DB)

		err := repo.Append(context.Background(), domain.OrderRecord{ID: "o1", ListingID: "l1", BuyerID: "b1", Quantity: 1})
		if err != nil {
			mt.Fatalf("expected retry of a stored order to succeed, got %v", err)
		}
	})

	mt.Run("load all", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "marketplace.orders", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "o1"}, {Key: "listing_id", Value: "l1"}, {Key: "buyer_id", Value: "b1"}, {Key: "quantity", Value: int64(3)}},
			bson.D{{Key: "_id", Value: "o2"}, {Key: "listing_id", Value: "l1"}, {Key: "buyer_id", Value: "b2"}, {Key: "quantity", Value: int64(4)}},
		))
		repo := NewOrderRepository(mt.DB)

		orders, err := repo.LoadAll(context.Background())
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		var sum int64
		for _, o := range orders {
			sum += o.Quantity
		}
		if len(orders) != 2 || sum != 7 {
			mt.Errorf("unexpected orders %+v", orders)
		}
	})
}
