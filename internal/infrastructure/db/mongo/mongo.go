package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionActors   = "actors"
	collectionListings = "listings"
	collectionOrders   = "orders"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// NewStores wires the actor, listing and order collections of db into a
// store bundle. Close disconnects client.
func NewStores(client *mongo.Client, db *mongo.Database) ports.Stores {
	return ports.Stores{
		Actors:   NewActorRepository(db),
		Listings: NewListingRepository(db),
		Orders:   NewOrderRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// identity index backs ErrDuplicateActor.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collectionActors: {
			{
				Keys:    bsonKeys("role", "display_name"),
				Options: options.Index().SetUnique(true).SetName("uniq_role_display_name"),
			},
		},
		collectionListings: {
			{Keys: bsonKeys("owner_id")},
			{Keys: bsonKeys("created_at")},
		},
		collectionOrders: {
			{Keys: bsonKeys("listing_id")},
			{Keys: bsonKeys("buyer_id")},
			{Keys: bsonKeys("placed_at")},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
