// Package main boots the marketplace HTTP API.
//
// @title                       Marketplace API
// @version                     1.0
// @description                 Farm marketplace: producers list produce, consumers order it, nobody oversells.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/api"
	"github.com/harvestlink/marketplace-api/internal/api/handler"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
	"github.com/harvestlink/marketplace-api/internal/core/service"
	"github.com/harvestlink/marketplace-api/internal/infrastructure/db/memory"
	mongostore "github.com/harvestlink/marketplace-api/internal/infrastructure/db/mongo"
	pgstore "github.com/harvestlink/marketplace-api/internal/infrastructure/db/postgres"
	redisstore "github.com/harvestlink/marketplace-api/internal/infrastructure/db/redis"
	"github.com/harvestlink/marketplace-api/internal/infrastructure/messaging/rabbitmq"
	"github.com/harvestlink/marketplace-api/internal/infrastructure/queue"
	"github.com/harvestlink/marketplace-api/internal/pkg/config"
	"github.com/harvestlink/marketplace-api/pkg/logger"
)

const eventWorkers = 4

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("marketplace api stopped")
		fmt.Fprintf(os.Stderr, "marketplace-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Output:  os.Stdout,
		Service: "marketplace-api",
	})
	log.Info().Str("store", cfg.StoreDriver).Str("env", cfg.Env).Msg("service starting")

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeWithTimeout(log, "store", stores.Close)

	checks := map[string]handler.HealthCheck{"store": stores.Ping}

	var idempotency ports.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		idempotency = redisstore.NewIdempotencyStore(rdb, 0)
		checks["redis"] = redisstore.Pinger(rdb)
	}

	var events ports.EventPublisher
	if cfg.AMQP.URL != "" {
		conn, err := amqp.Dial(cfg.AMQP.URL)
		if err != nil {
			return fmt.Errorf("amqp dial: %w", err)
		}
		defer conn.Close()

		publisher, err := rabbitmq.NewPublisher(conn)
		if err != nil {
			return err
		}
		defer publisher.Close()

		dispatcher := queue.NewDispatcher(eventWorkers, publisher, log)
		dispatcher.Start()
		// Runs before the publisher and connection are closed.
		defer closeWithTimeout(log, "event dispatcher", dispatcher.Close)
		events = dispatcher
		checks["amqp"] = func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("amqp connection closed")
			}
			return nil
		}
	}

	identity := service.NewIdentityService(stores.Actors, cfg.TokenSecret, log)
	catalog := service.NewCatalog(stores.Listings, identity, log)
	ledger := service.NewLedger(stores.Orders)

	if err := identity.Load(ctx); err != nil {
		return fmt.Errorf("load actors: %w", err)
	}
	if err := catalog.Load(ctx); err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	if err := ledger.Load(ctx); err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Identity: identity,
		Catalog:  service.NewCatalogService(identity, catalog, ledger, events, log),
		Orders:   service.NewOrderService(identity, catalog, ledger, idempotency, events, log),
		Trends:   service.NewTrendsService(catalog, ledger),
		Checks:   checks,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("service stopped")
	return nil
}

// openStores connects the configured durable backend.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return ports.Stores{}, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return ports.Stores{}, err
		}
		return mongostore.NewStores(client, db), nil

	case config.StorePostgres:
		if cfg.Postgres.RunMigrations {
			if err := pgstore.RunMigrations(cfg.Postgres.DSN, log); err != nil {
				return ports.Stores{}, err
			}
		}
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return ports.Stores{}, err
		}
		return pgstore.NewStores(pool), nil

	default:
		log.Warn().Msg("memory store selected: data is lost on restart")
		return memory.NewStores(), nil
	}
}

func closeWithTimeout(log zerolog.Logger, name string, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		log.Error().Err(err).Str("component", name).Msg("close failed")
	}
}
