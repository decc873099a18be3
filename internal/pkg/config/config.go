package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	TokenSecret     string        `env:"TOKEN_SECRET,     required"`
	StoreDriver     string        `env:"STORE_DRIVER,     default=memory"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type PostgresConfig struct {
	DSN           string `env:"POSTGRES_DSN"`
	RunMigrations bool   `env:"RUN_MIGRATIONS, default=true"`
}

// RedisConfig is optional; an empty Addr keeps idempotency keys in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// AMQPConfig is optional; an empty URL disables event publishing.
type AMQPConfig struct {
	URL string `env:"AMQP_URL"`
}

// Production reports whether logs should be emitted as plain JSON.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
