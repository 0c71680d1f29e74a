// Package bootstrap builds the stores, clients and engine shared by the
// api, worker and seeder binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stockroom/internal/adapters/db"
	"github.com/ammerola/stockroom/internal/adapters/memory"
	"github.com/ammerola/stockroom/internal/adapters/queue"
	redis_a "github.com/ammerola/stockroom/internal/adapters/redis_adapter"
	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/internal/core/services"
	"github.com/ammerola/stockroom/internal/pkg/config"
)

// Backend is an opened store behind the engine ports
type Backend struct {
	Driver string
	Stores ports.Stores
	Tx     ports.TxRunner
	Health ports.HealthChecker
	close  func()
}

// Close releases the backend's connections
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// DatabaseConfig maps the application config onto the postgres adapter's
func DatabaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

// OpenBackend connects the configured store driver, running migrations
// first when the driver is postgres and auto-migrate is on.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		store := memory.New(logger)
		return &Backend{
			Driver: config.DriverMemory,
			Stores: store.Stores(),
			Tx:     store,
			Health: store,
		}, nil

	case config.DriverPostgres, "":
		dbConfig := DatabaseConfig(cfg)

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations")
			err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
				DatabaseURL: dbConfig.URL(),
			}, logger, cfg.Database.MigrationRetries)
			if err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		logger.Info("connecting to database",
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Name),
		)
		database, err := db.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return &Backend{
			Driver: config.DriverPostgres,
			Stores: database.Stores(),
			Tx:     database,
			Health: database,
			close:  database.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Database.Driver)
	}
}

// NewRedisClient opens and pings the cache client
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// AsynqRedisOpt is the connection shared by the asynq client, inspector and server
func AsynqRedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
}

// EngineConfig maps the application config onto the engine's
func EngineConfig(cfg *config.Config) services.Config {
	return services.Config{
		OperationTimeout:     cfg.Engine.OperationTimeout,
		ReadRetries:          cfg.Engine.ReadRetries,
		RetryInitialInterval: cfg.Engine.RetryInitialInterval,
		RetryMaxInterval:     cfg.Engine.RetryMaxInterval,
		CacheTTL:             cfg.Engine.CacheTTL,
	}
}

// Extras are the optional collaborators of the engine. Nil fields are skipped.
type Extras struct {
	Redis redis.UniversalClient
	Queue queue.Enqueuer
}

// NewEngine builds the inventory engine over backend
func NewEngine(backend *Backend, cfg *config.Config, extras Extras, logger *slog.Logger) *services.InventoryEngine {
	opts := []services.Option{services.WithConfig(EngineConfig(cfg))}

	if extras.Redis != nil {
		opts = append(opts, services.WithCache(redis_a.NewCache(extras.Redis, cfg.Engine.CacheTTL, logger)))
	}
	if extras.Queue != nil {
		opts = append(opts, services.WithNotifier(
			queue.NewLowStockNotifier(extras.Queue, lowStockQueue(cfg), cfg.Asynq.UniqueWindow, logger),
		))
	}

	return services.NewInventoryEngine(backend.Stores, backend.Tx, logger, opts...)
}

// lowStockQueue prefers the critical queue when the worker listens on it
func lowStockQueue(cfg *config.Config) string {
	if _, ok := cfg.Asynq.Queues["critical"]; ok {
		return "critical"
	}
	return "default"
}
