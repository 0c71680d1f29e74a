// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stockroom/internal/bootstrap"
	"github.com/ammerola/stockroom/internal/handlers"
	"github.com/ammerola/stockroom/internal/handlers/middleware"
	"github.com/ammerola/stockroom/internal/pkg/config"
	"github.com/ammerola/stockroom/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("stockroom %s (built %s, %s)\n", Version, BuildTime, GoVersion)
		return
	}

	// Initialize structured logger
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting stockroom inventory engine",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("store_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ApplySecrets(ctx, cfg, secrets); err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize dependencies
	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	backend        *bootstrap.Backend
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	router         *handlers.Router
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.backend != nil {
		d.backend.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	backend, err := bootstrap.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.backend = backend

	var extras bootstrap.Extras

	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis",
			slog.String("address", cfg.GetRedisAddress()),
		)
		client, err := bootstrap.NewRedisClient(ctx, cfg)
		if err != nil {
			deps.cleanup()
			return nil, err
		}
		deps.redisClient = client
		extras.Redis = client
	}

	if cfg.Asynq.Enabled {
		logger.Info("initializing Asynq client", slog.String("address", cfg.Asynq.RedisAddr))
		deps.asynqClient = asynq.NewClient(bootstrap.AsynqRedisOpt(cfg))
		deps.asynqInspector = asynq.NewInspector(bootstrap.AsynqRedisOpt(cfg))
		extras.Queue = deps.asynqClient
	}

	engine := bootstrap.NewEngine(backend, cfg, extras, logger)

	// The health handler treats a nil interface as "not configured"
	var healthRedis redis.UniversalClient
	if deps.redisClient != nil {
		healthRedis = deps.redisClient
	}

	deps.router = &handlers.Router{
		Items:     handlers.NewItemHandler(engine, logger),
		Locations: handlers.NewLocationHandler(engine, logger),
		Ledger:    handlers.NewLedgerHandler(engine, logger),
		Health:    handlers.NewHealthHandler(backend.Health, healthRedis, deps.asynqInspector, cfg, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	deps.router.Register(mux)

	// Outermost first
	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	}
	if cfg.Security.SecureHeaders {
		middlewares = append(middlewares, middleware.SecureHeaders)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		middlewares = append(middlewares, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.RateLimitRequests > 0 {
		middlewares = append(middlewares, middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, middlewares...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
