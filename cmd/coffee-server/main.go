// Package main is the entrypoint for the coffee API server.
package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/coffeelog/coffee/internal/auth"
	"github.com/coffeelog/coffee/internal/cache"
	"github.com/coffeelog/coffee/internal/config"
	"github.com/coffeelog/coffee/internal/handler"
	"github.com/coffeelog/coffee/internal/metrics"
	"github.com/coffeelog/coffee/internal/migrations"
	"github.com/coffeelog/coffee/internal/repository"
	"github.com/coffeelog/coffee/internal/server"
	"github.com/coffeelog/coffee/internal/service"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := initLogger(cfg)

	keys, err := auth.NewKeyGenerator(cfg.KeyAlgorithm)
	if err != nil {
		logger.Error("invalid key algorithm", "algorithm", cfg.KeyAlgorithm, "error", err)
		return err
	}

	if err := migrations.Run(ctx, cfg.DatabaseURL, cfg.MigrateOnStart); err != nil {
		logger.Error("database schema not ready",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.Bool("migrate_on_start", cfg.MigrateOnStart),
		)
		return err
	}
	logger.Info("database schema verified", "migrated", cfg.MigrateOnStart)

	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	// The key cache is optional; a nil KeyCache makes the service go to the store.
	var (
		keyCache    service.KeyCache
		cacheHealth handler.HealthChecker
		redisCache  *cache.Cache
	)
	if cfg.CacheEnabled() {
		redisCache, err = cache.New(ctx, cfg.RedisURL, cfg.AuthCacheTTL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			return err
		}
		keyCache = redisCache
		cacheHealth = redisCache
		logger.Info("connected to Redis", "owner_ttl", redisCache.OwnerTTL())
	} else {
		logger.Info("key cache disabled")
	}

	recorder := metrics.NewPrometheus()

	users := repository.NewUserStore(repo, keys)
	coffees := repository.NewCoffeeStore(repo)
	svc := service.NewCoffeeService(users, coffees, keyCache, recorder, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Service:            svc,
		Logger:             logger,
		Metrics:            recorder,
		Gatherer:           recorder.Registry(),
		DB:                 repo,
		Cache:              cacheHealth,
		IsDevelopment:      cfg.IsDevelopment(),
		AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// LIFO: Redis closes before the pool.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if redisCache != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return redisCache.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"key_algorithm", keys.Algorithm(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}
