package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gallerytab/server/internal/config"
	"github.com/gallerytab/server/internal/fetch"
	"github.com/gallerytab/server/internal/history"
	"github.com/gallerytab/server/internal/settings"
	"github.com/gallerytab/server/internal/sources"
	"github.com/gallerytab/server/internal/storage"
	"github.com/gallerytab/server/internal/storage/memory"
	"github.com/gallerytab/server/internal/storage/postgres"
	"github.com/gallerytab/server/internal/storage/redis"
)

// loadConfig reads configuration and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// app holds the constructed service graph shared by serve, fetch, history,
// and sources commands.
type app struct {
	store    storage.Store
	registry *sources.Registry
	settings *settings.Service
	history  *history.Store
	fetcher  *fetch.Fetcher

	cleanup func()
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	store, cleanup, err := newStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	registry := sources.NewRegistry()
	settingsService := settings.NewService(store, logger)
	historyStore := history.New(store, logger)
	historyStore.Load(ctx)

	fetcher := fetch.New(registry, settingsService, nil, fetch.Config{
		MaxAttempts:       cfg.Fetch.MaxAttempts,
		RequestTimeout:    cfg.Fetch.RequestTimeout,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		BaseBackoff:       cfg.Fetch.BaseBackoff,
		MaxBackoff:        cfg.Fetch.MaxBackoff,
	}, logger)

	return &app{
		store:    store,
		registry: registry,
		settings: settingsService,
		history:  historyStore,
		fetcher:  fetcher,
		cleanup:  cleanup,
	}, nil
}

// close flushes pending history writes and releases the store.
func (a *app) close() {
	a.history.Flush()
	if a.cleanup != nil {
		a.cleanup()
	}
}

func newStore(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (storage.Store, func(), error) {
	switch cfg.Driver {
	case "postgres":
		if err := postgres.MigrateUp(cfg.DatabaseURL, postgres.DefaultMigrationsPath); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		poolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.New(poolCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		store, err := postgres.New(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info().Str("driver", "postgres").Msg("storage ready")
		return store, pool.Close, nil

	case "redis":
		store, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info().Str("driver", "redis").Str("addr", cfg.RedisAddr).Msg("storage ready")
		return store, func() { _ = store.Close() }, nil

	case "memory":
		logger.Warn().Msg("using in-memory storage; history and settings will not survive restarts")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
