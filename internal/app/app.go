// Package app opens the clients both binaries share and builds the cached
// query service on top of them.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/spimex-results/cache"
	"github.com/briangreenhill/spimex-results/internal/config"
	"github.com/briangreenhill/spimex-results/internal/db"
	"github.com/briangreenhill/spimex-results/internal/metrics"
	"github.com/briangreenhill/spimex-results/internal/trading"
)

const (
	connectTimeout      = 10 * time.Second
	memoryCleanupPeriod = 10 * time.Minute
)

// App owns every long-lived client. Close releases them.
type App struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client // nil with the memory backend
	Store    cache.Store
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Service  *trading.Service
}

// Open connects to Postgres and the configured cache backend, applies the
// schema and wires the service.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	a := &App{Pool: pool}

	switch cfg.Cache.Backend {
	case config.BackendMemory:
		a.Store = cache.NewMemoryStore(memoryCleanupPeriod)
		log.Info().Msg("using in-memory cache store")
	default:
		rdb, err := cache.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			pool.Close()
			return nil, err
		}
		a.Redis = rdb
		a.Store = cache.NewRedisStore(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("using redis cache store")
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	a.Service = trading.NewService(
		trading.NewPostgresSource(pool),
		a.Store,
		trading.WithCutoff(cfg.Cache.Cutoff),
		trading.WithKeyPrefix(cfg.Cache.Prefix),
		trading.WithLogger(log.With().Str("component", "trading").Logger()),
		trading.WithMetrics(a.Metrics),
	)
	return a, nil
}

// PingStore checks the cache store when it supports pings
func (a *App) PingStore(ctx context.Context) error {
	if p, ok := a.Store.(cache.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the redis client and the pool
func (a *App) Close(log zerolog.Logger) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
	a.Pool.Close()
}
