// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/briangreenhill/spimex-results/cache"
)

// Cache backends
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Cache CacheConfig
	Redis RedisConfig
	Warm  WarmConfig
}

// CacheConfig controls key naming and daily expiry
type CacheConfig struct {
	Backend  string       `env:"CACHE_BACKEND" envDefault:"redis"`
	Prefix   string       `env:"CACHE_PREFIX" envDefault:"spimex"`
	Cutoff   cache.Cutoff `env:"CACHE_CUTOFF" envDefault:"14:11"`
	Timezone string       `env:"CACHE_TZ" envDefault:"Local"`
}

// RedisConfig locates the redis used by the cache store and asynq
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// WarmConfig drives the worker's post-cutoff cache warm-up
type WarmConfig struct {
	LastDates   []int         `env:"WARM_LAST_DATES" envDefault:"1,5,10,30" envSeparator:","`
	Delay       time.Duration `env:"WARM_DELAY" envDefault:"5m"`
	Concurrency int           `env:"WORKER_CONCURRENCY" envDefault:"2"`
}

// Load reads configuration from environment variables and validates it.
// The cutoff comes back resolved in CACHE_TZ.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return Config{}, err
	}
	cfg.Cache.Cutoff = cfg.Cache.Cutoff.In(loc)
	return cfg, nil
}

// Location resolves CACHE_TZ
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Cache.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TZ %q: %w", c.Cache.Timezone, err)
	}
	return loc, nil
}

// Validate checks values env tags cannot express
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, c.Cache.Backend)
	}
	if err := c.Cache.Cutoff.Validate(); err != nil {
		return fmt.Errorf("invalid CACHE_CUTOFF: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, n := range c.Warm.LastDates {
		if n < 1 || n > 60 {
			return fmt.Errorf("WARM_LAST_DATES entries must be between 1-60, got %d", n)
		}
	}
	if c.Warm.Delay < 0 {
		return fmt.Errorf("WARM_DELAY must not be negative, got %s", c.Warm.Delay)
	}
	if c.Warm.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.Warm.Concurrency)
	}
	return nil
}
