package trading

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/spimex-results/cache"
	"github.com/briangreenhill/spimex-results/internal/metrics"
)

// Service answers the trading queries, reading through the cache store and
// falling back to the record source on a miss. Store faults never reach the
// caller; only ValidationError, NotFoundError and SourceError do.
type Service struct {
	source  Source
	store   cache.Store
	keys    Keys
	cutoff  cache.Cutoff
	now     func() time.Time
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service
type Option func(*Service)

// WithCutoff sets the daily expiry time of cached entries
func WithCutoff(c cache.Cutoff) Option {
	return func(s *Service) { s.cutoff = c }
}

// WithKeyPrefix namespaces the cache keys
func WithKeyPrefix(prefix string) Option {
	return func(s *Service) { s.keys = NewKeys(prefix) }
}

// WithClock replaces time.Now when computing expiry instants
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger for store faults and cache hits and misses
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics records lookups, store errors and source calls on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires a service to its source and store. Both are owned by the caller.
func NewService(source Source, store cache.Store, opts ...Option) *Service {
	s := &Service{
		source: source,
		store:  store,
		keys:   NewKeys(cache.DefaultPrefix),
		cutoff: cache.DefaultCutoff(),
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys exposes the key deriver the service writes with
func (s *Service) Keys() Keys {
	return s.keys
}

// GetLastDates returns up to count distinct trading days, newest first
func (s *Service) GetLastDates(ctx context.Context, count int) ([]LastDate, error) {
	q := LastDatesQuery{Count: count}
	if err := q.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	return readThrough(ctx, s, QueryLastDates, s.keys.LastDates(count), MsgDataNotFound,
		func(ctx context.Context) ([]LastDate, error) {
			dates, err := s.source.LastDates(ctx, count)
			if err != nil {
				return nil, err
			}
			out := make([]LastDate, 0, len(dates))
			for _, d := range dates {
				out = append(out, LastDate{Date: d})
			}
			return out, nil
		})
}

// GetDynamics returns the trades in [StartDate, EndDate] matching the filter
func (s *Service) GetDynamics(ctx context.Context, q DynamicsQuery) ([]Trade, error) {
	if err := q.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := q.CheckRange(); err != nil {
		return nil, err
	}

	return readThrough(ctx, s, QueryDynamics, s.keys.Dynamics(q), MsgDataNotFound,
		func(ctx context.Context) ([]Trade, error) {
			return s.source.Dynamics(ctx, q)
		})
}

// GetTradingResult returns up to TradingResultLimit trades matching the
// filter. The order is whatever the source returns.
func (s *Service) GetTradingResult(ctx context.Context, f Filter) ([]Trade, error) {
	if err := f.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	return readThrough(ctx, s, QueryTradingResult, s.keys.TradingResult(f), MsgTradesNotFound,
		func(ctx context.Context) ([]Trade, error) {
			return s.source.TradingResults(ctx, f, TradingResultLimit)
		})
}

func readThrough[T any](ctx context.Context, s *Service, query, key, notFound string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	log := s.log.With().Str("query", query).Str("key", key).Logger()

	if items, ok := readCached[T](ctx, s, log, query, key); ok {
		return items, nil
	}

	items, err := fetch(ctx)
	if err != nil {
		s.metrics.SourceQuery(query, "error")
		return nil, &SourceError{Query: query, Err: err}
	}
	if len(items) == 0 {
		s.metrics.SourceQuery(query, "empty")
		return nil, &NotFoundError{Message: notFound}
	}
	s.metrics.SourceQuery(query, "ok")

	s.writeCached(ctx, log, key, items)
	return items, nil
}

// readCached returns ok=false for anything but a decodable, non-empty payload
func readCached[T any](ctx context.Context, s *Service, log zerolog.Logger, query, key string) ([]T, bool) {
	payload, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrCacheNotFound):
		s.metrics.Lookup(query, metrics.OutcomeMiss)
		log.Debug().Msg("cache miss")
		return nil, false
	case err != nil:
		s.metrics.StoreError("get")
		s.metrics.Lookup(query, metrics.OutcomeMiss)
		log.Warn().Err(err).Msg("cache read failed, querying source")
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil || len(items) == 0 {
		s.metrics.Lookup(query, metrics.OutcomeCorrupt)
		log.Warn().Err(err).Int("bytes", len(payload)).Msg("discarding unreadable cache entry")
		return nil, false
	}

	s.metrics.Lookup(query, metrics.OutcomeHit)
	log.Debug().Int("items", len(items)).Msg("cache hit")
	return items, true
}

func (s *Service) writeCached(ctx context.Context, log zerolog.Logger, key string, items any) {
	payload, err := json.Marshal(items)
	if err != nil {
		log.Warn().Err(err).Msg("encode cache entry")
		return
	}

	expiresAt := s.cutoff.Next(s.now())

	if w, ok := s.store.(cache.ExpiringWriter); ok {
		if err := w.SetUntil(ctx, key, payload, expiresAt); err != nil {
			s.metrics.StoreError("set")
			log.Warn().Err(err).Msg("cache write failed")
		}
		return
	}

	if err := s.store.Set(ctx, key, payload); err != nil {
		s.metrics.StoreError("set")
		log.Warn().Err(err).Msg("cache write failed")
		return
	}
	if err := s.store.ExpireAt(ctx, key, expiresAt); err != nil {
		s.metrics.StoreError("expire")
		log.Warn().Err(err).Time("expires_at", expiresAt).Msg("cache expiry failed")
	}
}
