package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/spimex-results/cache"
	"github.com/briangreenhill/spimex-results/internal/trading"
)

// Warmer is the part of trading.Service the warm-up drives
type Warmer interface {
	GetLastDates(ctx context.Context, count int) ([]trading.LastDate, error)
	GetTradingResult(ctx context.Context, f trading.Filter) ([]trading.Trade, error)
}

// WarmHandler re-populates common keys through the normal read-through path
// once the previous day's entries have expired.
type WarmHandler struct {
	Warmer Warmer
	Log    zerolog.Logger
}

// ProcessTask implements asynq.Handler
func (h *WarmHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p WarmCachePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.Log.Error().Err(err).Msg("bad warm payload")
		return fmt.Errorf("unmarshal warm payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.Log.With().Str("run_id", uuid.NewString()).Logger()
	log.Info().Ints("last_dates", p.LastDates).Msg("cache warm start")
	start := time.Now()

	var failed int
	for _, count := range p.LastDates {
		_, err := h.Warmer.GetLastDates(ctx, count)
		if done := h.record(log.With().Int("count_day", count).Logger(), trading.QueryLastDates, err); !done {
			failed++
		}
	}
	_, err := h.Warmer.GetTradingResult(ctx, trading.Filter{})
	if done := h.record(log, trading.QueryTradingResult, err); !done {
		failed++
	}

	duration := time.Since(start)
	if failed > 0 {
		log.Warn().Int("failed", failed).Dur("duration", duration).Msg("cache warm incomplete")
		return fmt.Errorf("cache warm: %d queries failed", failed)
	}
	log.Info().Dur("duration", duration).Msg("cache warm done")
	return nil
}

// record logs one warm query. Only source failures are worth a retry: an
// empty table or a rejected count will not change on the next attempt.
func (h *WarmHandler) record(log zerolog.Logger, query string, err error) bool {
	switch {
	case err == nil:
		log.Debug().Str("query", query).Msg("warmed")
		return true
	case trading.IsNotFound(err):
		log.Info().Str("query", query).Msg("nothing to warm")
		return true
	case trading.IsValidation(err):
		log.Warn().Err(err).Str("query", query).Msg("skipping invalid warm query")
		return true
	default:
		log.Error().Err(err).Str("query", query).Msg("warm query failed")
		return false
	}
}

// CronSpec returns the daily schedule for the warm-up: delay after the
// cutoff, wrapped around midnight.
func CronSpec(c cache.Cutoff, delay time.Duration) string {
	at := time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute + delay
	minutes := int(at/time.Minute) % (24 * 60)
	return fmt.Sprintf("%d %d * * *", minutes%60, minutes/60)
}
