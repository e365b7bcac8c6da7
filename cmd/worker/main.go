package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/briangreenhill/spimex-results/internal/app"
	"github.com/briangreenhill/spimex-results/internal/config"
	"github.com/briangreenhill/spimex-results/internal/jobs"
	"github.com/briangreenhill/spimex-results/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		l := logging.New(os.Stderr, "error")
		l.Error().Err(err).Msg("worker exited")
		stop()
		os.Exit(1)
	}
}

// run processes warm-up tasks and keeps the daily schedule registered until ctx is cancelled
func run(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(out, cfg.LogLevel).With().Str("bin", "worker").Logger()

	if cfg.Cache.Backend == config.BackendMemory {
		logger.Warn().Msg("memory cache backend is process-local; warm-up will not reach the api")
	}

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close(logger)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Warm.Concurrency,
		Queues: map[string]int{
			jobs.QueueCache: 10,
			"default":       5,
		},
		Logger:   asynqLogger{logger.With().Str("component", "asynq").Logger()},
		LogLevel: asynq.WarnLevel,
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskWarmCache, &jobs.WarmHandler{
		Warmer: a.Service,
		Log:    logger.With().Str("task", jobs.TaskWarmCache).Logger(),
	})

	loc := cfg.Cache.Cutoff.Location
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   asynqLogger{logger.With().Str("component", "scheduler").Logger()},
		LogLevel: asynq.WarnLevel,
	})
	task, err := jobs.NewWarmCacheTask(jobs.WarmCachePayload{LastDates: cfg.Warm.LastDates})
	if err != nil {
		return err
	}
	cron := jobs.CronSpec(cfg.Cache.Cutoff, cfg.Warm.Delay)
	entryID, err := scheduler.Register(cron, task)
	if err != nil {
		return fmt.Errorf("register warm schedule %q: %w", cron, err)
	}
	logger.Info().Str("cron", cron).Str("tz", loc.String()).Str("entry", entryID).Msg("warm-up scheduled")

	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}
	defer scheduler.Shutdown()
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("worker start: %w", err)
	}
	defer srv.Shutdown()
	logger.Info().Msg("worker running")

	<-ctx.Done()
	logger.Info().Msg("shutdown initiated")
	return nil
}
