// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briangreenhill/spimex-results/internal/app"
	"github.com/briangreenhill/spimex-results/internal/config"
	"github.com/briangreenhill/spimex-results/internal/http/routes"
	"github.com/briangreenhill/spimex-results/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		l := logging.New(os.Stderr, "error")
		l.Error().Err(err).Msg("api exited")
		stop()
		os.Exit(1)
	}
}

// run serves the api until ctx is cancelled
func run(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Logger
	logger := logging.New(out, cfg.LogLevel).With().Str("bin", "api").Logger()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close(logger)

	// Router / server
	s := routes.New(routes.ServerOptions{
		Results: a.Service,
		Logger:  logger,
		Metrics: a.Metrics.Handler(),
		Checks: map[string]routes.HealthCheck{
			"postgres": a.Pool.Ping,
			"cache":    a.PingStore,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("cutoff", cfg.Cache.Cutoff.String()).Msg("starting api")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
	}
	logger.Info().Msg("api stopped")
	return nil
}
