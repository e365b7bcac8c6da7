package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/spimex-results/internal/http/middleware"
	"github.com/briangreenhill/spimex-results/internal/trading"
)

// Results is the query surface the handlers call into
type Results interface {
	GetLastDates(ctx context.Context, count int) ([]trading.LastDate, error)
	GetDynamics(ctx context.Context, q trading.DynamicsQuery) ([]trading.Trade, error)
	GetTradingResult(ctx context.Context, f trading.Filter) ([]trading.Trade, error)
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Server holds the router and what the handlers depend on
type Server struct {
	Router  *chi.Mux
	Results Results
	Checks  map[string]HealthCheck
}

// ServerOptions configures New
type ServerOptions struct {
	Results Results
	Logger  zerolog.Logger
	Metrics http.Handler // optional, served on /metrics
	Checks  map[string]HealthCheck
}

const healthTimeout = 2 * time.Second

// New builds the router with logging and recovery middleware
func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Results: opts.Results, Checks: opts.Checks}

	r.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/results", func(rr chi.Router) {
		rr.Get("/last-dates", s.handleLastDates)
		rr.Get("/dynamics", s.handleDynamics)
		rr.Get("/trading-result", s.handleTradingResult)
	})

	return s
}

func (s *Server) handleLastDates(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("count_day"))
	if raw == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "count_day: field required")
		return
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "count_day: must be an integer")
		return
	}
	if err := (trading.LastDatesQuery{Count: count}).Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	dates, err := s.Results.GetLastDates(r.Context(), count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (s *Server) handleDynamics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := requiredDate(q.Get("start_date"), "start_date")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	end, err := requiredDate(q.Get("end_date"), "end_date")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	dq := trading.DynamicsQuery{Filter: filterFrom(r), StartDate: start, EndDate: end}
	if err := dq.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	trades, err := s.Results.GetDynamics(r.Context(), dq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleTradingResult(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r)
	if err := f.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	trades, err := s.Results.GetTradingResult(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.Checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		hlog.FromRequest(r).Warn().Interface("failed", failed).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok")); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
	}
}

// writeError maps the query layer's error taxonomy onto status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case trading.IsValidation(err):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case trading.IsNotFound(err):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("query failed")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func filterFrom(r *http.Request) trading.Filter {
	q := r.URL.Query()
	return trading.Filter{
		OilID:        optional(q.Get("oil_id")),
		DeliveryID:   optional(q.Get("delivery_id")),
		DeliveryType: optional(q.Get("delivery_type")),
	}
}

// optional treats a missing or empty parameter as no filter. Values are matched literally.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func requiredDate(raw, name string) (trading.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return trading.Date{}, fmt.Errorf("%s: field required", name)
	}
	d, err := trading.ParseDate(raw)
	if err != nil {
		return trading.Date{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
