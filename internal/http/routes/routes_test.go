package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/spimex-results/cache"
	"github.com/briangreenhill/spimex-results/internal/trading"
)

// tableSource answers queries from a fixed slice of trades
type tableSource struct {
	trades []trading.Trade
	err    error
	calls  int
}

func (ts *tableSource) LastDates(_ context.Context, limit int) ([]trading.Date, error) {
	ts.calls++
	if ts.err != nil {
		return nil, ts.err
	}
	seen := map[string]bool{}
	var dates []trading.Date
	for _, t := range ts.trades {
		if !seen[t.Date.String()] {
			seen[t.Date.String()] = true
			dates = append(dates, t.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

func (ts *tableSource) Dynamics(_ context.Context, q trading.DynamicsQuery) ([]trading.Trade, error) {
	ts.calls++
	if ts.err != nil {
		return nil, ts.err
	}
	var out []trading.Trade
	for _, t := range ts.trades {
		if q.Contains(t.Date) && q.Filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (ts *tableSource) TradingResults(_ context.Context, f trading.Filter, limit int) ([]trading.Trade, error) {
	ts.calls++
	if ts.err != nil {
		return nil, ts.err
	}
	var out []trading.Trade
	for _, t := range ts.trades {
		if f.Matches(t) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *tableSource) {
	t.Helper()
	src := &tableSource{trades: []trading.Trade{
		{ProductID: "A100ANK060F", OilID: "A100", DeliveryID: "ANK", DeliveryType: "F", Date: trading.NewDate(2025, 1, 22)},
		{ProductID: "B400ANK060F", OilID: "A101", DeliveryID: "AAA", DeliveryType: "A", Date: trading.NewDate(2025, 2, 10)},
	}}
	svc := trading.NewService(src, cache.NewMemoryStore(time.Minute))
	s := New(ServerOptions{Results: svc, Logger: zerolog.Nop()})
	return s, src
}

func get(t *testing.T, s *Server, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDynamics(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		status int
		count  int
		detail string
	}{
		{
			name: "all filters",
			params: url.Values{
				"oil_id": {"A100"}, "delivery_id": {"ANK"}, "delivery_type": {"F"},
				"start_date": {"2025-01-01"}, "end_date": {"2025-03-01"},
			},
			status: http.StatusOK,
			count:  1,
		},
		{
			name:   "single filter",
			params: url.Values{"oil_id": {"A101"}, "start_date": {"2025-02-01"}, "end_date": {"2025-02-20"}},
			status: http.StatusOK,
			count:  1,
		},
		{
			name: "inverted range",
			params: url.Values{
				"oil_id": {"A101"}, "delivery_id": {"AAA"}, "delivery_type": {"A"},
				"start_date": {"2025-02-05"}, "end_date": {"2025-02-01"},
			},
			status: http.StatusBadRequest,
			detail: "Validation error: Incorrect date",
		},
		{
			name:   "no matching trades",
			params: url.Values{"start_date": {"2024-01-01"}, "end_date": {"2024-02-01"}},
			status: http.StatusNotFound,
			detail: "Data not found",
		},
		{
			name:   "missing end date",
			params: url.Values{"start_date": {"2025-01-01"}},
			status: http.StatusUnprocessableEntity,
			detail: "end_date: field required",
		},
		{
			name:   "malformed date",
			params: url.Values{"start_date": {"01.01.2025"}, "end_date": {"2025-03-01"}},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := get(t, s, "/results/dynamics", tt.params)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Len(t, decodeList(t, rec), tt.count)
				return
			}
			if tt.detail != "" {
				assert.Equal(t, tt.detail, detail(t, rec))
			}
		})
	}
}

func TestLastDates(t *testing.T) {
	tests := []struct {
		countDay string
		status   int
		count    int
	}{
		{"1", http.StatusOK, 1},
		{"2", http.StatusOK, 2},
		{"3", http.StatusOK, 2},
		{"0", http.StatusUnprocessableEntity, 0},
		{"61", http.StatusUnprocessableEntity, 0},
		{"two", http.StatusUnprocessableEntity, 0},
		{"", http.StatusUnprocessableEntity, 0},
	}

	for _, tt := range tests {
		t.Run("count_day="+tt.countDay, func(t *testing.T) {
			s, src := newTestServer(t)
			rec := get(t, s, "/results/last-dates", url.Values{"count_day": {tt.countDay}})

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, detail(t, rec))
				assert.Zero(t, src.calls)
				return
			}
			body := decodeList(t, rec)
			assert.Len(t, body, tt.count)
			assert.Equal(t, "2025-02-10", body[0]["date"])
		})
	}
}

func TestLastDatesOrder(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/results/last-dates", url.Values{"count_day": {"2"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"2025-02-10"},{"date":"2025-01-22"}]`, rec.Body.String())
}

func TestTradingResult(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/results/trading-result", url.Values{"oil_id": {"A100"}, "delivery_id": {"ANK"}, "delivery_type": {"F"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeList(t, rec)
	require.Len(t, body, 1)
	assert.Equal(t, map[string]any{
		"product_id":    "A100ANK060F",
		"oil_id":        "A100",
		"delivery_id":   "ANK",
		"delivery_type": "F",
		"date":          "2025-01-22",
	}, body[0])

	rec = get(t, s, "/results/trading-result", url.Values{"oil_id": {"A100"}, "delivery_id": {"ANK"}, "delivery_type": {"FF"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "With input params trades not found", detail(t, rec))
}

func TestTradingResultEmptyParamIsNoFilter(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/results/trading-result", url.Values{"oil_id": {""}, "delivery_type": {""}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)
}

func TestTradingResultFilterIsMatchedLiterally(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/results/trading-result", url.Values{"oil_id": {" A100"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "With input params trades not found", detail(t, rec))

	rec = get(t, s, "/results/trading-result", url.Values{"oil_id": {strings.Repeat("A", 65)}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepeatedRequestIsServedFromCache(t *testing.T) {
	s, src := newTestServer(t)
	params := url.Values{"oil_id": {"A100"}}

	first := get(t, s, "/results/trading-result", params)
	second := get(t, s, "/results/trading-result", params)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, src.calls)
}

func TestSourceFailureIsInternalError(t *testing.T) {
	s, src := newTestServer(t)
	src.err = errors.New("connection reset by peer")

	rec := get(t, s, "/results/trading-result", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", detail(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s.Checks = map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"cache":    func(context.Context) error { return errors.New("dial tcp: connection refused") },
	}
	rec = get(t, s, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, map[string]string{"cache": "dial tcp: connection refused"}, body.Failed)
}

func TestMetricsRouteIsOptional(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/metrics", nil).Code)

	s = New(ServerOptions{
		Results: s.Results,
		Logger:  zerolog.Nop(),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
	rec := get(t, s, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
