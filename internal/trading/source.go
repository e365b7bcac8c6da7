package trading

import "context"

// Source is the authoritative store of trading results queried on a cache miss
type Source interface {
	// LastDates returns up to limit distinct trading days, newest first
	LastDates(ctx context.Context, limit int) ([]Date, error)
	// Dynamics returns the trades within the query's date range matching its filter
	Dynamics(ctx context.Context, q DynamicsQuery) ([]Trade, error)
	// TradingResults returns up to limit trades matching the filter, in source order
	TradingResults(ctx context.Context, f Filter, limit int) ([]Trade, error)
}
