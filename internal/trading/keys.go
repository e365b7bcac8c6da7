package trading

import (
	"strconv"

	"github.com/briangreenhill/spimex-results/cache"
)

// Query names, used as key namespaces and metric labels
const (
	QueryLastDates     = "last_dates"
	QueryDynamics      = "dynamics"
	QueryTradingResult = "trading_result"
)

// Keys derives the cache key of each query shape
type Keys struct {
	gen cache.KeyGenerator
}

// NewKeys returns a deriver whose keys start with prefix
func NewKeys(prefix string) Keys {
	return Keys{gen: cache.NewKeyGenerator(prefix)}
}

// LastDates keys are readable since the parameter is a small integer
func (k Keys) LastDates(count int) string {
	return k.gen.Plain(QueryLastDates, strconv.Itoa(count))
}

// Dynamics keys hash the filter fields and both dates
func (k Keys) Dynamics(q DynamicsQuery) string {
	start, end := q.StartDate.String(), q.EndDate.String()
	return k.gen.Hashed(QueryDynamics, q.Filter.OilID, q.Filter.DeliveryID, q.Filter.DeliveryType, &start, &end)
}

// TradingResult keys hash the filter fields
func (k Keys) TradingResult(f Filter) string {
	return k.gen.Hashed(QueryTradingResult, f.OilID, f.DeliveryID, f.DeliveryType)
}
