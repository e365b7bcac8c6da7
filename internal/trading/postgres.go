package trading

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/briangreenhill/spimex-results/internal/db"
)

// PostgresSource reads trading results through the generated queries
type PostgresSource struct {
	q *db.Queries
}

// NewPostgresSource creates a source on top of a pool, connection or transaction
func NewPostgresSource(conn db.DBTX) *PostgresSource {
	return &PostgresSource{q: db.New(conn)}
}

// LastDates implements Source interface
func (ps *PostgresSource) LastDates(ctx context.Context, limit int) ([]Date, error) {
	rows, err := ps.q.ListLastTradingDates(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list last trading dates: %w", err)
	}
	dates := make([]Date, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, fromPgDate(r))
	}
	return dates, nil
}

// Dynamics implements Source interface
func (ps *PostgresSource) Dynamics(ctx context.Context, q DynamicsQuery) ([]Trade, error) {
	rows, err := ps.q.ListDynamics(ctx, db.ListDynamicsParams{
		StartDate:       toPgDate(q.StartDate),
		EndDate:         toPgDate(q.EndDate),
		OilID:           toPgText(q.Filter.OilID),
		DeliveryBasisID: toPgText(q.Filter.DeliveryID),
		DeliveryTypeID:  toPgText(q.Filter.DeliveryType),
	})
	if err != nil {
		return nil, fmt.Errorf("list dynamics: %w", err)
	}
	return fromRows(rows), nil
}

// TradingResults implements Source interface
func (ps *PostgresSource) TradingResults(ctx context.Context, f Filter, limit int) ([]Trade, error) {
	rows, err := ps.q.ListTradingResults(ctx, db.ListTradingResultsParams{
		OilID:           toPgText(f.OilID),
		DeliveryBasisID: toPgText(f.DeliveryID),
		DeliveryTypeID:  toPgText(f.DeliveryType),
		RowLimit:        int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list trading results: %w", err)
	}
	return fromRows(rows), nil
}

func fromRows(rows []db.SpimexTradingResult) []Trade {
	trades := make([]Trade, 0, len(rows))
	for _, r := range rows {
		trades = append(trades, Trade{
			ProductID:    r.ExchangeProductID,
			OilID:        r.OilID,
			DeliveryID:   r.DeliveryBasisID,
			DeliveryType: r.DeliveryTypeID,
			Date:         fromPgDate(r.Date),
		})
	}
	return trades
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func toPgDate(d Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPgDate(d pgtype.Date) Date {
	if !d.Valid {
		return Date{}
	}
	return DateOf(d.Time)
}
