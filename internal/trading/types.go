// Package trading implements the cached queries over SPIMEX trading results:
// the last trading dates, trade dynamics over a date range and the latest
// trading results, each read through a store that expires at a daily cutoff.
package trading

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// MaxLastDates bounds the number of dates a last dates query may ask for
	MaxLastDates = 60
	// TradingResultLimit caps the trading result query
	TradingResultLimit = 40
)

// Trade is one row of the trading results table
type Trade struct {
	ProductID    string `json:"product_id"`
	OilID        string `json:"oil_id"`
	DeliveryID   string `json:"delivery_id"`
	DeliveryType string `json:"delivery_type"`
	Date         Date   `json:"date"`
}

// LastDate is one distinct trading day
type LastDate struct {
	Date Date `json:"date"`
}

// Filter narrows trades by equality on each present field. Nil fields impose no constraint.
type Filter struct {
	OilID        *string `json:"oil_id"`
	DeliveryID   *string `json:"delivery_id"`
	DeliveryType *string `json:"delivery_type"`
}

// Matches reports whether t satisfies every present field of f
func (f Filter) Matches(t Trade) bool {
	return matches(f.OilID, t.OilID) &&
		matches(f.DeliveryID, t.DeliveryID) &&
		matches(f.DeliveryType, t.DeliveryType)
}

func matches(want *string, got string) bool {
	return want == nil || *want == got
}

// Validate rejects present but empty fields. Values are otherwise unbounded.
func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.OilID, validation.NilOrNotEmpty),
		validation.Field(&f.DeliveryID, validation.NilOrNotEmpty),
		validation.Field(&f.DeliveryType, validation.NilOrNotEmpty),
	)
}

// LastDatesQuery asks for the Count most recent distinct trading days
type LastDatesQuery struct {
	Count int `json:"count_day"`
}

// Validate checks Count is within 1..MaxLastDates
func (q LastDatesQuery) Validate() error {
	return validation.ValidateStruct(&q,
		// Min skips zero values, so Required rejects count_day=0
		validation.Field(&q.Count,
			validation.Required.Error("must be no less than 1"),
			validation.Min(1),
			validation.Max(MaxLastDates),
		),
	)
}

// DynamicsQuery asks for the trades between StartDate and EndDate inclusive
type DynamicsQuery struct {
	Filter    Filter `json:"filter"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
}

// Validate checks each field on its own. The ordering of the two dates is
// checked by CheckRange.
func (q DynamicsQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Filter),
		validation.Field(&q.StartDate, validation.By(requiredDate)),
		validation.Field(&q.EndDate, validation.By(requiredDate)),
	)
}

// CheckRange rejects a start date after the end date
func (q DynamicsQuery) CheckRange() error {
	if q.StartDate.After(q.EndDate) {
		return &ValidationError{Message: MsgIncorrectDate}
	}
	return nil
}

// Contains reports whether d lies within the query's inclusive range
func (q DynamicsQuery) Contains(d Date) bool {
	return !d.Before(q.StartDate) && !d.After(q.EndDate)
}

func requiredDate(value interface{}) error {
	d, ok := value.(Date)
	if !ok || d.IsZero() {
		return errors.New("cannot be blank")
	}
	return nil
}
