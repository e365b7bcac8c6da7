package trading

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and cache form of a Date
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day or zone
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// String formats d as YYYY-MM-DD
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is an earlier day than o
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is a later day than o
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes d as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}
