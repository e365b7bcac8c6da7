package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cutoff is the wall-clock time of day at which cached entries expire.
// The trading table is refreshed once a day by an external batch, so entries
// live until the next refresh instead of for a rolling TTL.
type Cutoff struct {
	Hour   int
	Minute int
	// Location used to resolve the time of day. Nil means the location of now.
	Location *time.Location
}

// DefaultCutoff is 14:11 local time
func DefaultCutoff() Cutoff {
	return Cutoff{Hour: 14, Minute: 11}
}

// ParseCutoff parses "HH:MM"
func ParseCutoff(s string) (Cutoff, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Cutoff{}, fmt.Errorf("cutoff %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return Cutoff{}, fmt.Errorf("cutoff %q: invalid hour: %w", s, err)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return Cutoff{}, fmt.Errorf("cutoff %q: invalid minute: %w", s, err)
	}
	c := Cutoff{Hour: hour, Minute: minute}
	if err := c.Validate(); err != nil {
		return Cutoff{}, err
	}
	return c, nil
}

// UnmarshalText lets env and flag parsers read a cutoff directly
func (c *Cutoff) UnmarshalText(text []byte) error {
	parsed, err := ParseCutoff(string(text))
	if err != nil {
		return err
	}
	parsed.Location = c.Location
	*c = parsed
	return nil
}

// String formats the cutoff as HH:MM
func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Validate checks the hour and minute ranges
func (c Cutoff) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("cutoff hour must be between 0-23, got %d", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("cutoff minute must be between 0-59, got %d", c.Minute)
	}
	return nil
}

// In returns a copy of the cutoff resolved in loc
func (c Cutoff) In(loc *time.Location) Cutoff {
	c.Location = loc
	return c
}

// Next returns the first cutoff strictly after now: today's if it is still
// ahead, otherwise tomorrow's. now exactly at the cutoff rolls to tomorrow.
func (c Cutoff) Next(now time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = now.Location()
	}
	local := now.In(loc)
	y, m, d := local.Date()

	today := time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
	if now.Before(today) {
		return today
	}
	return time.Date(y, m, d+1, c.Hour, c.Minute, 0, 0, loc)
}

// Until returns how long an entry written at now stays valid
func (c Cutoff) Until(now time.Time) time.Duration {
	return c.Next(now).Sub(now)
}
