// Package period provides calendar month keys ("YYYY-MM") and the
// day-clamping arithmetic the billing-cycle and recurrence code is built on.
package period

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month key containing the given date.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// String formats the key as "YYYY-MM".
func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether the key is unset.
func (m MonthKey) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Add advances the key by n months, wrapping year boundaries. n may be negative.
func (m MonthKey) Add(n int) MonthKey {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Compare returns -1, 0, or +1 ordering m against other chronologically.
func (m MonthKey) Compare(other MonthKey) int {
	a := m.Year*12 + int(m.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly earlier than other.
func (m MonthKey) Before(other MonthKey) bool {
	return m.Compare(other) < 0
}

// After reports whether m is strictly later than other.
func (m MonthKey) After(other MonthKey) bool {
	return m.Compare(other) > 0
}

// DaysIn returns the number of days in the month.
func (m MonthKey) DaysIn() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a nominal day-of-month to the last valid day of the month.
// Closing day 31 compared against a 30-day month uses 30.
func (m MonthKey) ClampDay(day int) int {
	if last := m.DaysIn(); day > last {
		return last
	}
	return day
}

// Date returns the clamped day as a UTC midnight time.Time.
func (m MonthKey) Date(day int) time.Time {
	return time.Date(m.Year, m.Month, m.ClampDay(day), 0, 0, 0, 0, time.UTC)
}

// Start returns the first instant of the month.
func (m MonthKey) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month at UTC midnight.
func (m MonthKey) End() time.Time {
	return m.Date(m.DaysIn())
}
