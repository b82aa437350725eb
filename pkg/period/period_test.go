package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthKey(t *testing.T) {
	m, err := ParseMonthKey("2024-05")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, time.May, m.Month)
	assert.Equal(t, "2024-05", m.String())
}

func TestParseMonthKey_Invalid(t *testing.T) {
	_, err := ParseMonthKey("2024-13")
	assert.Error(t, err)

	_, err = ParseMonthKey("2024")
	assert.Error(t, err)
}

func TestAdd_YearWrap(t *testing.T) {
	dec := MonthKey{Year: 2024, Month: time.December}
	assert.Equal(t, MonthKey{Year: 2025, Month: time.January}, dec.Add(1))

	jan := MonthKey{Year: 2024, Month: time.January}
	assert.Equal(t, MonthKey{Year: 2023, Month: time.December}, jan.Add(-1))

	assert.Equal(t, MonthKey{Year: 2026, Month: time.February}, dec.Add(14))
}

func TestCompare(t *testing.T) {
	a := MonthKey{Year: 2024, Month: time.May}
	b := MonthKey{Year: 2024, Month: time.June}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, MonthKey{Year: 2024, Month: time.February}.DaysIn())
	assert.Equal(t, 28, MonthKey{Year: 2023, Month: time.February}.DaysIn())
	assert.Equal(t, 31, MonthKey{Year: 2024, Month: time.May}.DaysIn())
	assert.Equal(t, 30, MonthKey{Year: 2024, Month: time.June}.DaysIn())
}

func TestClampDay(t *testing.T) {
	feb := MonthKey{Year: 2023, Month: time.February}
	assert.Equal(t, 28, feb.ClampDay(31))
	assert.Equal(t, 15, feb.ClampDay(15))

	june := MonthKey{Year: 2024, Month: time.June}
	assert.Equal(t, 30, june.ClampDay(31))
}

func TestDate(t *testing.T) {
	feb := MonthKey{Year: 2023, Month: time.February}
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), feb.Date(31))
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, MonthKey{Year: 2024, Month: time.May}, MonthOf(d))
}
