package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/pkg/period"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInvoiceMonth_EarlyCloser(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		date       time.Time
		want       string
	}{
		{"before closing stays in month", 20, date(2024, 5, 15), "2024-05"},
		{"on closing stays in month", 20, date(2024, 5, 20), "2024-05"},
		{"after closing rolls to next", 20, date(2024, 5, 25), "2024-06"},
		{"first of month", 10, date(2024, 5, 1), "2024-05"},
		{"december after closing wraps year", 20, date(2024, 12, 28), "2025-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.InvoiceMonth(tt.closingDay, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestInvoiceMonth_LateCloser(t *testing.T) {
	tests := []struct {
		name       string
		closingDay int
		date       time.Time
		want       string
	}{
		{"before closing bills next month", 28, date(2024, 5, 27), "2024-06"},
		{"on closing bills next month", 28, date(2024, 5, 28), "2024-06"},
		{"after closing bills month after next", 28, date(2024, 5, 29), "2024-07"},
		{"december purchase wraps year", 28, date(2024, 12, 30), "2025-02"},
		{"threshold day 25", 25, date(2024, 5, 10), "2024-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.InvoiceMonth(tt.closingDay, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestInvoiceMonth_ClampsClosingDay(t *testing.T) {
	// Closing day 31 in June (30 days) compares against 30.
	got, err := billing.InvoiceMonth(31, date(2024, 6, 30))
	require.NoError(t, err)
	assert.Equal(t, "2024-07", got.String())

	// February clamp: closing 30 in a 29-day month compares against 29.
	got, err = billing.InvoiceMonth(30, date(2024, 2, 29))
	require.NoError(t, err)
	assert.Equal(t, "2024-03", got.String())
}

func TestInvoiceMonth_InvalidClosingDay(t *testing.T) {
	_, err := billing.InvoiceMonth(0, date(2024, 5, 15))
	assert.ErrorIs(t, err, billing.ErrInvalidClosingDay)

	_, err = billing.InvoiceMonth(32, date(2024, 5, 15))
	assert.ErrorIs(t, err, billing.ErrInvalidClosingDay)
}

// Invoice month must never decrease as the purchase date advances.
func TestInvoiceMonth_Monotonic(t *testing.T) {
	for _, closingDay := range []int{1, 10, 20, 24, 25, 28, 31} {
		prev := period.MonthKey{}
		d := date(2023, 11, 1)
		for d.Before(date(2024, 4, 1)) {
			got, err := billing.InvoiceMonth(closingDay, d)
			require.NoError(t, err)
			if !prev.IsZero() {
				assert.LessOrEqual(t, prev.Compare(got), 0,
					"closingDay=%d date=%s", closingDay, d.Format("2006-01-02"))
			}
			prev = got
			d = d.AddDate(0, 0, 1)
		}
	}
}

func TestPurchaseDateFor_RoundTrip(t *testing.T) {
	targets := []string{"2024-01", "2024-02", "2024-03", "2024-12", "2025-01"}
	for _, closingDay := range []int{1, 10, 20, 25, 28, 31} {
		for _, ts := range targets {
			target, err := period.ParseMonthKey(ts)
			require.NoError(t, err)
			for _, day := range []int{1, 15, 28, 31} {
				d, err := billing.PurchaseDateFor(closingDay, day, target)
				require.NoError(t, err)
				got, err := billing.InvoiceMonth(closingDay, d)
				require.NoError(t, err)
				assert.Equal(t, target, got,
					"closingDay=%d day=%d target=%s date=%s", closingDay, day, ts, d.Format("2006-01-02"))
			}
		}
	}
}

func TestPurchaseDateFor_KeepsDayOfMonth(t *testing.T) {
	target := period.MonthKey{Year: 2024, Month: time.June}
	d, err := billing.PurchaseDateFor(20, 15, target)
	require.NoError(t, err)
	assert.Equal(t, 15, d.Day())
}

func TestCyclePeriod_EarlyCloser(t *testing.T) {
	month := period.MonthKey{Year: 2024, Month: time.May}
	start, end, err := billing.CyclePeriod(20, month)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 4, 21), start)
	assert.Equal(t, date(2024, 5, 20), end)
}

func TestCyclePeriod_LateCloser(t *testing.T) {
	month := period.MonthKey{Year: 2024, Month: time.June}
	start, end, err := billing.CyclePeriod(28, month)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 4, 29), start)
	assert.Equal(t, date(2024, 5, 28), end)
}

func TestDueDate(t *testing.T) {
	may := period.MonthKey{Year: 2024, Month: time.May}

	// Early closer pays in the month after the invoice month.
	due, err := billing.DueDate(20, 5, may)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 5), due)

	// Late closer already carries the lag in the invoice month key.
	due, err = billing.DueDate(28, 5, may)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 5, 5), due)

	// Due day clamps to month length.
	feb := period.MonthKey{Year: 2023, Month: time.February}
	due, err = billing.DueDate(28, 31, feb)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 2, 28), due)
}

func TestDueDate_InvalidDueDay(t *testing.T) {
	may := period.MonthKey{Year: 2024, Month: time.May}
	_, err := billing.DueDate(20, 0, may)
	assert.ErrorIs(t, err, billing.ErrInvalidDueDay)
}
