package fixed

import (
	"iter"
	"time"

	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/period"
)

// Window is an inclusive calendar-date query range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Occurrence is one materialized instance of a template within a window.
type Occurrence struct {
	Date        time.Time
	Transaction *transaction.Transaction

	// FromException marks an occurrence served by a persisted exception row
	// rather than the template projection.
	FromException bool
}

// Materialize returns the lazy sequence of occurrences of a template within
// the window, ascending by date. Every range over the sequence restarts from
// the window start, and two passes over the same store state yield identical
// occurrences.
//
// An exception row whose exceptionForDate equals the template occurrence
// date replaces the projection for that month; a skipped exception
// suppresses the occurrence entirely.
func Materialize(def *FixedCashflow, window Window, exceptions []*transaction.Transaction) (iter.Seq[Occurrence], error) {
	if window.End.Before(window.Start) {
		return nil, ErrInvalidWindow
	}

	overrides, err := indexExceptions(exceptions)
	if err != nil {
		return nil, err
	}

	first := period.MonthOf(window.Start)
	last := period.MonthOf(window.End)

	return func(yield func(Occurrence) bool) {
		for m := first; !m.After(last); m = m.Add(1) {
			if !def.ActiveIn(m) {
				continue
			}

			date := def.OccurrenceDate(m)
			if date.Before(window.Start) || date.After(window.End) {
				continue
			}

			if ex, ok := overrides[dayKey(date)]; ok {
				if ex.Skipped {
					continue
				}
				if !yield(Occurrence{Date: date, Transaction: ex, FromException: true}) {
					return
				}
				continue
			}

			if !yield(Occurrence{Date: date, Transaction: def.Projection(date)}) {
				return
			}
		}
	}, nil
}

func indexExceptions(exceptions []*transaction.Transaction) (map[string]*transaction.Transaction, error) {
	overrides := make(map[string]*transaction.Transaction, len(exceptions))
	for _, ex := range exceptions {
		if ex.ExceptionForDate == nil {
			continue
		}
		key := dayKey(*ex.ExceptionForDate)
		if _, dup := overrides[key]; dup {
			return nil, ErrAmbiguousOccurrence
		}
		overrides[key] = ex
	}
	return overrides, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
