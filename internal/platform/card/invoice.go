package card

import (
	"sort"
	"time"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// MonthRange is an inclusive invoice-month query range.
type MonthRange struct {
	From period.MonthKey
	To   period.MonthKey
}

// Contains reports whether the range includes the month.
func (r MonthRange) Contains(m period.MonthKey) bool {
	return !m.Before(r.From) && !m.After(r.To)
}

// AggregateInvoices derives one invoice per month of the range from the
// card's transactions. Each transaction lands in the invoice month the
// closing cycle resolves its date to; credits carry negative amounts, so the
// total nets them against charges. Months with no rows still yield an empty
// shell so the caller can render a continuous timeline.
//
// Status is paid when a payment record exists for the month, overdue when
// unpaid past the due date at the reference time, pending otherwise.
func AggregateInvoices(card *CreditCard, txs []*transaction.Transaction, payments []*InvoicePayment, r MonthRange, now time.Time) ([]*Invoice, error) {
	if r.To.Before(r.From) {
		return nil, ErrInvalidRange
	}

	byMonth := make(map[period.MonthKey][]*transaction.Transaction)
	for _, tx := range txs {
		if tx.CreditCardID == nil || *tx.CreditCardID != card.ID {
			continue
		}
		m, err := billing.InvoiceMonth(card.ClosingDay, tx.Date)
		if err != nil {
			return nil, err
		}
		if !r.Contains(m) {
			continue
		}
		byMonth[m] = append(byMonth[m], tx)
	}

	paidAt := make(map[period.MonthKey]time.Time, len(payments))
	for _, p := range payments {
		if p.CreditCardID == card.ID {
			paidAt[p.Month] = p.PaidAt
		}
	}

	var invoices []*Invoice
	for m := r.From; !m.After(r.To); m = m.Add(1) {
		members := byMonth[m]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Date.Before(members[j].Date)
		})

		start, end, err := billing.CyclePeriod(card.ClosingDay, m)
		if err != nil {
			return nil, err
		}
		due, err := billing.DueDate(card.ClosingDay, card.DueDay, m)
		if err != nil {
			return nil, err
		}

		var total money.Cents
		for _, tx := range members {
			total += tx.Amount
		}

		inv := &Invoice{
			CreditCardID: card.ID,
			Month:        m,
			PeriodStart:  start,
			PeriodEnd:    end,
			DueDate:      due,
			Total:        total,
			Status:       InvoicePending,
			Transactions: members,
		}
		if inv.Transactions == nil {
			inv.Transactions = []*transaction.Transaction{}
		}

		if at, ok := paidAt[m]; ok {
			inv.Status = InvoicePaid
			t := at
			inv.PaidAt = &t
		} else if now.After(due) {
			inv.Status = InvoiceOverdue
		}

		invoices = append(invoices, inv)
	}

	return invoices, nil
}
