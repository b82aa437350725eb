package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/pkg/money"
)

// InstallmentPlan describes a card purchase to be split into monthly
// installments.
type InstallmentPlan struct {
	AccountID    uuid.UUID
	CreditCardID uuid.UUID
	ClosingDay   int
	Kind         Kind
	Total        money.Cents
	Installments int
	FirstDate    time.Time
	Description  string
	CategoryID   *uuid.UUID
}

// ExpandInstallments produces the ordered sequence of installment drafts for
// a purchase. Installment k bills in invoice month M0+(k-1), where M0 is the
// invoice month the first purchase date resolves to; each draft's date is
// chosen so the closing-cycle resolver reproduces that target month. The
// total is split as evenly as possible with any rounding remainder on the
// first installment, so the drafts always sum to the original total.
//
// A single installment degenerates to one ungrouped draft.
func ExpandInstallments(p InstallmentPlan) ([]*Transaction, error) {
	if p.Installments < 1 {
		return nil, ErrInvalidInstallmentCount
	}

	if p.Installments == 1 {
		return []*Transaction{{
			AccountID:          p.AccountID,
			Kind:               p.Kind,
			Amount:             p.Total,
			Date:               p.FirstDate,
			Description:        p.Description,
			CategoryID:         p.CategoryID,
			CreditCardID:       &p.CreditCardID,
			CurrentInstallment: 1,
			Installments:       1,
		}}, nil
	}

	amounts, err := money.Split(p.Total, p.Installments)
	if err != nil {
		return nil, fmt.Errorf("failed to split installment total: %w", err)
	}

	firstMonth, err := billing.InvoiceMonth(p.ClosingDay, p.FirstDate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve first invoice month: %w", err)
	}

	groupID := uuid.New()
	drafts := make([]*Transaction, 0, p.Installments)

	for k := 1; k <= p.Installments; k++ {
		date := p.FirstDate
		if k > 1 {
			target := firstMonth.Add(k - 1)
			date, err = billing.PurchaseDateFor(p.ClosingDay, p.FirstDate.Day(), target)
			if err != nil {
				return nil, fmt.Errorf("failed to date installment %d: %w", k, err)
			}
		}

		gid := groupID
		drafts = append(drafts, &Transaction{
			AccountID:           p.AccountID,
			Kind:                p.Kind,
			Amount:              amounts[k-1],
			Date:                date,
			Description:         p.Description,
			CategoryID:          p.CategoryID,
			CreditCardID:        &p.CreditCardID,
			InstallmentsGroupID: &gid,
			CurrentInstallment:  k,
			Installments:        p.Installments,
		})
	}

	return drafts, nil
}
