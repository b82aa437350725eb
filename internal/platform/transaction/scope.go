package transaction

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// FieldChange is a partial mutation payload. Nil pointers leave the field
// untouched.
type FieldChange struct {
	Amount      *money.Cents
	Description *string
	CategoryID  *uuid.UUID
	Date        *time.Time
	Paid        *bool

	// ReconcileTotals opts a future-scope installment amount edit out of the
	// remaining-balance invariant, accepting that the group total changes.
	ReconcileTotals bool
}

// IsZero reports whether the change carries no field mutations.
func (c FieldChange) IsZero() bool {
	return c.Amount == nil && c.Description == nil && c.CategoryID == nil &&
		c.Date == nil && c.Paid == nil
}

// Apply writes the populated fields onto a transaction.
func (c FieldChange) Apply(t *Transaction) {
	if c.Amount != nil {
		t.Amount = *c.Amount
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.CategoryID != nil {
		t.CategoryID = c.CategoryID
	}
	if c.Date != nil {
		t.Date = *c.Date
	}
	if c.Paid != nil {
		t.Paid = *c.Paid
	}
}

// RowUpdate mutates one persisted row.
type RowUpdate struct {
	ID     uuid.UUID
	Fields FieldChange
}

// ExceptionUpsert creates or replaces the exception row for one occurrence of
// a recurrence group. Skipped marks a tombstone suppressing the occurrence.
type ExceptionUpsert struct {
	GroupID uuid.UUID
	Date    time.Time
	Fields  FieldChange
	Skipped bool
}

// TemplateUpdate rewrites fields on a recurrence template, propagating to
// every materialization.
type TemplateUpdate struct {
	GroupID uuid.UUID
	Fields  FieldChange
}

// TemplateSplit closes a recurrence template at the month before AtMonth and
// starts a successor template with the changed fields from AtMonth on.
type TemplateSplit struct {
	GroupID uuid.UUID
	AtMonth period.MonthKey
	Fields  FieldChange
}

// Plan is the precise set of persistence mutations an edit or delete request
// resolves to. The whole plan is applied inside a single database
// transaction: a rejected or failed plan leaves every group row unchanged.
type Plan struct {
	UpdateRows      []RowUpdate
	DeleteRowIDs    []uuid.UUID
	UpsertException *ExceptionUpsert
	UpdateTemplate  *TemplateUpdate
	SplitTemplate   *TemplateSplit

	// TruncateTemplateAt closes the template's end month (future-scope
	// delete). The pointer value is the new, inclusive end month.
	TruncateTemplateAt *period.MonthKey
	DeleteTemplate     bool

	// GroupID contextualizes the template operations.
	GroupID uuid.UUID
}

// ResolveEdit computes the mutation plan for editing target with the given
// scope. group must hold every persisted row sharing the target's group id
// (for a recurrence group these are its exception rows); it is ignored for
// standalone targets. A scope of all or future on a standalone target falls
// back to single, a standalone transaction having only one occurrence.
func ResolveEdit(target *Transaction, scope EditScope, group []*Transaction, change FieldChange) (*Plan, error) {
	if !scope.IsValid() {
		return nil, ErrInvalidEditScope
	}

	switch target.Variant() {
	case VariantStandalone:
		return &Plan{UpdateRows: []RowUpdate{{ID: target.ID, Fields: change}}}, nil

	case VariantInstallmentMember:
		return resolveInstallmentEdit(target, scope, group, change)

	default:
		return resolveRecurrenceEdit(target, scope, change)
	}
}

// ResolveDelete computes the mutation plan for deleting target with the
// given scope.
func ResolveDelete(target *Transaction, scope EditScope, group []*Transaction) (*Plan, error) {
	if !scope.IsValid() {
		return nil, ErrInvalidEditScope
	}

	switch target.Variant() {
	case VariantStandalone:
		return &Plan{DeleteRowIDs: []uuid.UUID{target.ID}}, nil

	case VariantInstallmentMember:
		members, err := installmentGroup(target, group)
		if err != nil {
			return nil, err
		}

		plan := &Plan{GroupID: *target.InstallmentsGroupID}
		for _, m := range members {
			switch scope {
			case ScopeSingle:
				if m.ID == target.ID {
					plan.DeleteRowIDs = append(plan.DeleteRowIDs, m.ID)
				}
			case ScopeAll:
				plan.DeleteRowIDs = append(plan.DeleteRowIDs, m.ID)
			case ScopeFuture:
				if m.CurrentInstallment >= target.CurrentInstallment {
					plan.DeleteRowIDs = append(plan.DeleteRowIDs, m.ID)
				}
			}
		}
		return plan, nil

	default:
		groupID := *target.RecurrenceGroupID
		plan := &Plan{GroupID: groupID}

		switch scope {
		case ScopeSingle:
			// Tombstone the one occurrence; the template stays intact and the
			// next occurrence still materializes.
			plan.UpsertException = &ExceptionUpsert{
				GroupID: groupID,
				Date:    target.OccurrenceDate(),
				Skipped: true,
			}

		case ScopeAll:
			plan.DeleteTemplate = true
			for _, m := range group {
				plan.DeleteRowIDs = append(plan.DeleteRowIDs, m.ID)
			}

		case ScopeFuture:
			end := period.MonthOf(target.OccurrenceDate()).Add(-1)
			plan.TruncateTemplateAt = &end
			cutoff := target.OccurrenceDate()
			for _, m := range group {
				if !m.OccurrenceDate().Before(cutoff) {
					plan.DeleteRowIDs = append(plan.DeleteRowIDs, m.ID)
				}
			}
		}
		return plan, nil
	}
}

func resolveInstallmentEdit(target *Transaction, scope EditScope, group []*Transaction, change FieldChange) (*Plan, error) {
	members, err := installmentGroup(target, group)
	if err != nil {
		return nil, err
	}

	plan := &Plan{GroupID: *target.InstallmentsGroupID}

	switch scope {
	case ScopeSingle:
		// Installments have no template layer; the one row mutates directly.
		plan.UpdateRows = []RowUpdate{{ID: target.ID, Fields: change}}
		return plan, nil

	case ScopeAll:
		if change.Amount == nil {
			for _, m := range members {
				plan.UpdateRows = append(plan.UpdateRows, RowUpdate{ID: m.ID, Fields: change})
			}
			return plan, nil
		}

		// An amount under scope all is the new group total: re-run the
		// division policy so the rows keep summing to it exactly.
		shares, err := money.Split(*change.Amount, len(members))
		if err != nil {
			return nil, err
		}
		for i, m := range members {
			fields := change
			share := shares[i]
			fields.Amount = &share
			plan.UpdateRows = append(plan.UpdateRows, RowUpdate{ID: m.ID, Fields: fields})
		}
		return plan, nil

	default: // ScopeFuture
		var remaining money.Cents
		var future []*Transaction
		for _, m := range members {
			if m.CurrentInstallment >= target.CurrentInstallment {
				remaining += m.Amount
				future = append(future, m)
			}
		}

		if change.Amount != nil {
			// The amount applies per remaining row. Unless the caller
			// explicitly reconciles the total, the remaining rows must still
			// sum to the original remaining balance.
			newRemaining := money.Cents(int64(*change.Amount) * int64(len(future)))
			if !change.ReconcileTotals && newRemaining != remaining {
				return nil, ErrInconsistentGroupState
			}
		}

		for _, m := range future {
			plan.UpdateRows = append(plan.UpdateRows, RowUpdate{ID: m.ID, Fields: change})
		}
		return plan, nil
	}
}

func resolveRecurrenceEdit(target *Transaction, scope EditScope, change FieldChange) (*Plan, error) {
	groupID := *target.RecurrenceGroupID
	plan := &Plan{GroupID: groupID}

	switch scope {
	case ScopeSingle:
		plan.UpsertException = &ExceptionUpsert{
			GroupID: groupID,
			Date:    target.OccurrenceDate(),
			Fields:  change,
		}

	case ScopeAll:
		plan.UpdateTemplate = &TemplateUpdate{GroupID: groupID, Fields: change}

	default: // ScopeFuture
		plan.SplitTemplate = &TemplateSplit{
			GroupID: groupID,
			AtMonth: period.MonthOf(target.OccurrenceDate()),
			Fields:  change,
		}
	}

	return plan, nil
}

// installmentGroup validates the fetched group against the target and
// returns it ordered by installment number.
func installmentGroup(target *Transaction, group []*Transaction) ([]*Transaction, error) {
	groupID := *target.InstallmentsGroupID

	var members []*Transaction
	found := false
	for _, m := range group {
		if m.InstallmentsGroupID == nil || *m.InstallmentsGroupID != groupID {
			continue
		}
		if m.ID == target.ID {
			found = true
		}
		members = append(members, m)
	}

	if len(members) == 0 || !found {
		return nil, ErrGroupNotFound
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].CurrentInstallment < members[j].CurrentInstallment
	})
	return members, nil
}
