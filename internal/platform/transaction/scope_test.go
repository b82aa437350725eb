package transaction_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

func cents(v int64) *money.Cents {
	c := money.Cents(v)
	return &c
}

// makeInstallmentGroup builds a persisted 4x25.00 installment group.
func makeInstallmentGroup(t *testing.T) []*transaction.Transaction {
	t.Helper()
	groupID := uuid.New()
	accountID := uuid.New()
	cardID := uuid.New()

	var group []*transaction.Transaction
	for k := 1; k <= 4; k++ {
		gid := groupID
		group = append(group, &transaction.Transaction{
			ID:                  uuid.New(),
			AccountID:           accountID,
			Kind:                transaction.KindCharge,
			Amount:              money.Cents(2500),
			Date:                time.Date(2024, time.Month(4+k), 10, 0, 0, 0, 0, time.UTC),
			Description:         "TV",
			CreditCardID:        &cardID,
			InstallmentsGroupID: &gid,
			CurrentInstallment:  k,
			Installments:        4,
		})
	}
	return group
}

func makeRecurrenceException(date time.Time) *transaction.Transaction {
	groupID := uuid.New()
	d := date
	return &transaction.Transaction{
		ID:                uuid.New(),
		AccountID:         uuid.New(),
		Kind:              transaction.KindExpense,
		Amount:            money.Cents(5000),
		Date:              date,
		Description:       "Rent",
		RecurrenceGroupID: &groupID,
		ExceptionForDate:  &d,
	}
}

func TestResolveEdit_StandaloneFallsBackToSingle(t *testing.T) {
	target := &transaction.Transaction{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Kind:        transaction.KindExpense,
		Amount:      money.Cents(1000),
		Description: "Coffee",
	}

	for _, scope := range []transaction.EditScope{transaction.ScopeSingle, transaction.ScopeAll, transaction.ScopeFuture} {
		plan, err := transaction.ResolveEdit(target, scope, nil, transaction.FieldChange{Amount: cents(1200)})
		require.NoError(t, err)
		require.Len(t, plan.UpdateRows, 1)
		assert.Equal(t, target.ID, plan.UpdateRows[0].ID)
		assert.Nil(t, plan.UpsertException)
		assert.Nil(t, plan.UpdateTemplate)
		assert.Nil(t, plan.SplitTemplate)
	}
}

func TestResolveEdit_InvalidScope(t *testing.T) {
	target := &transaction.Transaction{ID: uuid.New()}
	_, err := transaction.ResolveEdit(target, transaction.EditScope("everything"), nil, transaction.FieldChange{})
	assert.ErrorIs(t, err, transaction.ErrInvalidEditScope)
}

func TestResolveEdit_InstallmentSingle(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[1]

	plan, err := transaction.ResolveEdit(target, transaction.ScopeSingle, group, transaction.FieldChange{Amount: cents(3000)})
	require.NoError(t, err)
	require.Len(t, plan.UpdateRows, 1)
	assert.Equal(t, target.ID, plan.UpdateRows[0].ID)
}

func TestResolveEdit_InstallmentAll_ResplitsTotal(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[0]

	// New total 100.01 re-split across 4 rows, remainder on the first.
	plan, err := transaction.ResolveEdit(target, transaction.ScopeAll, group, transaction.FieldChange{Amount: cents(10001)})
	require.NoError(t, err)
	require.Len(t, plan.UpdateRows, 4)

	var sum money.Cents
	for _, u := range plan.UpdateRows {
		require.NotNil(t, u.Fields.Amount)
		sum += *u.Fields.Amount
	}
	assert.Equal(t, money.Cents(10001), sum)
	assert.Equal(t, money.Cents(2501), *plan.UpdateRows[0].Fields.Amount)
}

func TestResolveEdit_InstallmentAll_NonAmountFields(t *testing.T) {
	group := makeInstallmentGroup(t)
	desc := "TV 55\""

	plan, err := transaction.ResolveEdit(group[2], transaction.ScopeAll, group, transaction.FieldChange{Description: &desc})
	require.NoError(t, err)
	require.Len(t, plan.UpdateRows, 4)
	for _, u := range plan.UpdateRows {
		assert.Equal(t, desc, *u.Fields.Description)
	}
}

// Editing installment 2 of 4 with scope future and an unreconciled amount
// change is rejected before anything is written.
func TestResolveEdit_InstallmentFuture_UnreconciledAmountRejected(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[1] // installment 2

	_, err := transaction.ResolveEdit(target, transaction.ScopeFuture, group, transaction.FieldChange{Amount: cents(4000)})
	assert.ErrorIs(t, err, transaction.ErrInconsistentGroupState)
}

func TestResolveEdit_InstallmentFuture_ReconciledAmountAccepted(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[1]

	plan, err := transaction.ResolveEdit(target, transaction.ScopeFuture, group,
		transaction.FieldChange{Amount: cents(4000), ReconcileTotals: true})
	require.NoError(t, err)
	require.Len(t, plan.UpdateRows, 3)

	affected := map[uuid.UUID]bool{}
	for _, u := range plan.UpdateRows {
		affected[u.ID] = true
	}
	assert.False(t, affected[group[0].ID], "installment 1 must stay unchanged")
	assert.True(t, affected[group[1].ID])
	assert.True(t, affected[group[2].ID])
	assert.True(t, affected[group[3].ID])
}

func TestResolveEdit_InstallmentFuture_BalancePreservingAmount(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[1] // remaining balance 75.00 over 3 rows

	plan, err := transaction.ResolveEdit(target, transaction.ScopeFuture, group, transaction.FieldChange{Amount: cents(2500)})
	require.NoError(t, err)
	assert.Len(t, plan.UpdateRows, 3)
}

func TestResolveEdit_InstallmentGroupMissing(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[0]

	_, err := transaction.ResolveEdit(target, transaction.ScopeAll, nil, transaction.FieldChange{})
	assert.ErrorIs(t, err, transaction.ErrGroupNotFound)
}

func TestResolveEdit_RecurrenceSingle_CreatesException(t *testing.T) {
	occurrence := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	target := makeRecurrenceException(occurrence)

	plan, err := transaction.ResolveEdit(target, transaction.ScopeSingle, nil, transaction.FieldChange{Amount: cents(5500)})
	require.NoError(t, err)
	require.NotNil(t, plan.UpsertException)
	assert.Equal(t, *target.RecurrenceGroupID, plan.UpsertException.GroupID)
	assert.Equal(t, occurrence, plan.UpsertException.Date)
	assert.False(t, plan.UpsertException.Skipped)
	assert.Empty(t, plan.UpdateRows)
}

func TestResolveEdit_RecurrenceAll_UpdatesTemplate(t *testing.T) {
	target := makeRecurrenceException(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))

	plan, err := transaction.ResolveEdit(target, transaction.ScopeAll, nil, transaction.FieldChange{Amount: cents(6000)})
	require.NoError(t, err)
	require.NotNil(t, plan.UpdateTemplate)
	assert.Equal(t, *target.RecurrenceGroupID, plan.UpdateTemplate.GroupID)
}

func TestResolveEdit_RecurrenceFuture_SplitsTemplate(t *testing.T) {
	target := makeRecurrenceException(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))

	plan, err := transaction.ResolveEdit(target, transaction.ScopeFuture, nil, transaction.FieldChange{Amount: cents(6000)})
	require.NoError(t, err)
	require.NotNil(t, plan.SplitTemplate)
	assert.Equal(t, period.MonthKey{Year: 2024, Month: time.June}, plan.SplitTemplate.AtMonth)
}

func TestResolveDelete_RecurrenceSingle_Tombstones(t *testing.T) {
	occurrence := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	target := makeRecurrenceException(occurrence)

	plan, err := transaction.ResolveDelete(target, transaction.ScopeSingle, nil)
	require.NoError(t, err)
	require.NotNil(t, plan.UpsertException)
	assert.True(t, plan.UpsertException.Skipped)
	assert.Equal(t, occurrence, plan.UpsertException.Date)
	assert.Empty(t, plan.DeleteRowIDs)
	assert.False(t, plan.DeleteTemplate)
}

func TestResolveDelete_RecurrenceAll_RemovesTemplateAndExceptions(t *testing.T) {
	target := makeRecurrenceException(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	other := *target
	other.ID = uuid.New()

	plan, err := transaction.ResolveDelete(target, transaction.ScopeAll, []*transaction.Transaction{target, &other})
	require.NoError(t, err)
	assert.True(t, plan.DeleteTemplate)
	assert.Len(t, plan.DeleteRowIDs, 2)
}

func TestResolveDelete_RecurrenceFuture_TruncatesTemplate(t *testing.T) {
	target := makeRecurrenceException(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))

	plan, err := transaction.ResolveDelete(target, transaction.ScopeFuture, []*transaction.Transaction{target})
	require.NoError(t, err)
	require.NotNil(t, plan.TruncateTemplateAt)
	assert.Equal(t, period.MonthKey{Year: 2024, Month: time.May}, *plan.TruncateTemplateAt)
	assert.Equal(t, []uuid.UUID{target.ID}, plan.DeleteRowIDs)
}

func TestResolveDelete_InstallmentScopes(t *testing.T) {
	group := makeInstallmentGroup(t)
	target := group[2] // installment 3

	single, err := transaction.ResolveDelete(target, transaction.ScopeSingle, group)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{target.ID}, single.DeleteRowIDs)

	future, err := transaction.ResolveDelete(target, transaction.ScopeFuture, group)
	require.NoError(t, err)
	assert.Len(t, future.DeleteRowIDs, 2) // installments 3 and 4

	all, err := transaction.ResolveDelete(target, transaction.ScopeAll, group)
	require.NoError(t, err)
	assert.Len(t, all.DeleteRowIDs, 4)
}

// For any target, future ∪ (all \ future) covers the group exactly once and
// single is contained in both.
func TestResolveDelete_ScopePartition(t *testing.T) {
	group := makeInstallmentGroup(t)

	for _, target := range group {
		single, err := transaction.ResolveDelete(target, transaction.ScopeSingle, group)
		require.NoError(t, err)
		future, err := transaction.ResolveDelete(target, transaction.ScopeFuture, group)
		require.NoError(t, err)
		all, err := transaction.ResolveDelete(target, transaction.ScopeAll, group)
		require.NoError(t, err)

		futureSet := map[uuid.UUID]bool{}
		for _, id := range future.DeleteRowIDs {
			assert.False(t, futureSet[id], "duplicate in future scope")
			futureSet[id] = true
		}

		// all \ future plus future must equal the whole group, each exactly once.
		covered := map[uuid.UUID]int{}
		for _, id := range all.DeleteRowIDs {
			if !futureSet[id] {
				covered[id]++
			}
		}
		for id := range futureSet {
			covered[id]++
		}
		require.Len(t, covered, len(group))
		for id, n := range covered {
			assert.Equal(t, 1, n, "row %s covered %d times", id, n)
		}

		// single affects exactly the target, which future also covers.
		require.Len(t, single.DeleteRowIDs, 1)
		assert.Equal(t, target.ID, single.DeleteRowIDs[0])
		assert.True(t, futureSet[target.ID])
	}
}

func TestFieldChange_Apply(t *testing.T) {
	tx := &transaction.Transaction{Amount: money.Cents(100), Description: "old", Paid: false}
	paid := true
	desc := "new"

	change := transaction.FieldChange{Amount: cents(200), Description: &desc, Paid: &paid}
	change.Apply(tx)

	assert.Equal(t, money.Cents(200), tx.Amount)
	assert.Equal(t, "new", tx.Description)
	assert.True(t, tx.Paid)
}
