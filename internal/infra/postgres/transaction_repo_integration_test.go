//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
	"github.com/nexfin/nexfin/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) (*TransactionRepository, context.Context) {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))

	repo := NewTransactionRepository(testDB.Pool)
	return repo, ctx
}

// Helper to create a test account
func createTestAccount(t *testing.T, ctx context.Context) uuid.UUID {
	accountID := uuid.New()
	_, err := testDB.Pool.Exec(ctx, `
		INSERT INTO accounts (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`, accountID, uuid.New(), "Test Account "+accountID.String()[:8])
	require.NoError(t, err)
	return accountID
}

// Helper to create a recurrence template
func createTestTemplate(t *testing.T, ctx context.Context, accountID uuid.UUID, amount int64, description string) uuid.UUID {
	templateID := uuid.New()
	_, err := testDB.Pool.Exec(ctx, `
		INSERT INTO fixed_cashflows (id, account_id, description, amount_cents, kind, due_day, start_month, end_month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'expense', 5, '2024-01', NULL, NOW(), NOW())
	`, templateID, accountID, description, amount)
	require.NoError(t, err)
	return templateID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)

	tx := &transaction.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        transaction.KindExpense,
		Amount:      money.Cents(-4250),
		Date:        date(2024, time.March, 12),
		Description: "Groceries",
	}
	require.NoError(t, repo.Create(ctx, tx))

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, accountID, got.AccountID)
	assert.Equal(t, money.Cents(-4250), got.Amount)
	assert.Equal(t, "2024-03-12", got.Date.Format("2006-01-02"))
	assert.Nil(t, got.InstallmentsGroupID)
	assert.Nil(t, got.RecurrenceGroupID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestTransactionRepository_GetByID_NotFound(t *testing.T) {
	repo, ctx := setupTest(t)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)
}

func TestTransactionRepository_CreateBatch_InstallmentGroup(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	cardID := createTestCard(t, ctx, accountID)
	groupID := uuid.New()

	var rows []*transaction.Transaction
	for i := 1; i <= 3; i++ {
		rows = append(rows, &transaction.Transaction{
			ID:                  uuid.New(),
			AccountID:           accountID,
			Kind:                transaction.KindCharge,
			Amount:              money.Cents(-10000),
			Date:                date(2024, time.Month(i), 15),
			Description:         "TV",
			CreditCardID:        &cardID,
			InstallmentsGroupID: &groupID,
			CurrentInstallment:  i,
			Installments:        3,
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, rows))

	members, err := repo.ListByInstallmentsGroup(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for i, m := range members {
		assert.Equal(t, i+1, m.CurrentInstallment)
		assert.Equal(t, 3, m.Installments)
	}
}

func TestTransactionRepository_ListByAccount_Filters(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	cardID := createTestCard(t, ctx, accountID)

	plain := &transaction.Transaction{
		ID: uuid.New(), AccountID: accountID, Kind: transaction.KindExpense,
		Amount: -1000, Date: date(2024, time.January, 10), Description: "January",
	}
	carded := &transaction.Transaction{
		ID: uuid.New(), AccountID: accountID, Kind: transaction.KindCharge,
		Amount: -2000, Date: date(2024, time.February, 10), Description: "February",
		CreditCardID: &cardID,
	}
	require.NoError(t, repo.CreateBatch(ctx, []*transaction.Transaction{plain, carded}))

	from := date(2024, time.February, 1)
	got, err := repo.ListByAccount(ctx, accountID, transaction.ListFilter{StartDate: &from})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "February", got[0].Description)

	got, err = repo.ListByAccount(ctx, accountID, transaction.ListFilter{CreditCardID: &cardID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, carded.ID, got[0].ID)

	got, err = repo.ListByAccount(ctx, accountID, transaction.ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "January", got[0].Description) // date ascending
}

func TestTransactionRepository_UpdateByGroup_MinInstallment(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	cardID := createTestCard(t, ctx, accountID)
	groupID := uuid.New()

	var rows []*transaction.Transaction
	for i := 1; i <= 4; i++ {
		rows = append(rows, &transaction.Transaction{
			ID: uuid.New(), AccountID: accountID, Kind: transaction.KindCharge,
			Amount: -5000, Date: date(2024, time.Month(i), 1), Description: "Sofa",
			CreditCardID: &cardID, InstallmentsGroupID: &groupID,
			CurrentInstallment: i, Installments: 4,
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, rows))

	min := 3
	desc := "Sofa (renegotiated)"
	n, err := repo.UpdateByGroup(ctx, groupID, &min, transaction.FieldChange{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	members, err := repo.ListByInstallmentsGroup(ctx, groupID)
	require.NoError(t, err)
	for _, m := range members {
		if m.CurrentInstallment >= 3 {
			assert.Equal(t, desc, m.Description)
		} else {
			assert.Equal(t, "Sofa", m.Description)
		}
	}
}

func TestTransactionRepository_ApplyPlan_ExceptionUpsert(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	templateID := createTestTemplate(t, ctx, accountID, -150000, "Rent")

	occurrence := date(2024, time.March, 5)
	newAmount := money.Cents(-160000)
	plan := &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    occurrence,
			Fields:  transaction.FieldChange{Amount: &newAmount},
		},
	}
	require.NoError(t, repo.ApplyPlan(ctx, plan))

	exceptions, err := repo.ListExceptions(ctx, templateID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)

	// Non-overridden fields are seeded from the template.
	ex := exceptions[0]
	assert.Equal(t, "Rent", ex.Description)
	assert.Equal(t, newAmount, ex.Amount)
	assert.Equal(t, "2024-03-05", ex.ExceptionForDate.Format("2006-01-02"))
	assert.False(t, ex.Skipped)

	// A second upsert for the same occurrence replaces, never duplicates.
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    occurrence,
			Skipped: true,
		},
	}))

	exceptions, err = repo.ListExceptions(ctx, templateID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.True(t, exceptions[0].Skipped)
}

func TestTransactionRepository_ApplyPlan_ExceptionEditAfterEdit(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	templateID := createTestTemplate(t, ctx, accountID, -150000, "Rent")

	occurrence := date(2024, time.March, 5)
	newAmount := money.Cents(-160000)
	paid := true
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    occurrence,
			Fields:  transaction.FieldChange{Amount: &newAmount, Paid: &paid},
		},
	}))

	// A later edit naming only the description must not roll the earlier
	// amount override or the paid flag back to template values.
	newDescription := "Rent (March)"
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    occurrence,
			Fields:  transaction.FieldChange{Description: &newDescription},
		},
	}))

	exceptions, err := repo.ListExceptions(ctx, templateID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.Equal(t, "Rent (March)", exceptions[0].Description)
	assert.Equal(t, newAmount, exceptions[0].Amount)
	assert.True(t, exceptions[0].Paid)
}

func TestTransactionRepository_ApplyPlan_ExceptionEditAfterProcessing(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	templateID := createTestTemplate(t, ctx, accountID, -150000, "Rent")

	// A promoted occurrence, persisted paid the way month processing does.
	occurrence := date(2024, time.April, 5)
	promoted := &transaction.Transaction{
		ID:                uuid.New(),
		AccountID:         accountID,
		Kind:              transaction.KindExpense,
		Amount:            -150000,
		Date:              occurrence,
		Description:       "Rent",
		Paid:              true,
		RecurrenceGroupID: &templateID,
		ExceptionForDate:  &occurrence,
	}
	require.NoError(t, repo.Create(ctx, promoted))

	newDescription := "Rent - paid early"
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    occurrence,
			Fields:  transaction.FieldChange{Description: &newDescription},
		},
	}))

	exceptions, err := repo.ListExceptions(ctx, templateID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.Equal(t, promoted.ID, exceptions[0].ID)
	assert.Equal(t, "Rent - paid early", exceptions[0].Description)
	assert.Equal(t, money.Cents(-150000), exceptions[0].Amount)
	assert.True(t, exceptions[0].Paid)
}

func TestTransactionRepository_ApplyPlan_SplitTemplate(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	templateID := createTestTemplate(t, ctx, accountID, -150000, "Rent")

	// One override before the split point, one after.
	before := money.Cents(-140000)
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    date(2024, time.February, 5),
			Fields:  transaction.FieldChange{Amount: &before},
		},
	}))
	after := money.Cents(-155000)
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID: templateID,
		UpsertException: &transaction.ExceptionUpsert{
			GroupID: templateID,
			Date:    date(2024, time.July, 5),
			Fields:  transaction.FieldChange{Amount: &after},
		},
	}))

	newAmount := money.Cents(-170000)
	plan := &transaction.Plan{
		GroupID: templateID,
		SplitTemplate: &transaction.TemplateSplit{
			GroupID: templateID,
			AtMonth: period.MonthKey{Year: 2024, Month: time.June},
			Fields:  transaction.FieldChange{Amount: &newAmount},
		},
	}
	require.NoError(t, repo.ApplyPlan(ctx, plan))

	var endMonth string
	err := testDB.Pool.QueryRow(ctx,
		`SELECT end_month FROM fixed_cashflows WHERE id = $1`, templateID).Scan(&endMonth)
	require.NoError(t, err)
	assert.Equal(t, "2024-05", endMonth)

	var successorID uuid.UUID
	var successorAmount int64
	var successorStart string
	err = testDB.Pool.QueryRow(ctx, `
		SELECT id, amount_cents, start_month FROM fixed_cashflows
		WHERE id <> $1 AND account_id = $2
	`, templateID, accountID).Scan(&successorID, &successorAmount, &successorStart)
	require.NoError(t, err)
	assert.Equal(t, int64(-170000), successorAmount)
	assert.Equal(t, "2024-06", successorStart)

	// Exceptions from the split month on follow the successor; earlier ones
	// stay with the closed template.
	oldExceptions, err := repo.ListExceptions(ctx, templateID)
	require.NoError(t, err)
	require.Len(t, oldExceptions, 1)
	assert.Equal(t, before, oldExceptions[0].Amount)

	newExceptions, err := repo.ListExceptions(ctx, successorID)
	require.NoError(t, err)
	require.Len(t, newExceptions, 1)
	assert.Equal(t, after, newExceptions[0].Amount)
	assert.Equal(t, "2024-07-05", newExceptions[0].ExceptionForDate.Format("2006-01-02"))
}

func TestTransactionRepository_ApplyPlan_TruncateAndDeleteTemplate(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)
	templateID := createTestTemplate(t, ctx, accountID, -9900, "Streaming")

	end := period.MonthKey{Year: 2024, Month: time.April}
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID:            templateID,
		TruncateTemplateAt: &end,
	}))

	var endMonth string
	err := testDB.Pool.QueryRow(ctx,
		`SELECT end_month FROM fixed_cashflows WHERE id = $1`, templateID).Scan(&endMonth)
	require.NoError(t, err)
	assert.Equal(t, "2024-04", endMonth)

	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		GroupID:        templateID,
		DeleteTemplate: true,
	}))

	var count int
	err = testDB.Pool.QueryRow(ctx,
		`SELECT count(*) FROM fixed_cashflows WHERE id = $1`, templateID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTransactionRepository_ApplyPlan_UpdateAndDeleteRows(t *testing.T) {
	repo, ctx := setupTest(t)
	accountID := createTestAccount(t, ctx)

	keep := &transaction.Transaction{
		ID: uuid.New(), AccountID: accountID, Kind: transaction.KindExpense,
		Amount: -1000, Date: date(2024, time.May, 1), Description: "Keep",
	}
	drop := &transaction.Transaction{
		ID: uuid.New(), AccountID: accountID, Kind: transaction.KindExpense,
		Amount: -2000, Date: date(2024, time.May, 2), Description: "Drop",
	}
	require.NoError(t, repo.CreateBatch(ctx, []*transaction.Transaction{keep, drop}))

	paid := true
	require.NoError(t, repo.ApplyPlan(ctx, &transaction.Plan{
		UpdateRows: []transaction.RowUpdate{
			{ID: keep.ID, Fields: transaction.FieldChange{Paid: &paid}},
		},
		DeleteRowIDs: []uuid.UUID{drop.ID},
	}))

	got, err := repo.GetByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)

	_, err = repo.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)
}

// Helper to create a credit card
func createTestCard(t *testing.T, ctx context.Context, accountID uuid.UUID) uuid.UUID {
	cardID := uuid.New()
	_, err := testDB.Pool.Exec(ctx, `
		INSERT INTO credit_cards (id, account_id, name, brand, limit_cents, closing_day, due_day, created_at, updated_at)
		VALUES ($1, $2, 'Test Card', 'visa', 500000, 20, 5, NOW(), NOW())
	`, cardID, accountID)
	require.NoError(t, err)
	return cardID
}
