package card_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexfin/nexfin/internal/platform/card"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

type mockCardRepo struct {
	mock.Mock
}

func (m *mockCardRepo) Create(ctx context.Context, c *card.CreditCard) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCardRepo) GetByID(ctx context.Context, id uuid.UUID) (*card.CreditCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.CreditCard), args.Error(1)
}

func (m *mockCardRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*card.CreditCard, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.CreditCard), args.Error(1)
}

func (m *mockCardRepo) Update(ctx context.Context, c *card.CreditCard) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCardRepo) CreatePayment(ctx context.Context, p *card.InvoicePayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockCardRepo) ListPayments(ctx context.Context, cardID uuid.UUID, from, to period.MonthKey) ([]*card.InvoicePayment, error) {
	args := m.Called(ctx, cardID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.InvoicePayment), args.Error(1)
}

type mockTxStore struct {
	mock.Mock
}

func (m *mockTxStore) ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

type mockInvoiceCache struct {
	mock.Mock
}

func (m *mockInvoiceCache) Get(ctx context.Context, cardID uuid.UUID, month period.MonthKey) (*card.Invoice, bool) {
	args := m.Called(ctx, cardID, month)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*card.Invoice), args.Bool(1)
}

func (m *mockInvoiceCache) Set(ctx context.Context, inv *card.Invoice) {
	m.Called(ctx, inv)
}

func (m *mockInvoiceCache) InvalidateCard(ctx context.Context, cardID uuid.UUID) {
	m.Called(ctx, cardID)
}

func TestServiceInvoice_CacheHit(t *testing.T) {
	repo := new(mockCardRepo)
	cache := new(mockInvoiceCache)
	svc := card.NewService(repo, new(mockTxStore), cache)

	cardID := uuid.New()
	month := monthKey(t, "2024-05")
	cached := &card.Invoice{CreditCardID: cardID, Month: month, Total: money.Cents(-10000)}
	cache.On("Get", mock.Anything, cardID, month).Return(cached, true)

	inv, err := svc.Invoice(context.Background(), cardID, month)

	require.NoError(t, err)
	assert.Equal(t, cached, inv)
	repo.AssertNotCalled(t, "GetByID")
}

func TestServiceInvoice_CacheMissComputesAndStores(t *testing.T) {
	repo := new(mockCardRepo)
	txs := new(mockTxStore)
	cache := new(mockInvoiceCache)
	svc := card.NewService(repo, txs, cache)

	c := testCard(20, 10)
	month := monthKey(t, "2024-05")

	cache.On("Get", mock.Anything, c.ID, month).Return(nil, false)
	repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	txs.On("ListByAccount", mock.Anything, c.AccountID, mock.Anything).
		Return([]*transaction.Transaction{
			charge(c, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), money.Cents(-7500)),
		}, nil)
	repo.On("ListPayments", mock.Anything, c.ID, month, month).
		Return([]*card.InvoicePayment{}, nil)

	var stored *card.Invoice
	cache.On("Set", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*card.Invoice)
		}).
		Return()

	inv, err := svc.Invoice(context.Background(), c.ID, month)

	require.NoError(t, err)
	assert.Equal(t, money.Cents(-7500), inv.Total)
	require.NotNil(t, stored)
	assert.Equal(t, inv, stored)
}

func TestServiceInvoice_NoCacheStillComputes(t *testing.T) {
	repo := new(mockCardRepo)
	txs := new(mockTxStore)
	svc := card.NewService(repo, txs, nil)

	c := testCard(20, 10)
	month := monthKey(t, "2024-05")

	repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	txs.On("ListByAccount", mock.Anything, c.AccountID, mock.Anything).
		Return([]*transaction.Transaction{}, nil)
	repo.On("ListPayments", mock.Anything, c.ID, month, month).
		Return([]*card.InvoicePayment{}, nil)

	inv, err := svc.Invoice(context.Background(), c.ID, month)

	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), inv.Total)
}

func TestServicePayInvoice(t *testing.T) {
	repo := new(mockCardRepo)
	cache := new(mockInvoiceCache)
	svc := card.NewService(repo, new(mockTxStore), cache)

	c := testCard(20, 10)
	month := monthKey(t, "2024-05")

	repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("ListPayments", mock.Anything, c.ID, month, month).
		Return([]*card.InvoicePayment{}, nil)
	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateCard", mock.Anything, c.ID).Return()

	paidAt := time.Date(2024, time.June, 9, 12, 0, 0, 0, time.UTC)
	p, err := svc.PayInvoice(context.Background(), c.ID, month, money.Cents(10000), paidAt)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, month, p.Month)
	cache.AssertCalled(t, "InvalidateCard", mock.Anything, c.ID)
}

func TestServicePayInvoice_Duplicate(t *testing.T) {
	repo := new(mockCardRepo)
	svc := card.NewService(repo, new(mockTxStore), nil)

	c := testCard(20, 10)
	month := monthKey(t, "2024-05")

	repo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("ListPayments", mock.Anything, c.ID, month, month).
		Return([]*card.InvoicePayment{
			{ID: uuid.New(), CreditCardID: c.ID, Month: month},
		}, nil)

	_, err := svc.PayInvoice(context.Background(), c.ID, month, money.Cents(10000), time.Now())

	assert.ErrorIs(t, err, card.ErrDuplicatePayment)
	repo.AssertNotCalled(t, "CreatePayment")
}

func TestServicePayInvoice_NonPositiveAmount(t *testing.T) {
	svc := card.NewService(new(mockCardRepo), new(mockTxStore), nil)

	_, err := svc.PayInvoice(context.Background(), uuid.New(), monthKey(t, "2024-05"), money.Cents(0), time.Now())

	assert.ErrorIs(t, err, card.ErrInvalidPayment)
}
