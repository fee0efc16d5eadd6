package services_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
	services "github.com/magabrotheeeer/skillswap/internal/services/ledger"
)

// Мок для TransactionRepository
type TransactionRepoMock struct {
	mock.Mock
}

func (m *TransactionRepoMock) AppendTransactionTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *TransactionRepoMock) GetBalances(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *TransactionRepoMock) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CreditTransaction), args.Error(1)
}

// Фейковый TxManager, выполняющий функцию без настоящей транзакции
type TxManagerFake struct{}

func (TxManagerFake) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLedgerService_GetBalance(t *testing.T) {
	tests := []struct {
		name    string
		cached  string
		sum     string
		want    string
	}{
		{
			name:   "cached matches sum",
			cached: "50.00",
			sum:    "50.00",
			want:   "50.00",
		},
		{
			name:   "drifted cache loses to recomputed sum",
			cached: "50.00",
			sum:    "35.00",
			want:   "35.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(TransactionRepoMock)
			repo.On("GetBalances", mock.Anything, "user-1").
				Return(decimal.RequireFromString(tt.cached), decimal.RequireFromString(tt.sum), nil).Once()

			svc := services.NewLedgerService(repo, TxManagerFake{}, newTestLogger())

			got, err := svc.GetBalance(context.Background(), "user-1")
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"want %s, got %s", tt.want, got)

			repo.AssertExpectations(t)
		})
	}
}

func TestLedgerService_RecordTransaction(t *testing.T) {
	repo := new(TransactionRepoMock)
	repo.On("AppendTransactionTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tr models.CreditTransaction) bool {
		return tr.UserID == "user-1" &&
			tr.Kind == models.KindBonus &&
			tr.TransactionID != "" &&
			!tr.CreatedAt.IsZero()
	})).Return(nil).Once()

	svc := services.NewLedgerService(repo, TxManagerFake{}, newTestLogger())

	id, err := svc.RecordTransaction(context.Background(), "user-1",
		decimal.RequireFromString("50.00"), models.KindBonus, "Welcome bonus for new account", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	repo.AssertExpectations(t)
}

func TestLedgerService_ApplyTx_ZeroAmount(t *testing.T) {
	repo := new(TransactionRepoMock)
	svc := services.NewLedgerService(repo, TxManagerFake{}, newTestLogger())

	err := svc.ApplyTx(context.Background(), nil, models.CreditTransaction{
		UserID: "user-1",
		Amount: decimal.Zero,
		Kind:   models.KindSpend,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	repo.AssertNotCalled(t, "AppendTransactionTx")
}

func TestLedgerService_ApplyTx_InsufficientFunds(t *testing.T) {
	repo := new(TransactionRepoMock)
	repo.On("AppendTransactionTx", mock.Anything, mock.Anything, mock.Anything).
		Return(models.ErrInsufficientFunds).Once()

	svc := services.NewLedgerService(repo, TxManagerFake{}, newTestLogger())

	err := svc.ApplyTx(context.Background(), nil, models.CreditTransaction{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-100.00"),
		Kind:   models.KindSpend,
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	repo.AssertExpectations(t)
}

func TestLedgerService_History_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOff   int
	}{
		{name: "defaults", limit: 0, offset: -5, wantLimit: 20, wantOff: 0},
		{name: "too large limit", limit: 500, offset: 10, wantLimit: 20, wantOff: 10},
		{name: "valid values pass through", limit: 50, offset: 100, wantLimit: 50, wantOff: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(TransactionRepoMock)
			repo.On("ListTransactions", mock.Anything, "user-1", tt.wantLimit, tt.wantOff).
				Return([]*models.CreditTransaction{}, nil).Once()

			svc := services.NewLedgerService(repo, TxManagerFake{}, newTestLogger())

			_, err := svc.History(context.Background(), "user-1", tt.limit, tt.offset)
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
