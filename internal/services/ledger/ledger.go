// Package services содержит бизнес-логику кредитного журнала.
//
// Журнал только дописывается: единственный источник истины для балансов —
// сумма записей пользователя. Кэшированный баланс в строке пользователя
// обновляется той же транзакцией базы, что и запись журнала.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/skillswap/internal/metrics"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// TransactionRepository определяет методы для работы с журналом в хранилище.
type TransactionRepository interface {
	// AppendTransactionTx дописывает запись и обновляет кэшированный баланс
	// внутри переданной транзакции; списание ниже нуля возвращает
	// models.ErrInsufficientFunds без каких-либо изменений.
	AppendTransactionTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error
	// GetBalances возвращает кэшированный баланс и пересчитанную сумму журнала.
	GetBalances(ctx context.Context, userID string) (cached, sum decimal.Decimal, err error)
	// ListTransactions возвращает записи журнала пользователя, новые первыми.
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

// TxManager выполняет функцию внутри одной транзакции базы данных.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// LedgerService реализует операции кредитного журнала.
type LedgerService struct {
	repo TransactionRepository
	txm  TxManager
	log  *slog.Logger
}

// NewLedgerService создает новый экземпляр LedgerService.
func NewLedgerService(repo TransactionRepository, txm TxManager, log *slog.Logger) *LedgerService {
	return &LedgerService{
		repo: repo,
		txm:  txm,
		log:  log,
	}
}

// GetBalance возвращает баланс пользователя, пересчитанный из журнала.
// Если кэшированное значение разошлось с суммой записей, расхождение
// логируется и побеждает пересчитанная сумма.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	cached, sum, err := s.repo.GetBalances(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !cached.Equal(sum) {
		s.log.Warn("cached balance drifted from transaction log",
			slog.String("user_id", userID),
			slog.String("cached", cached.String()),
			slog.String("sum", sum.String()))
	}
	return sum, nil
}

// RecordTransaction дописывает одну запись журнала в собственной транзакции.
// Возвращает идентификатор созданной записи.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID string,
	amount decimal.Decimal, kind models.TransactionKind, description string,
	sessionID *string) (string, error) {

	t := models.CreditTransaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		Kind:          kind,
		Description:   description,
		SessionID:     sessionID,
		CreatedAt:     time.Now().UTC(),
	}
	err := s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.ApplyTx(ctx, tx, t)
	})
	if err != nil {
		return "", err
	}
	return t.TransactionID, nil
}

// ApplyTx дописывает запись журнала внутри уже открытой транзакции.
// Используется планировщиком сессий и регистрацией, чтобы запись журнала
// фиксировалась атомарно с изменением сессии или созданием пользователя.
func (s *LedgerService) ApplyTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error {
	const op = "services.ledger.ApplyTx"
	if t.Amount.IsZero() {
		return fmt.Errorf("%s: %w: zero amount", op, models.ErrInvalidInput)
	}
	if t.TransactionID == "" {
		t.TransactionID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.AppendTransactionTx(ctx, tx, t); err != nil {
		return err
	}

	metrics.TransactionsRecorded.WithLabelValues(string(t.Kind)).Inc()
	s.log.Info("recorded credit transaction",
		slog.String("transaction_id", t.TransactionID),
		slog.String("user_id", t.UserID),
		slog.String("amount", t.Amount.String()),
		slog.String("kind", string(t.Kind)))
	return nil
}

// History возвращает записи журнала пользователя с пагинацией.
func (s *LedgerService) History(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
