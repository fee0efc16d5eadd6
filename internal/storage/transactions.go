package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/shopspring/decimal"
)

// ===== CREDIT TRANSACTION METHODS =====

// AppendTransactionTx дописывает запись журнала и синхронно обновляет
// кэшированный баланс пользователя внутри переданной транзакции.
//
// Строка пользователя блокируется через SELECT ... FOR UPDATE, поэтому два
// конкурентных списания не могут оба пройти проверку по устаревшему балансу.
// Если списание сделало бы баланс отрицательным, возвращается
// models.ErrInsufficientFunds и ни запись, ни баланс не сохраняются.
func (s *Storage) AppendTransactionTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error {
	const op = "storage.AppendTransactionTx"

	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT credit_balance FROM users WHERE user_id = $1 FOR UPDATE`,
		t.UserID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	newBalance := balance.Add(t.Amount)
	if newBalance.IsNegative() {
		return fmt.Errorf("%s: %w", op, models.ErrInsufficientFunds)
	}

	query := `INSERT INTO credit_transactions
			      (transaction_id, user_id, amount, kind, description, session_id)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query,
		t.TransactionID, t.UserID, t.Amount, string(t.Kind), t.Description, t.SessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET credit_balance = $1 WHERE user_id = $2`,
		newBalance, t.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetBalances возвращает кэшированный баланс и пересчитанную сумму журнала
// одним запросом, чтобы чтение видело согласованный снимок.
func (s *Storage) GetBalances(ctx context.Context, userID string) (cached, sum decimal.Decimal, err error) {
	const op = "storage.GetBalances"

	query := `SELECT u.credit_balance,
			      COALESCE((SELECT SUM(t.amount) FROM credit_transactions t
			                WHERE t.user_id = u.user_id), 0)
			  FROM users u
			  WHERE u.user_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&cached, &sum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return cached, sum, nil
}

// SumByUser пересчитывает сумму всех транзакций пользователя.
func (s *Storage) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	const op = "storage.SumByUser"

	var sum decimal.Decimal
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id = $1`,
		userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return sum, nil
}

// ListTransactions возвращает записи журнала пользователя, новые первыми.
func (s *Storage) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	const op = "storage.ListTransactions"

	query := `SELECT transaction_id, user_id, amount, kind, description, session_id, created_at
			  FROM credit_transactions
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		var kind string
		var sessionID sql.NullString
		if err := rows.Scan(&t.TransactionID, &t.UserID, &t.Amount, &kind,
			&t.Description, &sessionID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t.Kind = models.TransactionKind(kind)
		if sessionID.Valid {
			t.SessionID = &sessionID.String
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
