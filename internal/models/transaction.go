// Package models содержит доменные структуры сервиса обмена знаниями.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind тип кредитной транзакции.
type TransactionKind string

const (
	// KindBonus стартовое начисление при регистрации.
	KindBonus TransactionKind = "bonus"
	// KindEarn начисление наставнику за проведённую сессию.
	KindEarn TransactionKind = "earn"
	// KindSpend списание у ученика при бронировании (эскроу).
	KindSpend TransactionKind = "spend"
	// KindRefund возврат эскроу ученику при отмене сессии.
	KindRefund TransactionKind = "refund"
)

// CreditTransaction одна запись журнала кредитов. Журнал только дописывается:
// записи никогда не изменяются и не удаляются, исправления — новые
// компенсирующие записи.
type CreditTransaction struct {
	TransactionID string          `json:"transaction_id"`       // Уникальный идентификатор записи
	UserID        string          `json:"user_id"`              // Владелец записи
	Amount        decimal.Decimal `json:"amount"`               // Сумма со знаком: плюс — начисление, минус — списание
	Kind          TransactionKind `json:"kind"`                 // bonus, earn, spend или refund
	Description   string          `json:"description"`
	SessionID     *string         `json:"session_id,omitempty"` // Сессия, к которой относится запись (опционально)
	CreatedAt     time.Time       `json:"created_at"`
}
