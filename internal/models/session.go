// Package models содержит доменные структуры сервиса обмена знаниями.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus статус учебной сессии.
type SessionStatus string

const (
	// StatusRequested сессия запрошена, но ещё не подтверждена.
	StatusRequested SessionStatus = "requested"
	// StatusScheduled сессия забронирована, кредиты ученика в эскроу.
	StatusScheduled SessionStatus = "scheduled"
	// StatusInProgress сессия идёт.
	StatusInProgress SessionStatus = "in_progress"
	// StatusCompleted сессия завершена, наставнику начислены кредиты. Терминальный статус.
	StatusCompleted SessionStatus = "completed"
	// StatusCancelled сессия отменена, эскроу возвращено ученику. Терминальный статус.
	StatusCancelled SessionStatus = "cancelled"
)

// Session учебная сессия между наставником и учеником.
// CreditCost вычисляется один раз при бронировании и далее не меняется.
type Session struct {
	SessionID       string          `json:"session_id"`
	MentorID        string          `json:"mentor_id"`
	LearnerID       string          `json:"learner_id"`
	Skill           *string         `json:"skill,omitempty"` // Предмет сессии (опционально)
	ScheduledTime   time.Time       `json:"scheduled_time"`
	DurationMinutes int             `json:"duration_minutes"`
	Status          SessionStatus   `json:"status"`
	CreditCost      decimal.Decimal `json:"credit_cost"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DummyBookRequest используется для приёма данных бронирования из JSON-запроса.
// Дата приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummyBookRequest struct {
	MentorID        string `json:"mentor_id" validate:"required,uuid"`       // Наставник
	Skill           string `json:"skill"`                                    // Предмет (опционально)
	ScheduledTime   string `json:"scheduled_time" validate:"required"`       // Дата в формате RFC3339
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"` // Длительность (>0)
}
