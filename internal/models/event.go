package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Тип события жизненного цикла сессии для очереди уведомлений.
const (
	EventSessionBooked    = "session.booked"
	EventSessionCompleted = "session.completed"
	EventSessionCancelled = "session.cancelled"
)

// SessionEvent сообщение о переходе сессии, публикуется в RabbitMQ
// и потребляется сервисом уведомлений.
type SessionEvent struct {
	Type         string          `json:"type"`
	SessionID    string          `json:"session_id"`
	MentorID     string          `json:"mentor_id"`
	LearnerID    string          `json:"learner_id"`
	MentorEmail  string          `json:"mentor_email,omitempty"`
	LearnerEmail string          `json:"learner_email,omitempty"`
	MentorName   string          `json:"mentor_name,omitempty"`
	LearnerName  string          `json:"learner_name,omitempty"`
	CreditCost   decimal.Decimal `json:"credit_cost"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
