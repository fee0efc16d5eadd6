// Package models содержит доменные структуры сервиса обмена знаниями:
// пользователей, учебные сессии и кредитные транзакции.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role роль пользователя, назначается при регистрации и не меняется.
type Role string

const (
	// RoleLearner пользователь может бронировать сессии как ученик.
	RoleLearner Role = "learner"
	// RoleMentor пользователь может проводить сессии как наставник.
	RoleMentor Role = "mentor"
	// RoleBoth пользователь совмещает обе роли.
	RoleBoth Role = "both"
)

// ParseRole проверяет строку роли и возвращает Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleLearner, RoleMentor, RoleBoth:
		return Role(s), true
	}
	return "", false
}

// User представляет зарегистрированного пользователя системы.
// CreditBalance — производное значение, кэш суммы транзакций пользователя;
// напрямую оно никогда не изменяется, только вместе с записью в журнал.
type User struct {
	UserID        string          // Уникальный идентификатор пользователя
	Email         string          // Электронная почта (уникальная)
	FullName      string          // Полное имя
	PasswordHash  string          // Хэш пароля пользователя
	Role          Role            // Роль: learner, mentor или both
	CreditBalance decimal.Decimal // Кэшированный баланс кредитов
	HourlyRate    decimal.Decimal // Ставка наставника, кредитов в час
	Phone         string
	Subjects      []string // Предметы, через запятую в хранилище
	Bio           string
	CreatedAt     time.Time
}

// UserSummary краткая карточка пользователя для выдачи подбора.
type UserSummary struct {
	UserID     string          `json:"user_id"`
	FullName   string          `json:"full_name"`
	Subjects   []string        `json:"subjects"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// DummyRegisterRequest используется для приёма данных регистрации из JSON-запроса.
type DummyRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`        // Электронная почта
	FullName string `json:"full_name" validate:"required"`          // Полное имя
	Password string `json:"password" validate:"required,min=8"`     // Пароль (минимум 8 символов)
	Role     string `json:"role" validate:"required"`               // learner, mentor или both
	Phone    string `json:"phone"`                                  // Телефон (опционально)
	Subjects string `json:"subjects"`                               // Предметы через запятую
	Bio      string `json:"bio"`                                    // О себе
}

// DummyProfileUpdate используется для приёма обновления профиля из JSON-запроса.
// Роль и баланс через профиль не меняются.
type DummyProfileUpdate struct {
	Phone    string `json:"phone"`
	Subjects string `json:"subjects"`
	Bio      string `json:"bio"`
}
