package models

import "errors"

// Ошибки доменного уровня. Сервисы возвращают их обёрнутыми через
// fmt.Errorf("%s: %w", op, err), обработчики сопоставляют через errors.Is.
var (
	// ErrInsufficientFunds списание сделало бы баланс отрицательным.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidStateTransition операция недопустима из текущего статуса сессии.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrUnauthorizedActor у вызывающего нет нужной роли или прав на сессию.
	ErrUnauthorizedActor = errors.New("unauthorized actor")
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound сессия не найдена.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmailTaken пользователь с такой почтой уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidInput входные данные не прошли доменную проверку.
	ErrInvalidInput = errors.New("invalid input")
)
