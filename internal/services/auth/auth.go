// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	"github.com/magabrotheeeer/skillswap/internal/lib/password"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Стартовый бонус нового аккаунта, как и текст записи, зафиксированы:
// ровно одна bonus-транзакция на пользователя, создаётся при регистрации.
var welcomeBonus = decimal.RequireFromString("50.00")

const welcomeBonusDescription = "Welcome bonus for new account"

// Ставка наставника по умолчанию, кредитов в час.
var defaultHourlyRate = decimal.RequireFromString("15.00")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUserTx сохраняет нового пользователя внутри переданной транзакции.
	CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) error
	// GetUser возвращает пользователя по ID или ошибку, если не найден.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile обновляет контактные поля профиля.
	UpdateProfile(ctx context.Context, userID, phone string, subjects []string, bio string) error
}

// Ledger описывает запись в кредитный журнал внутри открытой транзакции.
type Ledger interface {
	ApplyTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error
}

// TxManager выполняет функцию внутри одной транзакции базы данных.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT и профиль.
type AuthService struct {
	users    UserRepository
	ledger   Ledger
	txm      TxManager
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, ledger Ledger, txm TxManager,
	jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		ledger:   ledger,
		txm:      txm,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и стартовым
// бонусом. Создание пользователя и bonus-запись журнала фиксируются одной
// транзакцией: либо у пользователя сразу есть бонус, либо пользователя нет.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegisterRequest) (string, error) {
	const op = "services.auth.Register"

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return "", fmt.Errorf("%s: %w: unknown role %q", op, models.ErrInvalidInput, req.Role)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hashed,
		Role:         role,
		HourlyRate:   defaultHourlyRate,
		Phone:        req.Phone,
		Subjects:     splitCSV(req.Subjects),
		Bio:          req.Bio,
	}

	err = s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.users.CreateUserTx(ctx, tx, user); err != nil {
			return err
		}
		return s.ledger.ApplyTx(ctx, tx, models.CreditTransaction{
			UserID:      user.UserID,
			Amount:      welcomeBonus,
			Kind:        models.KindBonus,
			Description: welcomeBonusDescription,
		})
	})
	if err != nil {
		return "", err
	}

	s.log.Info("registered new user",
		slog.String("user_id", user.UserID), slog.String("role", string(role)))
	return user.UserID, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if !password.Verify(rawPassword, user.PasswordHash) {
		return "", nil, errors.New("invalid credentials")
	}
	token, err := s.jwtMaker.GenerateToken(user.UserID, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает идентификатор пользователя и роль.
func (s *AuthService) ValidateToken(_ context.Context, token string) (userID, role string, err error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}

// UpdateProfile обновляет контактные поля профиля. Роль после регистрации
// не меняется, пути её изменения нет.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.DummyProfileUpdate) error {
	if err := s.users.UpdateProfile(ctx, userID, req.Phone, splitCSV(req.Subjects), req.Bio); err != nil {
		return err
	}
	s.log.Info("updated profile", slog.String("user_id", userID))
	return nil
}

// GetUser возвращает пользователя по ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
