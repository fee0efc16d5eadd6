package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// ===== USER METHODS =====

// joinSubjects и splitSubjects конвертируют набор предметов в строку колонки и обратно.
func joinSubjects(subjects []string) string {
	return strings.Join(subjects, ",")
}

func splitSubjects(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// CreateUserTx сохраняет нового пользователя внутри переданной транзакции.
// Баланс создаётся нулевым: стартовый бонус проходит через журнал той же транзакцией.
func (s *Storage) CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) error {
	const op = "storage.CreateUserTx"

	query := `INSERT INTO users (user_id, email, full_name, password_hash, role,
			      credit_balance, hourly_rate, phone, subjects, bio)
			  VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9)`
	_, err := tx.ExecContext(ctx, query,
		user.UserID, user.Email, user.FullName, user.PasswordHash, string(user.Role),
		user.HourlyRate, user.Phone, joinSubjects(user.Subjects), user.Bio)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по его идентификатору.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT user_id, email, full_name, password_hash, role,
			      credit_balance, hourly_rate, phone, subjects, bio, created_at
			  FROM users
			  WHERE user_id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userID), op)
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT user_id, email, full_name, password_hash, role,
			      credit_balance, hourly_rate, phone, subjects, bio, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var role, subjects string
	if err := row.Scan(&u.UserID, &u.Email, &u.FullName, &u.PasswordHash, &role,
		&u.CreditBalance, &u.HourlyRate, &u.Phone, &subjects, &u.Bio, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Role = models.Role(role)
	u.Subjects = splitSubjects(subjects)
	return u, nil
}

// UpdateProfile обновляет контактные поля профиля. Роль и баланс не трогаются.
func (s *Storage) UpdateProfile(ctx context.Context, userID, phone string, subjects []string, bio string) error {
	const op = "storage.UpdateProfile"

	query := `UPDATE users
			  SET phone = $1, subjects = $2, bio = $3
			  WHERE user_id = $4`
	res, err := s.DB.ExecContext(ctx, query, phone, joinSubjects(subjects), bio, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	return nil
}

// ListMentors возвращает карточки наставников, опционально отфильтрованные
// по вхождению подстроки в список предметов.
func (s *Storage) ListMentors(ctx context.Context, subject string) ([]*models.UserSummary, error) {
	const op = "storage.ListMentors"
	return s.listSummaries(ctx, op, []string{string(models.RoleMentor), string(models.RoleBoth)}, subject)
}

// ListLearners возвращает карточки учеников, опционально отфильтрованные по предмету.
func (s *Storage) ListLearners(ctx context.Context, subject string) ([]*models.UserSummary, error) {
	const op = "storage.ListLearners"
	return s.listSummaries(ctx, op, []string{string(models.RoleLearner), string(models.RoleBoth)}, subject)
}

func (s *Storage) listSummaries(ctx context.Context, op string, roles []string, subject string) ([]*models.UserSummary, error) {
	query := `SELECT user_id, full_name, subjects, hourly_rate
			  FROM users
			  WHERE role = ANY($1)
			    AND ($2 = '' OR subjects ILIKE '%' || $2 || '%')
			  ORDER BY full_name`
	rows, err := s.DB.QueryContext(ctx, query, roles, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserSummary
	for rows.Next() {
		var item models.UserSummary
		var subjects string
		if err := rows.Scan(&item.UserID, &item.FullName, &subjects, &item.HourlyRate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Subjects = splitSubjects(subjects)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
