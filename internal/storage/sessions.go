package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// ===== SESSION METHODS =====

// CreateSessionTx сохраняет новую сессию внутри переданной транзакции,
// той же транзакцией, что и эскроу-списание ученика.
func (s *Storage) CreateSessionTx(ctx context.Context, tx *sql.Tx, sess models.Session) error {
	const op = "storage.CreateSessionTx"

	query := `INSERT INTO sessions (session_id, mentor_id, learner_id, skill,
			      scheduled_time, duration_minutes, status, credit_cost)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		sess.SessionID, sess.MentorID, sess.LearnerID, sess.Skill,
		sess.ScheduledTime, sess.DurationMinutes, string(sess.Status), sess.CreditCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSession возвращает сессию по её идентификатору.
func (s *Storage) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "storage.GetSession"

	query := `SELECT session_id, mentor_id, learner_id, skill, scheduled_time,
			      duration_minutes, status, credit_cost, created_at
			  FROM sessions
			  WHERE session_id = $1`
	sess := &models.Session{}
	var skill sql.NullString
	var status string
	err := s.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&sess.SessionID, &sess.MentorID, &sess.LearnerID, &skill, &sess.ScheduledTime,
		&sess.DurationMinutes, &status, &sess.CreditCost, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if skill.Valid {
		sess.Skill = &skill.String
	}
	sess.Status = models.SessionStatus(status)
	return sess, nil
}

// CompareAndSetStatusTx атомарно переводит сессию в next, только если её
// текущий статус входит в expected. Возвращает false, если сессия не найдена
// или статус уже изменён конкурентной операцией — проигравший узнаёт об этом
// по нулю затронутых строк, а не по устаревшему чтению.
func (s *Storage) CompareAndSetStatusTx(ctx context.Context, tx *sql.Tx, sessionID string,
	expected []models.SessionStatus, next models.SessionStatus) (bool, error) {
	const op = "storage.CompareAndSetStatusTx"

	expectedStrs := make([]string, len(expected))
	for i, st := range expected {
		expectedStrs[i] = string(st)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = $1 WHERE session_id = $2 AND status = ANY($3)`,
		string(next), sessionID, expectedStrs)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected == 1, nil
}

// ListSessionsByUser возвращает сессии, где пользователь — наставник или ученик,
// отфильтрованные по статусам.
func (s *Storage) ListSessionsByUser(ctx context.Context, userID string,
	statuses []models.SessionStatus) ([]*models.Session, error) {
	const op = "storage.ListSessionsByUser"

	statusStrs := make([]string, len(statuses))
	for i, st := range statuses {
		statusStrs[i] = string(st)
	}
	query := `SELECT session_id, mentor_id, learner_id, skill, scheduled_time,
			      duration_minutes, status, credit_cost, created_at
			  FROM sessions
			  WHERE (mentor_id = $1 OR learner_id = $1) AND status = ANY($2)
			  ORDER BY scheduled_time`
	rows, err := s.DB.QueryContext(ctx, query, userID, statusStrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Session
	for rows.Next() {
		var sess models.Session
		var skill sql.NullString
		var status string
		if err := rows.Scan(&sess.SessionID, &sess.MentorID, &sess.LearnerID, &skill,
			&sess.ScheduledTime, &sess.DurationMinutes, &status, &sess.CreditCost,
			&sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if skill.Valid {
			sess.Skill = &skill.String
		}
		sess.Status = models.SessionStatus(status)
		result = append(result, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountSessionsByStatus возвращает число сессий пользователя в заданном статусе
// (счётчик «предстоящих сессий» на дашборде).
func (s *Storage) CountSessionsByStatus(ctx context.Context, userID string,
	status models.SessionStatus) (int, error) {
	const op = "storage.CountSessionsByStatus"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions
		 WHERE (mentor_id = $1 OR learner_id = $1) AND status = $2`,
		userID, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
