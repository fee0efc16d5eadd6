// Package services содержит бизнес-логику планировщика учебных сессий.
//
// Планировщик ведёт конечный автомат сессии:
//
//	requested → scheduled → in_progress → completed
//	scheduled / in_progress → cancelled
//
// completed и cancelled — терминальные статусы. Каждый переход, затрагивающий
// кредиты, выполняется одной транзакцией базы вместе с записью журнала:
// эскроу-списание при бронировании, начисление наставнику при завершении,
// возврат ученику при отмене.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/skillswap/internal/lib/capability"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/metrics"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// SessionRepository определяет методы для работы с сессиями в хранилище.
type SessionRepository interface {
	// CreateSessionTx сохраняет новую сессию внутри переданной транзакции.
	CreateSessionTx(ctx context.Context, tx *sql.Tx, sess models.Session) error
	// GetSession возвращает сессию по ID.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	// CompareAndSetStatusTx атомарно переводит статус, если текущий входит в expected.
	CompareAndSetStatusTx(ctx context.Context, tx *sql.Tx, sessionID string,
		expected []models.SessionStatus, next models.SessionStatus) (bool, error)
	// ListSessionsByUser возвращает сессии пользователя по статусам.
	ListSessionsByUser(ctx context.Context, userID string, statuses []models.SessionStatus) ([]*models.Session, error)
}

// UserRepository определяет чтение пользователей для авторизации сторон.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Ledger описывает запись в кредитный журнал внутри открытой транзакции.
type Ledger interface {
	ApplyTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error
}

// TxManager выполняет функцию внутри одной транзакции базы данных.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// EventPublisher публикует события жизненного цикла сессии.
type EventPublisher interface {
	PublishSessionEvent(event models.SessionEvent) error
}

// SchedulerService реализует операции над жизненным циклом сессий.
type SchedulerService struct {
	sessions  SessionRepository
	users     UserRepository
	ledger    Ledger
	txm       TxManager
	publisher EventPublisher
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(sessions SessionRepository, users UserRepository,
	ledger Ledger, txm TxManager, publisher EventPublisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		sessions:  sessions,
		users:     users,
		ledger:    ledger,
		txm:       txm,
		publisher: publisher,
		log:       log,
	}
}

// BookSession бронирует сессию ученика с наставником.
//
// Стоимость вычисляется один раз: duration/60 × ставка наставника — и
// замораживается в сессии. Эскроу-списание у ученика и создание сессии
// фиксируются одной транзакцией: если кредитов не хватает, сессия не создаётся.
func (s *SchedulerService) BookSession(ctx context.Context, learnerID string,
	req models.DummyBookRequest) (string, error) {
	const op = "services.scheduler.BookSession"

	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		return "", fmt.Errorf("%s: %w: invalid scheduled time", op, models.ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return "", fmt.Errorf("%s: %w: duration must be positive", op, models.ErrInvalidInput)
	}
	if learnerID == req.MentorID {
		return "", fmt.Errorf("%s: %w: learner and mentor must differ", op, models.ErrInvalidInput)
	}

	learner, err := s.users.GetUser(ctx, learnerID)
	if err != nil {
		return "", err
	}
	if !capability.Resolve(learner.Role).CanLearn {
		return "", fmt.Errorf("%s: %w: actor cannot learn", op, models.ErrUnauthorizedActor)
	}

	mentor, err := s.users.GetUser(ctx, req.MentorID)
	if err != nil {
		return "", err
	}
	if !capability.Resolve(mentor.Role).CanMentor {
		return "", fmt.Errorf("%s: %w: user is not a mentor", op, models.ErrUnauthorizedActor)
	}

	creditCost := mentor.HourlyRate.
		Mul(decimal.NewFromInt(int64(req.DurationMinutes))).
		Div(decimal.NewFromInt(60)).
		Round(2)

	sess := models.Session{
		SessionID:       uuid.NewString(),
		MentorID:        mentor.UserID,
		LearnerID:       learner.UserID,
		ScheduledTime:   scheduledTime,
		DurationMinutes: req.DurationMinutes,
		Status:          models.StatusScheduled,
		CreditCost:      creditCost,
		CreatedAt:       time.Now().UTC(),
	}
	if req.Skill != "" {
		sess.Skill = &req.Skill
	}

	err = s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.sessions.CreateSessionTx(ctx, tx, sess); err != nil {
			return err
		}
		if creditCost.IsPositive() {
			return s.ledger.ApplyTx(ctx, tx, models.CreditTransaction{
				UserID:      learner.UserID,
				Amount:      creditCost.Neg(),
				Kind:        models.KindSpend,
				Description: "Escrow for tutoring session",
				SessionID:   &sess.SessionID,
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.SessionsBooked.Inc()
	s.log.Info("booked session",
		slog.String("session_id", sess.SessionID),
		slog.String("learner_id", learner.UserID),
		slog.String("mentor_id", mentor.UserID),
		slog.String("credit_cost", creditCost.String()))

	s.publish(models.SessionEvent{
		Type:         models.EventSessionBooked,
		SessionID:    sess.SessionID,
		MentorID:     mentor.UserID,
		LearnerID:    learner.UserID,
		MentorEmail:  mentor.Email,
		LearnerEmail: learner.Email,
		MentorName:   mentor.FullName,
		LearnerName:  learner.FullName,
		CreditCost:   creditCost,
		OccurredAt:   time.Now().UTC(),
	})
	return sess.SessionID, nil
}

// StartSession переводит сессию из scheduled в in_progress. Начать сессию
// может только её наставник; кредиты при этом не двигаются.
func (s *SchedulerService) StartSession(ctx context.Context, sessionID, actorID string) error {
	const op = "services.scheduler.StartSession"

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if actorID != sess.MentorID {
		return fmt.Errorf("%s: %w: only the mentor may start the session", op, models.ErrUnauthorizedActor)
	}

	return s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.sessions.CompareAndSetStatusTx(ctx, tx, sessionID,
			[]models.SessionStatus{models.StatusScheduled}, models.StatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidStateTransition)
		}
		return nil
	})
}

// CompleteSession завершает сессию и начисляет её стоимость наставнику.
//
// Переход статуса — compare-and-set: при конкурентном завершении и отмене
// только одна операция застаёт scheduled/in_progress, проигравшая получает
// ErrInvalidStateTransition и журнал не трогает. Эскроу ученика не
// возвращается — оно уже оплатило начисление наставника.
func (s *SchedulerService) CompleteSession(ctx context.Context, sessionID, actorID string) error {
	const op = "services.scheduler.CompleteSession"

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if actorID != sess.MentorID {
		return fmt.Errorf("%s: %w: only the mentor may complete the session", op, models.ErrUnauthorizedActor)
	}

	err = s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.sessions.CompareAndSetStatusTx(ctx, tx, sessionID,
			[]models.SessionStatus{models.StatusScheduled, models.StatusInProgress},
			models.StatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidStateTransition)
		}
		if sess.CreditCost.IsPositive() {
			return s.ledger.ApplyTx(ctx, tx, models.CreditTransaction{
				UserID:      sess.MentorID,
				Amount:      sess.CreditCost,
				Kind:        models.KindEarn,
				Description: "Completed tutoring session",
				SessionID:   &sess.SessionID,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.SessionsCompleted.Inc()
	s.log.Info("completed session", slog.String("session_id", sessionID))
	s.publishLifecycle(ctx, models.EventSessionCompleted, sess)
	return nil
}

// CancelSession отменяет сессию и возвращает эскроу ученику.
// Отменить может любая из сторон сессии.
func (s *SchedulerService) CancelSession(ctx context.Context, sessionID, actorID string) error {
	const op = "services.scheduler.CancelSession"

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if actorID != sess.MentorID && actorID != sess.LearnerID {
		return fmt.Errorf("%s: %w: actor is not a party to the session", op, models.ErrUnauthorizedActor)
	}

	err = s.txm.WithinTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.sessions.CompareAndSetStatusTx(ctx, tx, sessionID,
			[]models.SessionStatus{models.StatusScheduled, models.StatusInProgress},
			models.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidStateTransition)
		}
		if sess.CreditCost.IsPositive() {
			return s.ledger.ApplyTx(ctx, tx, models.CreditTransaction{
				UserID:      sess.LearnerID,
				Amount:      sess.CreditCost,
				Kind:        models.KindRefund,
				Description: "Refund for cancelled session",
				SessionID:   &sess.SessionID,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.SessionsCancelled.Inc()
	s.log.Info("cancelled session", slog.String("session_id", sessionID))
	s.publishLifecycle(ctx, models.EventSessionCancelled, sess)
	return nil
}

// ListSessions возвращает сессии пользователя. Пустой фильтр статусов
// означает предстоящие: scheduled и in_progress.
func (s *SchedulerService) ListSessions(ctx context.Context, userID string,
	statuses []models.SessionStatus) ([]*models.Session, error) {
	if len(statuses) == 0 {
		statuses = []models.SessionStatus{models.StatusScheduled, models.StatusInProgress}
	}
	return s.sessions.ListSessionsByUser(ctx, userID, statuses)
}

func (s *SchedulerService) publishLifecycle(ctx context.Context, eventType string, sess *models.Session) {
	event := models.SessionEvent{
		Type:       eventType,
		SessionID:  sess.SessionID,
		MentorID:   sess.MentorID,
		LearnerID:  sess.LearnerID,
		CreditCost: sess.CreditCost,
		OccurredAt: time.Now().UTC(),
	}
	// Почта сторон нужна только для уведомления, её отсутствие не ошибка.
	if mentor, err := s.users.GetUser(ctx, sess.MentorID); err == nil {
		event.MentorEmail = mentor.Email
		event.MentorName = mentor.FullName
	}
	if learner, err := s.users.GetUser(ctx, sess.LearnerID); err == nil {
		event.LearnerEmail = learner.Email
		event.LearnerName = learner.FullName
	}
	s.publish(event)
}

func (s *SchedulerService) publish(event models.SessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(event); err != nil {
		s.log.Warn("failed to publish session event",
			slog.String("type", event.Type),
			slog.String("session_id", event.SessionID), sl.Err(err))
	}
}
