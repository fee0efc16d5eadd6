package services_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/skillswap/internal/models"
	services "github.com/magabrotheeeer/skillswap/internal/services/scheduler"
)

// Мок для SessionRepository
type SessionRepoMock struct {
	mock.Mock
}

func (m *SessionRepoMock) CreateSessionTx(ctx context.Context, tx *sql.Tx, sess models.Session) error {
	args := m.Called(ctx, tx, sess)
	return args.Error(0)
}

func (m *SessionRepoMock) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *SessionRepoMock) CompareAndSetStatusTx(ctx context.Context, tx *sql.Tx, sessionID string,
	expected []models.SessionStatus, next models.SessionStatus) (bool, error) {
	args := m.Called(ctx, tx, sessionID, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepoMock) ListSessionsByUser(ctx context.Context, userID string,
	statuses []models.SessionStatus) ([]*models.Session, error) {
	args := m.Called(ctx, userID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для Ledger
type LedgerMock struct {
	mock.Mock
}

func (m *LedgerMock) ApplyTx(ctx context.Context, tx *sql.Tx, t models.CreditTransaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

// Фейковый TxManager, выполняющий функцию без настоящей транзакции
type TxManagerFake struct{}

func (TxManagerFake) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testLearner() *models.User {
	return &models.User{
		UserID:   "learner-1",
		Email:    "learner@example.com",
		FullName: "Test Learner",
		Role:     models.RoleLearner,
	}
}

func testMentor() *models.User {
	return &models.User{
		UserID:     "mentor-1",
		Email:      "mentor@example.com",
		FullName:   "Test Mentor",
		Role:       models.RoleMentor,
		HourlyRate: decimal.RequireFromString("20.00"),
	}
}

func TestSchedulerService_BookSession(t *testing.T) {
	scheduledTime := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name       string
		learnerID  string
		req        models.DummyBookRequest
		setupMocks func(sessions *SessionRepoMock, users *UserRepoMock, ledger *LedgerMock)
		wantErr    error
	}{
		{
			name:      "successful booking freezes escrow",
			learnerID: "learner-1",
			req: models.DummyBookRequest{
				MentorID:        "mentor-1",
				Skill:           "go",
				ScheduledTime:   scheduledTime,
				DurationMinutes: 90,
			},
			setupMocks: func(sessions *SessionRepoMock, users *UserRepoMock, ledger *LedgerMock) {
				users.On("GetUser", mock.Anything, "learner-1").Return(testLearner(), nil).Once()
				users.On("GetUser", mock.Anything, "mentor-1").Return(testMentor(), nil).Once()
				// 90 минут по 20.00 в час = 30.00
				sessions.On("CreateSessionTx", mock.Anything, mock.Anything, mock.MatchedBy(func(sess models.Session) bool {
					return sess.Status == models.StatusScheduled &&
						sess.CreditCost.Equal(decimal.RequireFromString("30.00"))
				})).Return(nil).Once()
				ledger.On("ApplyTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tr models.CreditTransaction) bool {
					return tr.UserID == "learner-1" &&
						tr.Kind == models.KindSpend &&
						tr.Amount.Equal(decimal.RequireFromString("-30.00")) &&
						tr.SessionID != nil
				})).Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name:      "invalid scheduled time",
			learnerID: "learner-1",
			req: models.DummyBookRequest{
				MentorID:        "mentor-1",
				ScheduledTime:   "not-a-date",
				DurationMinutes: 60,
			},
			setupMocks: func(_ *SessionRepoMock, _ *UserRepoMock, _ *LedgerMock) {},
			wantErr:    models.ErrInvalidInput,
		},
		{
			name:      "learner books own session",
			learnerID: "mentor-1",
			req: models.DummyBookRequest{
				MentorID:        "mentor-1",
				ScheduledTime:   scheduledTime,
				DurationMinutes: 60,
			},
			setupMocks: func(_ *SessionRepoMock, _ *UserRepoMock, _ *LedgerMock) {},
			wantErr:    models.ErrInvalidInput,
		},
		{
			name:      "target user is not a mentor",
			learnerID: "learner-1",
			req: models.DummyBookRequest{
				MentorID:        "learner-2",
				ScheduledTime:   scheduledTime,
				DurationMinutes: 60,
			},
			setupMocks: func(_ *SessionRepoMock, users *UserRepoMock, _ *LedgerMock) {
				users.On("GetUser", mock.Anything, "learner-1").Return(testLearner(), nil).Once()
				other := testLearner()
				other.UserID = "learner-2"
				users.On("GetUser", mock.Anything, "learner-2").Return(other, nil).Once()
			},
			wantErr: models.ErrUnauthorizedActor,
		},
		{
			name:      "actor cannot learn",
			learnerID: "mentor-2",
			req: models.DummyBookRequest{
				MentorID:        "mentor-1",
				ScheduledTime:   scheduledTime,
				DurationMinutes: 60,
			},
			setupMocks: func(_ *SessionRepoMock, users *UserRepoMock, _ *LedgerMock) {
				other := testMentor()
				other.UserID = "mentor-2"
				users.On("GetUser", mock.Anything, "mentor-2").Return(other, nil).Once()
			},
			wantErr: models.ErrUnauthorizedActor,
		},
		{
			name:      "insufficient funds keeps session uncreated",
			learnerID: "learner-1",
			req: models.DummyBookRequest{
				MentorID:        "mentor-1",
				ScheduledTime:   scheduledTime,
				DurationMinutes: 60,
			},
			setupMocks: func(sessions *SessionRepoMock, users *UserRepoMock, ledger *LedgerMock) {
				users.On("GetUser", mock.Anything, "learner-1").Return(testLearner(), nil).Once()
				users.On("GetUser", mock.Anything, "mentor-1").Return(testMentor(), nil).Once()
				sessions.On("CreateSessionTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
				ledger.On("ApplyTx", mock.Anything, mock.Anything, mock.Anything).
					Return(models.ErrInsufficientFunds).Once()
			},
			wantErr: models.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(SessionRepoMock)
			users := new(UserRepoMock)
			ledger := new(LedgerMock)
			tt.setupMocks(sessions, users, ledger)

			svc := services.NewSchedulerService(sessions, users, ledger, TxManagerFake{}, nil, newTestLogger())

			sessionID, err := svc.BookSession(context.Background(), tt.learnerID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sessionID)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, sessionID)
			}

			sessions.AssertExpectations(t)
			users.AssertExpectations(t)
			ledger.AssertExpectations(t)
		})
	}
}

func testSession() *models.Session {
	return &models.Session{
		SessionID:       "session-1",
		MentorID:        "mentor-1",
		LearnerID:       "learner-1",
		ScheduledTime:   time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
		Status:          models.StatusScheduled,
		CreditCost:      decimal.RequireFromString("20.00"),
	}
}

func TestSchedulerService_StartSession(t *testing.T) {
	tests := []struct {
		name       string
		actorID    string
		setupMocks func(sessions *SessionRepoMock)
		wantErr    error
	}{
		{
			name:    "mentor starts scheduled session",
			actorID: "mentor-1",
			setupMocks: func(sessions *SessionRepoMock) {
				sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()
				sessions.On("CompareAndSetStatusTx", mock.Anything, mock.Anything, "session-1",
					[]models.SessionStatus{models.StatusScheduled}, models.StatusInProgress).
					Return(true, nil).Once()
			},
			wantErr: nil,
		},
		{
			name:    "learner may not start",
			actorID: "learner-1",
			setupMocks: func(sessions *SessionRepoMock) {
				sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()
			},
			wantErr: models.ErrUnauthorizedActor,
		},
		{
			name:    "session already in progress",
			actorID: "mentor-1",
			setupMocks: func(sessions *SessionRepoMock) {
				sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()
				sessions.On("CompareAndSetStatusTx", mock.Anything, mock.Anything, "session-1",
					[]models.SessionStatus{models.StatusScheduled}, models.StatusInProgress).
					Return(false, nil).Once()
			},
			wantErr: models.ErrInvalidStateTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(SessionRepoMock)
			users := new(UserRepoMock)
			ledger := new(LedgerMock)
			tt.setupMocks(sessions)

			svc := services.NewSchedulerService(sessions, users, ledger, TxManagerFake{}, nil, newTestLogger())

			err := svc.StartSession(context.Background(), "session-1", tt.actorID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			sessions.AssertExpectations(t)
			ledger.AssertNotCalled(t, "ApplyTx")
		})
	}
}

func TestSchedulerService_CompleteSession(t *testing.T) {
	sessions := new(SessionRepoMock)
	users := new(UserRepoMock)
	ledger := new(LedgerMock)

	sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()
	sessions.On("CompareAndSetStatusTx", mock.Anything, mock.Anything, "session-1",
		[]models.SessionStatus{models.StatusScheduled, models.StatusInProgress}, models.StatusCompleted).
		Return(true, nil).Once()
	ledger.On("ApplyTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tr models.CreditTransaction) bool {
		return tr.UserID == "mentor-1" &&
			tr.Kind == models.KindEarn &&
			tr.Amount.Equal(decimal.RequireFromString("20.00"))
	})).Return(nil).Once()
	// Для письма о событии подтягиваются стороны сессии
	users.On("GetUser", mock.Anything, "mentor-1").Return(testMentor(), nil)
	users.On("GetUser", mock.Anything, "learner-1").Return(testLearner(), nil)

	svc := services.NewSchedulerService(sessions, users, ledger, TxManagerFake{}, nil, newTestLogger())

	err := svc.CompleteSession(context.Background(), "session-1", "mentor-1")
	require.NoError(t, err)

	sessions.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestSchedulerService_CompleteSession_OnlyMentor(t *testing.T) {
	sessions := new(SessionRepoMock)
	ledger := new(LedgerMock)
	sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()

	svc := services.NewSchedulerService(sessions, new(UserRepoMock), ledger, TxManagerFake{}, nil, newTestLogger())

	err := svc.CompleteSession(context.Background(), "session-1", "learner-1")
	assert.ErrorIs(t, err, models.ErrUnauthorizedActor)
	ledger.AssertNotCalled(t, "ApplyTx")
}

func TestSchedulerService_CancelSession_RefundsLearner(t *testing.T) {
	sessions := new(SessionRepoMock)
	users := new(UserRepoMock)
	ledger := new(LedgerMock)

	sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()
	sessions.On("CompareAndSetStatusTx", mock.Anything, mock.Anything, "session-1",
		[]models.SessionStatus{models.StatusScheduled, models.StatusInProgress}, models.StatusCancelled).
		Return(true, nil).Once()
	ledger.On("ApplyTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tr models.CreditTransaction) bool {
		return tr.UserID == "learner-1" &&
			tr.Kind == models.KindRefund &&
			tr.Amount.Equal(decimal.RequireFromString("20.00"))
	})).Return(nil).Once()
	users.On("GetUser", mock.Anything, "mentor-1").Return(testMentor(), nil)
	users.On("GetUser", mock.Anything, "learner-1").Return(testLearner(), nil)

	svc := services.NewSchedulerService(sessions, users, ledger, TxManagerFake{}, nil, newTestLogger())

	err := svc.CancelSession(context.Background(), "session-1", "learner-1")
	require.NoError(t, err)

	sessions.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestSchedulerService_CancelSession_StrangerForbidden(t *testing.T) {
	sessions := new(SessionRepoMock)
	ledger := new(LedgerMock)
	sessions.On("GetSession", mock.Anything, "session-1").Return(testSession(), nil).Once()

	svc := services.NewSchedulerService(sessions, new(UserRepoMock), ledger, TxManagerFake{}, nil, newTestLogger())

	err := svc.CancelSession(context.Background(), "session-1", "stranger-1")
	assert.ErrorIs(t, err, models.ErrUnauthorizedActor)
	ledger.AssertNotCalled(t, "ApplyTx")
}

// Стейтфул фейки для гонки завершения и отмены.

type raceSessionRepo struct {
	mu   sync.Mutex
	sess models.Session
}

func (r *raceSessionRepo) CreateSessionTx(_ context.Context, _ *sql.Tx, _ models.Session) error {
	return nil
}

func (r *raceSessionRepo) GetSession(_ context.Context, _ string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := r.sess
	return &copied, nil
}

func (r *raceSessionRepo) CompareAndSetStatusTx(_ context.Context, _ *sql.Tx, _ string,
	expected []models.SessionStatus, next models.SessionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, status := range expected {
		if r.sess.Status == status {
			r.sess.Status = next
			return true, nil
		}
	}
	return false, nil
}

func (r *raceSessionRepo) ListSessionsByUser(_ context.Context, _ string,
	_ []models.SessionStatus) ([]*models.Session, error) {
	return nil, nil
}

type raceUserRepo struct{}

func (raceUserRepo) GetUser(_ context.Context, userID string) (*models.User, error) {
	if userID == "mentor-1" {
		return testMentor(), nil
	}
	return testLearner(), nil
}

type raceLedger struct {
	mu      sync.Mutex
	entries []models.CreditTransaction
}

func (l *raceLedger) ApplyTx(_ context.Context, _ *sql.Tx, t models.CreditTransaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, t)
	return nil
}

// Гонка: наставник завершает, ученик отменяет одну и ту же сессию.
// Побеждает ровно одна операция, в журнале ровно одна запись.
func TestSchedulerService_ConcurrentCompleteAndCancel(t *testing.T) {
	repo := &raceSessionRepo{sess: *testSession()}
	ledger := &raceLedger{}

	svc := services.NewSchedulerService(repo, raceUserRepo{}, ledger, TxManagerFake{}, nil, newTestLogger())

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- svc.CompleteSession(context.Background(), "session-1", "mentor-1")
	}()
	go func() {
		defer wg.Done()
		results <- svc.CancelSession(context.Background(), "session-1", "learner-1")
	}()
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, models.ErrInvalidStateTransition):
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one operation must win")
	assert.Equal(t, 1, conflicted, "the loser must observe an invalid transition")
	assert.Len(t, ledger.entries, 1, "exactly one ledger entry must be written")
}

func TestSchedulerService_ListSessions_DefaultStatuses(t *testing.T) {
	sessions := new(SessionRepoMock)
	sessions.On("ListSessionsByUser", mock.Anything, "user-1",
		[]models.SessionStatus{models.StatusScheduled, models.StatusInProgress}).
		Return([]*models.Session{}, nil).Once()

	svc := services.NewSchedulerService(sessions, new(UserRepoMock), new(LedgerMock), TxManagerFake{}, nil, newTestLogger())

	_, err := svc.ListSessions(context.Background(), "user-1", nil)
	require.NoError(t, err)
	sessions.AssertExpectations(t)
}
