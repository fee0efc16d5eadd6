package complete

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// MockService реализует интерфейс complete.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CompleteSession(ctx context.Context, sessionID, actorID string) error {
	args := m.Called(ctx, sessionID, actorID)
	return args.Error(0)
}

func TestCompleteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		sessionID      string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное завершение",
			sessionID: "session-1",
			userID:    "mentor-1",
			setupMock: func(m *MockService) {
				m.On("CompleteSession", mock.Anything, "session-1", "mentor-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"completed"`,
		},
		{
			name:      "сессия не найдена",
			sessionID: "missing",
			userID:    "mentor-1",
			setupMock: func(m *MockService) {
				m.On("CompleteSession", mock.Anything, "missing", "mentor-1").
					Return(models.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"session not found"`,
		},
		{
			name:      "завершает не наставник",
			sessionID: "session-1",
			userID:    "learner-1",
			setupMock: func(m *MockService) {
				m.On("CompleteSession", mock.Anything, "session-1", "learner-1").
					Return(models.ErrUnauthorizedActor)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"only the mentor may complete the session"`,
		},
		{
			name:      "конкурентная отмена победила",
			sessionID: "session-1",
			userID:    "mentor-1",
			setupMock: func(m *MockService) {
				m.On("CompleteSession", mock.Anything, "session-1", "mentor-1").
					Return(models.ErrInvalidStateTransition)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"invalid session state transition"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions/"+tt.sessionID+"/complete", nil)
			// Устанавливаем URL param для ID
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.sessionID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
