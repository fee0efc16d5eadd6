package book

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// MockService реализует интерфейс book.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) BookSession(ctx context.Context, learnerID string, req models.DummyBookRequest) (string, error) {
	args := m.Called(ctx, learnerID, req)
	return args.String(0), args.Error(1)
}

func TestBookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"mentor_id":"2a9d1f40-91f2-4a3c-9f6e-9b8f2f6f4a11","skill":"go",` +
		`"scheduled_time":"2026-09-15T10:00:00Z","duration_minutes":60}`

	tests := []struct {
		name           string
		body           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "успешное бронирование",
			body:   validBody,
			userID: "learner-1",
			setupMock: func(m *MockService) {
				m.On("BookSession", mock.Anything, "learner-1", mock.Anything).Return("session-1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"session_id":"session-1"`,
		},
		{
			name:           "нет пользователя в контексте",
			body:           validBody,
			userID:         "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "некорректный mentor_id",
			body:           `{"mentor_id":"not-a-uuid","scheduled_time":"2026-09-15T10:00:00Z","duration_minutes":60}`,
			userID:         "learner-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field MentorID can contain only uuid`,
		},
		{
			name:   "недостаточно кредитов",
			body:   validBody,
			userID: "learner-1",
			setupMock: func(m *MockService) {
				m.On("BookSession", mock.Anything, "learner-1", mock.Anything).
					Return("", models.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"error":"insufficient credits"`,
		},
		{
			name:   "сторона не может участвовать",
			body:   validBody,
			userID: "learner-1",
			setupMock: func(m *MockService) {
				m.On("BookSession", mock.Anything, "learner-1", mock.Anything).
					Return("", models.ErrUnauthorizedActor)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"actor cannot take part in this session"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(tt.body))
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
