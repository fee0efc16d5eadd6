// Package complete реализует HTTP-обработчик завершения учебной сессии.
//
// Handler извлекает ID сессии из URL и переводит её в терминальный статус
// completed, начисляя стоимость наставнику. Доступно только наставнику сессии.
package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на завершение сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения сессии.
type Service interface {
	CompleteSession(ctx context.Context, sessionID, actorID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Завершить сессию
// @Description Переводит сессию в completed и начисляет её стоимость наставнику.
// @Tags Sessions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID сессии"
// @Success 200 {object} map[string]any "Сессия завершена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Действие доступно только наставнику"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := chi.URLParam(r, "id")
	actorID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || actorID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.CompleteSession(r.Context(), sessionID, actorID); err != nil {
		log.Error("failed to complete session", sl.Err(err))
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, models.ErrUnauthorizedActor):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only the mentor may complete the session"))
		case errors.Is(err, models.ErrInvalidStateTransition):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("invalid session state transition"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not complete session"))
		}
		return
	}

	log.Info("success to complete session", slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id": sessionID,
		"status":     models.StatusCompleted,
	}))
}
