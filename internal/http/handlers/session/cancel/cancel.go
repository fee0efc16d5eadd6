// Package cancel реализует HTTP-обработчик отмены учебной сессии.
//
// Handler извлекает ID сессии из URL и переводит её в терминальный статус
// cancelled, возвращая эскроу ученику. Отменить сессию может любая из сторон.
package cancel

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

// Handler управляет HTTP-запросами на отмену сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отмены сессии.
type Service interface {
	CancelSession(ctx context.Context, sessionID, actorID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить сессию
// @Description Переводит сессию в cancelled и возвращает эскроу ученику. Доступно обеим сторонам.
// @Tags Sessions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID сессии"
// @Success 200 {object} map[string]any "Сессия отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не является стороной сессии"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.cancel"
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

	if err := h.service.CancelSession(r.Context(), sessionID, actorID); err != nil {
		log.Error("failed to cancel session", sl.Err(err))
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, models.ErrUnauthorizedActor):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("actor is not a party to the session"))
		case errors.Is(err, models.ErrInvalidStateTransition):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("invalid session state transition"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel session"))
		}
		return
	}

	log.Info("success to cancel session", slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id": sessionID,
		"status":     models.StatusCancelled,
	}))
}
