// Package start реализует HTTP-обработчик начала учебной сессии.
//
// Handler извлекает ID сессии из URL и переводит её в статус in_progress.
// Начать сессию может только её наставник.
package start

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

// Handler управляет HTTP-запросами на начало сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики начала сессии.
type Service interface {
	StartSession(ctx context.Context, sessionID, actorID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Начать сессию
// @Description Переводит сессию из scheduled в in_progress. Доступно только наставнику сессии.
// @Tags Sessions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID сессии"
// @Success 200 {object} map[string]any "Сессия начата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Действие доступно только наставнику"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.start"
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

	if err := h.service.StartSession(r.Context(), sessionID, actorID); err != nil {
		log.Error("failed to start session", sl.Err(err))
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, models.ErrUnauthorizedActor):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only the mentor may start the session"))
		case errors.Is(err, models.ErrInvalidStateTransition):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("invalid session state transition"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start session"))
		}
		return
	}

	log.Info("success to start session", slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id": sessionID,
		"status":     models.StatusInProgress,
	}))
}
