// Package list реализует HTTP-обработчик получения списка сессий пользователя.
//
// Handler возвращает сессии, где текущий пользователь выступает наставником
// или учеником. Статусы задаются query-параметром status (можно несколько);
// без фильтра возвращаются предстоящие сессии.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на получение списка сессий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка сессий.
type Service interface {
	ListSessions(ctx context.Context, userID string, statuses []models.SessionStatus) ([]*models.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сессий пользователя
// @Description Возвращает сессии текущего пользователя в обеих ролях. Фильтр по статусам через query-параметр status.
// @Tags Sessions
// @Produce  json
// @Security BearerAuth
// @Param status query []string false "Статусы сессий" collectionFormat(multi)
// @Success 200 {object} map[string]any "Список сессий"
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var statuses []models.SessionStatus
	for _, raw := range r.URL.Query()["status"] {
		switch status := models.SessionStatus(raw); status {
		case models.StatusRequested, models.StatusScheduled, models.StatusInProgress,
			models.StatusCompleted, models.StatusCancelled:
			statuses = append(statuses, status)
		default:
			log.Error("unknown session status in query", slog.String("status", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown session status"))
			return
		}
	}

	sessions, err := h.service.ListSessions(r.Context(), userID, statuses)
	if err != nil {
		log.Error("failed to list sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list sessions"))
		return
	}

	log.Info("success to list sessions", slog.Int("count", len(sessions)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"sessions": sessions,
	}))
}
