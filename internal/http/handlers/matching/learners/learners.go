// Package learners реализует HTTP-обработчик подбора учеников.
//
// Handler возвращает карточки учеников, опционально отфильтрованные
// по предмету через query-параметр subject.
package learners

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на подбор учеников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подбора учеников.
type Service interface {
	FindLearners(ctx context.Context, subject string) ([]*models.UserSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подбор учеников
// @Description Возвращает карточки учеников, опционально по предмету.
// @Tags Matching
// @Produce  json
// @Security BearerAuth
// @Param subject query string false "Предмет"
// @Success 200 {object} map[string]any "Карточки учеников"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /matching/learners [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.matching.learners"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subject := r.URL.Query().Get("subject")
	learners, err := h.service.FindLearners(r.Context(), subject)
	if err != nil {
		log.Error("failed to find learners", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find learners"))
		return
	}

	log.Info("success to find learners", slog.Int("count", len(learners)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"learners": learners,
	}))
}
