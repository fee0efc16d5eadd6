// Package mentors реализует HTTP-обработчик подбора наставников.
//
// Handler возвращает карточки наставников, опционально отфильтрованные
// по предмету через query-параметр subject.
package mentors

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

// Handler управляет HTTP-запросами на подбор наставников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подбора наставников.
type Service interface {
	FindMentors(ctx context.Context, subject string) ([]*models.UserSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подбор наставников
// @Description Возвращает карточки наставников, опционально по предмету.
// @Tags Matching
// @Produce  json
// @Security BearerAuth
// @Param subject query string false "Предмет"
// @Success 200 {object} map[string]any "Карточки наставников"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /matching/mentors [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.matching.mentors"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subject := r.URL.Query().Get("subject")
	mentors, err := h.service.FindMentors(r.Context(), subject)
	if err != nil {
		log.Error("failed to find mentors", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find mentors"))
		return
	}

	log.Info("success to find mentors", slog.Int("count", len(mentors)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"mentors": mentors,
	}))
}
