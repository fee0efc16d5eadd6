// Package history реализует HTTP-обработчик получения истории транзакций.
//
// Handler возвращает записи кредитного журнала текущего пользователя,
// новые первыми, с пагинацией через query-параметры limit и offset.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на получение истории журнала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории журнала.
type Service interface {
	History(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История транзакций
// @Description Возвращает записи кредитного журнала текущего пользователя, новые первыми.
// @Tags Credits
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Количество записей (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Записи журнала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /credits/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.history"
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

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list transactions"))
		return
	}

	log.Info("success to list transactions", slog.Int("count", len(transactions)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"transactions": transactions,
	}))
}
