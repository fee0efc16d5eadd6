// Package balance реализует HTTP-обработчик получения баланса кредитов.
//
// Handler возвращает баланс текущего пользователя, пересчитанный из журнала
// транзакций.
package balance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на получение баланса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики баланса.
type Service interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Баланс кредитов
// @Description Возвращает баланс текущего пользователя как сумму записей журнала.
// @Tags Credits
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Текущий баланс"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /credits/balance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.balance"
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

	sum, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		log.Error("failed to get balance", sl.Err(err))
		if errors.Is(err, models.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get balance"))
		return
	}

	log.Info("success to get balance", slog.String("balance", sum.String()))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"balance": sum,
	}))
}
