// Package book реализует HTTP-обработчик бронирования учебной сессии.
//
// Handler принимает JSON-запрос с данными бронирования, валидирует их,
// извлекает ученика из контекста и вызывает бизнес-логику планировщика.
// Стоимость сессии списывается с ученика в эскроу той же транзакцией,
// что и создание сессии.
package book

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/http/response"
	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// Handler управляет HTTP-запросами на бронирование сессий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики планировщика
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики бронирования.
type Service interface {
	BookSession(ctx context.Context, learnerID string, req models.DummyBookRequest) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Забронировать сессию
// @Description Бронирует сессию текущего ученика с наставником. Стоимость замораживается в эскроу.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyBookRequest true "Данные бронирования"
// @Success 200 {object} map[string]any "ID созданной сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Недостаточно кредитов"
// @Failure 403 {object} response.ErrorResponse "Сторона не может участвовать в сессии"
// @Failure 404 {object} response.ErrorResponse "Наставник не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при бронировании"
// @Router /sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.book"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	learnerID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || learnerID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sessionID, err := h.service.BookSession(r.Context(), learnerID, req)
	if err != nil {
		log.Error("failed to book session", sl.Err(err))
		switch {
		case errors.Is(err, models.ErrInsufficientFunds):
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("insufficient credits"))
		case errors.Is(err, models.ErrUnauthorizedActor):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("actor cannot take part in this session"))
		case errors.Is(err, models.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, models.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid booking data"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not book session"))
		}
		return
	}

	log.Info("success to book session", slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id": sessionID,
	}))
}
