// Package register реализует HTTP-обработчик регистрации аккаунта.
//
// Принимает JSON или HTML-форму. После успешной регистрации форма
// перенаправляется на /login, JSON-клиент получает тот же адрес в поле next.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Request — входные данные для регистрации
type Request struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

// Service описывает регистрацию аккаунта.
type Service interface {
	Register(ctx context.Context, username, email, password, confirmPassword string) error
}

// Handler обрабатывает POST /register.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация аккаунта
// @Description Создаёт аккаунт. Для HTML-формы отвечает 303 на /login.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Данные нового пользователя"
// @Success 200 {object} response.Response "Аккаунт создан"
// @Success 303 "Редирект на /login"
// @Failure 400 {object} response.ErrorResponse "Ошибка ввода"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword); err != nil {
		if models.IsValidation(err) {
			log.Info("registration rejected", sl.Err(err))
		} else {
			log.Error("registration failed", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	response.Next(w, r, "/login", map[string]any{
		"message": "user created successfully",
	})
}
