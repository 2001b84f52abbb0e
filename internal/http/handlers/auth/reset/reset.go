// Package reset реализует второй шаг сброса пароля: запись нового пароля.
package reset

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

// Request — почта аккаунта и новый пароль.
type Request struct {
	Email       string `json:"email" form:"email" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

// Service описывает завершение сброса пароля.
type Service interface {
	CompletePasswordReset(ctx context.Context, email, newPassword string) error
}

// Handler обрабатывает POST /reset-password.
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
// @Summary Завершение сброса пароля
// @Description Перезаписывает пароль аккаунта. Форма перенаправляется на /login.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Почта и новый пароль"
// @Success 200 {object} response.Response
// @Success 303 "Редирект на /login"
// @Failure 400 {object} response.ErrorResponse "Неизвестная почта"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.reset"

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

	if err := h.service.CompletePasswordReset(r.Context(), req.Email, req.NewPassword); err != nil {
		if models.IsValidation(err) {
			log.Info("password reset rejected", sl.Err(err))
		} else {
			log.Error("password reset failed", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	response.Next(w, r, "/login", map[string]any{
		"message": "password updated",
	})
}
