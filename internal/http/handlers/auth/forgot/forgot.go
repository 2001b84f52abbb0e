// Package forgot реализует первый шаг сброса пароля: проверку почты.
package forgot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Request — почта аккаунта, для которого начинается сброс.
type Request struct {
	Email string `json:"email" form:"email" validate:"required"`
}

// Service описывает начало сброса пароля.
type Service interface {
	InitiatePasswordReset(ctx context.Context, email string) (string, error)
}

// Handler обрабатывает POST /forgot-password.
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
// @Summary Начало сброса пароля
// @Description Проверяет, что почта зарегистрирована. Форма перенаправляется на /reset-password?email=...
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Почта аккаунта"
// @Success 200 {object} response.Response
// @Success 303 "Редирект на /reset-password"
// @Failure 400 {object} response.ErrorResponse "Почта не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgot"

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

	email, err := h.service.InitiatePasswordReset(r.Context(), req.Email)
	if err != nil {
		if models.IsValidation(err) {
			log.Info("password reset rejected", sl.Err(err))
		} else {
			log.Error("password reset failed", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	next := "/reset-password?" + url.Values{"email": {email}}.Encode()
	response.Next(w, r, next, map[string]any{"email": email})
}
