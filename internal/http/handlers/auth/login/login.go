// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешном входе выдаётся токен сессии: в cookie session и в теле ответа.
// HTML-форма перенаправляется на /welcome/{username}.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Request — структура входных данных для входа.
type Request struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Service описывает проверку учётных данных.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenMaker выпускает токен сессии.
type TokenMaker interface {
	GenerateToken(username string) (string, error)
}

// Handler обрабатывает POST /login.
type Handler struct {
	log      *slog.Logger
	service  Service
	tokens   TokenMaker
	tokenTTL time.Duration
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, tokens TokenMaker, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет имя и пароль, увеличивает счётчик входов и выдаёт токен сессии.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Success 303 "Редирект на /welcome/{username}"
// @Failure 400 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	username, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if models.IsValidation(err) {
			log.Info("login rejected", sl.Err(err))
		} else {
			log.Error("login failed", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(username)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login success", slog.String("username", username))
	response.Next(w, r, "/welcome/"+url.PathEscape(username), map[string]any{
		"username": username,
		"token":    token,
	})
}
