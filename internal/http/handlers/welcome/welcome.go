// Package welcome отдаёт приветствие пользователю, вошедшему в систему.
package welcome

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Handler обрабатывает GET /welcome/{username}.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Приветствие
// @Description Доступно только владельцу сессии.
// @Tags Auth
// @Produce json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Чужая страница"
// @Router /welcome/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.welcome"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// chi сопоставляет маршрут по RawPath, поэтому параметр может прийти экранированным.
	username, err := url.PathUnescape(chi.URLParam(r, "username"))
	if err != nil {
		log.Info("malformed username in path", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid username"))
		return
	}
	sessionUser, ok := middlewarectx.UsernameFrom(r.Context())
	if !ok || sessionUser != username {
		log.Info("welcome page of another user requested",
			slog.String("username", username), slog.String("session_user", sessionUser))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"username": username,
		"message":  "Welcome, " + username + "!",
	}))
}
