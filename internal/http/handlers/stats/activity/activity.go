// Package activity отдаёт активность пользователей, хотя бы раз входивших в систему.
package activity

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Service описывает отчёт по активности.
type Service interface {
	PerUserActivity(ctx context.Context) ([]models.UserActivity, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активность пользователей
// @Description Пользователи без единого входа в отчёт не попадают.
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response{data=[]models.UserActivity}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/stats/activity [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.activity"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	activity, err := h.service.PerUserActivity(r.Context())
	if err != nil {
		log.Error("failed to build activity report", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(activity))
}
