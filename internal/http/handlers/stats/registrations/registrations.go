// Package registrations отдаёт общее число зарегистрированных аккаунтов.
package registrations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Service описывает подсчёт регистраций.
type Service interface {
	TotalRegistrations(ctx context.Context) (int64, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Число регистраций
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/stats/registrations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.registrations"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	total, err := h.service.TotalRegistrations(r.Context())
	if err != nil {
		log.Error("failed to count registrations", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"total_registrations": total,
	}))
}
