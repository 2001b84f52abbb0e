// Package counters отдаёт счётчики процесса в текстовом формате Prometheus.
package counters

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/common/expfmt"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Service описывает выгрузку счётчиков.
type Service interface {
	ExportCounters(w io.Writer) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Счётчики процесса
// @Tags Stats
// @Produce plain
// @Success 200 {string} string "Текстовый формат Prometheus"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/stats/counters [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.counters"

	var buf bytes.Buffer
	if err := h.service.ExportCounters(&buf); err != nil {
		h.log.Error("failed to export counters",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = buf.WriteTo(w)
}
