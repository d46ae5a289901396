package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/detailing-backoffice/internal/application"
)

type statsService interface {
	DashboardStats(ctx context.Context) (application.DashboardStats, error)
}

type StatsHandler struct {
	service   statsService
	responder responder
	logger    *slog.Logger
}

func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		handlerLogger(r.Context(), h.logger, "StatsHandler", "Dashboard").ErrorContext(r.Context(), "dashboard stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, stats)
}
