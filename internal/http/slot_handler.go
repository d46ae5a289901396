package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/detailing-backoffice/internal/application"
)

type slotService interface {
	Availability(ctx context.Context, date string) (application.SlotAvailability, error)
	SetOccupiedSlots(ctx context.Context, date string, slots []string) (application.SlotAvailability, error)
}

type SlotHandler struct {
	service   slotService
	responder responder
	logger    *slog.Logger
}

func NewSlotHandler(service slotService, logger *slog.Logger) *SlotHandler {
	base := defaultLogger(logger)
	return &SlotHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SlotHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SlotHandler", operation, attrs...)
}

func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := r.PathValue("date")
	availability, err := h.service.Availability(r.Context(), date)
	if err != nil {
		h.log(r.Context(), "Get", "date", date).ErrorContext(r.Context(), "slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availability)
}

func (h *SlotHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := r.PathValue("date")
	var req occupiedSlotsRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "Put", "date", date, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Put", "date", date, "slot_count", len(req.Slots))

	availability, err := h.service.SetOccupiedSlots(r.Context(), date, req.Slots)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupied slot update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "occupied slots replaced")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availability)
}

type occupiedSlotsRequest struct {
	Slots []string `json:"creneaux"`
}
