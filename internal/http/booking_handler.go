package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/catalog"
)

type bookingService interface {
	CreateBooking(ctx context.Context, input application.BookingInput) (application.BookingResult, error)
	GetBooking(ctx context.Context, id string) (application.Booking, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.BookingResult, error)
	SetBookingStatus(ctx context.Context, id string, status catalog.BookingStatus) (application.Booking, error)
	DeleteBooking(ctx context.Context, params application.DeleteParams) error
	ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error)
	BookingSummary(ctx context.Context) (application.BookingSummary, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.BookingFilter{
		Search:    query.Get("q"),
		Status:    query.Get("statut"),
		DateRange: query.Get("periode"),
	}
	logger := h.log(r.Context(), "List", "statut", filter.Status, "periode", filter.DateRange)

	bookings, err := h.service.ListBookings(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: bookings, Count: len(bookings)})
}

func (h *BookingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	summary, err := h.service.BookingSummary(r.Context())
	if err != nil {
		h.log(r.Context(), "Summary").ErrorContext(r.Context(), "booking summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, summary)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "booking_id", id).ErrorContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, booking)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "date", req.Date, "time", req.Time)

	result, err := h.service.CreateBooking(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", result.Booking.ID, "warnings", len(result.Warnings)).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, result)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var req bookingRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "Update", "booking_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "booking_id", id)

	result, err := h.service.UpdateBooking(r.Context(), application.UpdateBookingParams{
		ID:     id,
		Input:  req.toInput(),
		Status: catalog.BookingStatus(req.Status),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("warnings", len(result.Warnings)).InfoContext(r.Context(), "booking updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var req bookingStatusRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "SetStatus", "booking_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetStatus", "booking_id", id, "statut", req.Status)

	booking, err := h.service.SetBookingStatus(r.Context(), id, catalog.BookingStatus(req.Status))
	if err != nil {
		logger.ErrorContext(r.Context(), "booking status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, booking)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	confirm, err := confirmed(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Delete", "booking_id", id)

	if err := h.service.DeleteBooking(r.Context(), application.DeleteParams{ID: id, Confirmed: confirm}); err != nil {
		logger.ErrorContext(r.Context(), "booking deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type bookingRequest struct {
	Date     string             `json:"date"`
	Time     string             `json:"time"`
	Service  string             `json:"service"`
	Client   application.Client `json:"client"`
	Location string             `json:"lieu"`
	Price    string             `json:"prix"`
	Notes    string             `json:"notes"`
	Status   string             `json:"statut"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		Date:     r.Date,
		Time:     r.Time,
		Service:  r.Service,
		Client:   r.Client,
		Location: catalog.Location(r.Location),
		Price:    r.Price,
		Notes:    r.Notes,
	}
}

type bookingStatusRequest struct {
	Status string `json:"statut"`
}

type bookingListResponse struct {
	Bookings []application.Booking `json:"reservations"`
	Count    int                   `json:"count"`
}
