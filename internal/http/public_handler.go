package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/catalog"
)

type bookingRequester interface {
	RequestBooking(ctx context.Context, input application.BookingInput) (application.BookingResult, error)
}

type availabilityReader interface {
	Availability(ctx context.Context, date string) (application.SlotAvailability, error)
}

type contactSubmitter interface {
	SubmitContact(ctx context.Context, input application.ContactInput) (application.ContactReceipt, error)
}

type publicGalleryReader interface {
	PublicGallery(ctx context.Context, category string) (application.PublicGallery, error)
}

// PublicHandler serves the unauthenticated site endpoints.
type PublicHandler struct {
	bookings  bookingRequester
	slots     availabilityReader
	contacts  contactSubmitter
	gallery   publicGalleryReader
	responder responder
	logger    *slog.Logger
}

func NewPublicHandler(bookings bookingRequester, slots availabilityReader, contacts contactSubmitter, gallery publicGalleryReader, logger *slog.Logger) *PublicHandler {
	base := defaultLogger(logger)
	return &PublicHandler{
		bookings:  bookings,
		slots:     slots,
		contacts:  contacts,
		gallery:   gallery,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *PublicHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PublicHandler", operation, attrs...)
}

func (h *PublicHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{
		Services:   make([]serviceDTO, 0),
		Categories: make([]labelDTO, 0, len(catalog.Categories)),
		Statuses:   make([]labelDTO, 0, len(catalog.BookingStatuses)),
		TimeSlots:  catalog.TimeSlots(),
	}
	for _, svc := range catalog.Services() {
		resp.Services = append(resp.Services, toServiceDTO(svc))
	}
	for _, category := range catalog.Categories {
		resp.Categories = append(resp.Categories, labelDTO{ID: string(category), Label: category.Label()})
	}
	for _, status := range catalog.BookingStatuses {
		resp.Statuses = append(resp.Statuses, labelDTO{ID: string(status), Label: status.Label()})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// CSRFToken hands the form token to pages that post form-encoded bodies.
func (h *PublicHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, csrfTokenResponse{Token: csrf.Token(r)})
}

func (h *PublicHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.slots == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	availability, err := h.slots.Availability(r.Context(), date)
	if err != nil {
		h.log(r.Context(), "Availability", "date", date).ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availability)
}

func (h *PublicHandler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.BookingInput
	if isFormRequest(r) {
		values, err := parseForm(w, r)
		if err != nil {
			h.log(r.Context(), "RequestBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse booking form", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		input = bookingInputFromForm(values)
	} else {
		var req publicBookingRequest
		if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
			h.log(r.Context(), "RequestBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		input = req.toInput()
	}

	logger := h.log(r.Context(), "RequestBooking", "date", input.Date, "time", input.Time)

	result, err := h.bookings.RequestBooking(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking request rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", result.Booking.ID).InfoContext(r.Context(), "booking requested")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, result)
}

func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.contacts == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.ContactInput
	if isFormRequest(r) {
		values, err := parseForm(w, r)
		if err != nil {
			h.log(r.Context(), "SubmitContact", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse contact form", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		input = contactInputFromForm(values)
	} else if err := decodeJSON(w, r, defaultBodyLimit, &input); err != nil {
		h.log(r.Context(), "SubmitContact", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode contact request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SubmitContact", "service", input.Service)

	receipt, err := h.contacts.SubmitContact(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "contact submission rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("contact_id", receipt.Contact.ID).InfoContext(r.Context(), "contact submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, receipt)
}

func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.gallery == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	category := r.URL.Query().Get("category")
	gallery, err := h.gallery.PublicGallery(r.Context(), category)
	if err != nil {
		h.log(r.Context(), "Gallery", "category", category).ErrorContext(r.Context(), "public gallery failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, gallery)
}

type publicBookingRequest struct {
	Date    string             `json:"date"`
	Time    string             `json:"time"`
	Service string             `json:"service"`
	Client  application.Client `json:"client"`
}

func (r publicBookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		Date:    r.Date,
		Time:    r.Time,
		Service: r.Service,
		Client:  r.Client,
	}
}

func bookingInputFromForm(values url.Values) application.BookingInput {
	return application.BookingInput{
		Date:    values.Get("date"),
		Time:    values.Get("time"),
		Service: values.Get("service"),
		Client: application.Client{
			LastName:  values.Get("nom"),
			FirstName: values.Get("prenom"),
			Phone:     values.Get("telephone"),
			Email:     values.Get("email"),
			Vehicle:   values.Get("vehicule"),
			Comments:  values.Get("commentaires"),
		},
	}
}

func contactInputFromForm(values url.Values) application.ContactInput {
	return application.ContactInput{
		Name:    values.Get("nom"),
		Email:   values.Get("email"),
		Phone:   values.Get("telephone"),
		Service: values.Get("service"),
		Message: values.Get("message"),
	}
}

type catalogResponse struct {
	Services   []serviceDTO `json:"services"`
	Categories []labelDTO   `json:"categories"`
	Statuses   []labelDTO   `json:"statuts"`
	TimeSlots  []string     `json:"creneaux"`
}

type serviceDTO struct {
	ID       string `json:"id"`
	Name     string `json:"nom"`
	Category string `json:"categorie"`
	Price    string `json:"prix"`
	Duration string `json:"duree"`
	OnQuote  bool   `json:"surDevis"`
}

type labelDTO struct {
	ID    string `json:"id"`
	Label string `json:"libelle"`
}

type csrfTokenResponse struct {
	Token string `json:"csrfToken"`
}

func toServiceDTO(svc catalog.Service) serviceDTO {
	return serviceDTO{
		ID:       svc.ID,
		Name:     svc.Name,
		Category: string(svc.Family),
		Price:    svc.Price,
		Duration: formatDuration(svc.Duration),
		OnQuote:  svc.OnQuote(),
	}
}

func formatDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%02d", hours, minutes)
}
