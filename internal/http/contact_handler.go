package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/catalog"
)

type contactService interface {
	MarkContactRead(ctx context.Context, id string) (application.Contact, error)
	SetContactStatus(ctx context.Context, id string, status catalog.ContactStatus) (application.Contact, error)
	SetContactPriority(ctx context.Context, id string, priority catalog.Priority) (application.Contact, error)
	ReplyToContact(ctx context.Context, params application.ReplyParams) (application.ReplyResult, error)
	DeleteContact(ctx context.Context, params application.DeleteParams) error
	ListContacts(ctx context.Context, filter application.ContactFilter) ([]application.Contact, error)
	ContactSummary(ctx context.Context) (application.ContactSummary, error)
}

type ContactHandler struct {
	service   contactService
	responder responder
	logger    *slog.Logger
}

func NewContactHandler(service contactService, logger *slog.Logger) *ContactHandler {
	base := defaultLogger(logger)
	return &ContactHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ContactHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ContactHandler", operation, attrs...)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.ContactFilter{
		Search:   query.Get("q"),
		Status:   query.Get("statut"),
		Priority: query.Get("priorite"),
	}
	logger := h.log(r.Context(), "List", "statut", filter.Status, "priorite", filter.Priority)

	contacts, err := h.service.ListContacts(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "contact listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("count", len(contacts)).InfoContext(r.Context(), "contacts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, contactListResponse{Contacts: contacts, Count: len(contacts)})
}

func (h *ContactHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	summary, err := h.service.ContactSummary(r.Context())
	if err != nil {
		h.log(r.Context(), "Summary").ErrorContext(r.Context(), "contact summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, summary)
}

// Open returns a message and marks it read, as opening it in the back office does.
func (h *ContactHandler) Open(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	contact, err := h.service.MarkContactRead(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Open", "contact_id", id).ErrorContext(r.Context(), "contact lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, contact)
}

func (h *ContactHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var req contactStatusRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "SetStatus", "contact_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetStatus", "contact_id", id, "statut", req.Status)

	contact, err := h.service.SetContactStatus(r.Context(), id, catalog.ContactStatus(req.Status))
	if err != nil {
		logger.ErrorContext(r.Context(), "contact status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "contact status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, contact)
}

func (h *ContactHandler) SetPriority(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var req contactPriorityRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "SetPriority", "contact_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode priority request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetPriority", "contact_id", id, "priorite", req.Priority)

	contact, err := h.service.SetContactPriority(r.Context(), id, catalog.Priority(req.Priority))
	if err != nil {
		logger.ErrorContext(r.Context(), "contact priority change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "contact priority changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, contact)
}

func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var req application.ReplyParams
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(r.Context(), "Reply", "contact_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reply request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.ID = id

	logger := h.log(r.Context(), "Reply", "contact_id", id)

	result, err := h.service.ReplyToContact(r.Context(), req)
	if err != nil {
		logger.ErrorContext(r.Context(), "contact reply failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("delivered", result.Delivered).InfoContext(r.Context(), "contact replied")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	logger := h.log(r.Context(), "Delete", "contact_id", id)

	if err := h.service.DeleteContact(r.Context(), application.DeleteParams{ID: id, Confirmed: confirm}); err != nil {
		logger.ErrorContext(r.Context(), "contact deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "contact deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type contactStatusRequest struct {
	Status string `json:"statut"`
}

type contactPriorityRequest struct {
	Priority string `json:"priorite"`
}

type contactListResponse struct {
	Contacts []application.Contact `json:"contacts"`
	Count    int                   `json:"count"`
}
