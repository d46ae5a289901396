package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/detailing-backoffice/internal/application"
)

type galleryService interface {
	AddImage(ctx context.Context, input application.ImageInput) (application.GalleryImage, error)
	UpdateImage(ctx context.Context, params application.UpdateImageParams) (application.GalleryImage, error)
	ToggleImagePublication(ctx context.Context, id string) (application.GalleryImage, error)
	DeleteImage(ctx context.Context, params application.DeleteParams) error
	ListImages(ctx context.Context, filter application.ImageFilter) ([]application.GalleryImage, error)
}

type GalleryHandler struct {
	service   galleryService
	responder responder
	logger    *slog.Logger
}

func NewGalleryHandler(service galleryService, logger *slog.Logger) *GalleryHandler {
	base := defaultLogger(logger)
	return &GalleryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *GalleryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GalleryHandler", operation, attrs...)
}

func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter := application.ImageFilter{Search: query.Get("q"), Category: query.Get("category")}
	logger := h.log(r.Context(), "List", "category", filter.Category)

	images, err := h.service.ListImages(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "image listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, imageListResponse{Images: images, Count: len(images)})
}

func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.ImageInput
	if err := decodeJSON(w, r, imageBodyLimit, &input); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode image request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "category", input.Category)

	image, err := h.service.AddImage(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "image creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("image_id", image.ID).InfoContext(r.Context(), "image created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, image)
}

func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	var input application.ImageInput
	if err := decodeJSON(w, r, imageBodyLimit, &input); err != nil {
		h.log(r.Context(), "Update", "image_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode image request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "image_id", id)

	image, err := h.service.UpdateImage(r.Context(), application.UpdateImageParams{ID: id, Input: input})
	if err != nil {
		logger.ErrorContext(r.Context(), "image update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "image updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, image)
}

func (h *GalleryHandler) TogglePublication(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	logger := h.log(r.Context(), "TogglePublication", "image_id", id)

	image, err := h.service.ToggleImagePublication(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "publication toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("published", image.Published).InfoContext(r.Context(), "publication toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, image)
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	logger := h.log(r.Context(), "Delete", "image_id", id)

	if err := h.service.DeleteImage(r.Context(), application.DeleteParams{ID: id, Confirmed: confirm}); err != nil {
		logger.ErrorContext(r.Context(), "image deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "image deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type imageListResponse struct {
	Images []application.GalleryImage `json:"images"`
	Count  int                        `json:"count"`
}
