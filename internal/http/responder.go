package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/detailing-backoffice/internal/application"
)

var (
	errBadRequestBody      = errors.New("Format de requête invalide.")
	errMissingSessionToken = errors.New("Veuillez vous connecter à l'espace administrateur.")
	errInvalidConfirmation = errors.New("Le paramètre confirm doit valoir true ou false.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Identifiant ou mot de passe incorrect.",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "Votre session a expiré. Veuillez vous reconnecter.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_REQUIRED",
			Message:   errMissingSessionToken.Error(),
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: localizedStatusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrConfirmationRequired):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "CONFIRMATION_REQUIRED",
			Message:   "Cette suppression est définitive. Confirmez-la avec confirm=true.",
		})
	case errors.Is(err, application.ErrTransitionNotAllowed):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TRANSITION_NOT_ALLOWED",
			Message:   "Ce changement de statut n'est pas autorisé.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: localizedStatusMessage(http.StatusUnprocessableEntity),
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: localizedStatusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La requête est invalide."
	case http.StatusUnauthorized:
		return "Authentification requise."
	case http.StatusForbidden:
		return "Vous n'êtes pas autorisé à effectuer cette opération."
	case http.StatusNotFound:
		return "La ressource demandée est introuvable."
	case http.StatusConflict:
		return "La requête est en conflit avec l'état actuel de la ressource."
	case http.StatusUnprocessableEntity:
		return "Certains champs sont invalides."
	default:
		return "Une erreur interne est survenue."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

var fieldLabels = map[string]string{
	"date":             "la date",
	"time":             "l'heure",
	"service":          "le service",
	"lieu":             "le lieu",
	"statut":           "le statut",
	"priorite":         "la priorité",
	"periode":          "la période",
	"client.nom":       "le nom",
	"client.telephone": "le téléphone",
	"client.email":     "l'email",
	"nom":              "le nom",
	"email":            "l'email",
	"message":          "le message",
	"url":              "l'image",
	"title":            "le titre",
	"category":         "la catégorie",
}

var validationSuffixes = []struct {
	english string
	french  string
}{
	{" is required", " est obligatoire."},
	{" must be a YYYY-MM-DD date", " doit être une date au format AAAA-MM-JJ."},
	{" must be a bookable time slot", " doit être un créneau de réservation valide."},
	{" is not in the service catalog", " ne fait pas partie des prestations proposées."},
	{" is not a known category", " n'est pas une catégorie connue."},
	{" must be atelier or domicile", " doit être atelier ou domicile."},
	{" must be an http(s) URL or an embedded image", " doit être une URL http(s) ou une image intégrée."},
	{" is invalid", " est invalide."},
}

func translateValidationMessage(message string) string {
	switch message {
	case "date is not open for booking":
		return "Cette date n'est pas ouverte à la réservation."
	case "time slot is not available":
		return "Ce créneau n'est plus disponible."
	case "creneaux must only contain bookable time slots":
		return "Les créneaux doivent faire partie des horaires d'ouverture."
	}

	for _, suffix := range validationSuffixes {
		field, ok := strings.CutSuffix(message, suffix.english)
		if !ok {
			continue
		}
		label, known := fieldLabels[field]
		if !known {
			break
		}
		return strings.ToUpper(label[:1]) + label[1:] + suffix.french
	}
	return message
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
