package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/application"
)

const sessionCookieName = "session_token"

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
}

// AuthHandler signs the administrator in and out.
type AuthHandler struct {
	service       authService
	responder     responder
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler issues Secure session cookies unless UseSecureCookies(false) is called.
func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base, secureCookies: true}
}

// UseSecureCookies controls the Secure flag of the session cookie. Plain HTTP
// deployments must disable it or browsers drop the cookie.
func (h *AuthHandler) UseSecureCookies(secure bool) {
	if h != nil {
		h.secureCookies = secure
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// CreateSession handles POST /api/admin/sessions.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req); err != nil {
		h.log(ctx, "CreateSession", "error_kind", "bad_request").WarnContext(ctx, "unreadable login payload", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.AuthenticateParams{Username: strings.TrimSpace(req.Username), Password: req.Password}
	logger := h.log(ctx, "CreateSession", "username", params.Username)

	result, err := h.service.Authenticate(ctx, params)
	if err != nil {
		logger.WarnContext(ctx, "login refused", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	session := result.Session
	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	w.Header().Set("X-Session-Token", session.Token)
	logger.InfoContext(ctx, "admin signed in", "session_id", session.ID, "expires_at", session.ExpiresAt)

	h.responder.writeJSON(ctx, w, http.StatusCreated, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Username:  result.Principal.Username,
	})
}

// DeleteCurrentSession handles DELETE /api/admin/sessions/current. The cookie
// is cleared whenever the token turns out to be unusable.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	logger := h.log(ctx, "DeleteCurrentSession")

	err := h.service.RevokeSession(ctx, extractTokenFromRequest(r))
	switch {
	case err == nil:
		h.clearSessionCookie(w)
		logger.InfoContext(ctx, "admin signed out")
		h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
	case errors.Is(err, application.ErrSessionRevoked), errors.Is(err, application.ErrSessionExpired):
		h.clearSessionCookie(w)
		logger.WarnContext(ctx, "sign out with a dead session", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
	default:
		logger.ErrorContext(ctx, "sign out failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := bearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
