package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/csrf"

	"github.com/example/detailing-backoffice/internal/application"
)

type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromRequest(r)
			if token == "" {
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: "AUTH_REQUIRED",
					Message:   errMissingSessionToken.Error(),
				})
				return
			}

			principal, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "AUTH_SESSION_EXPIRED",
						Message:   "Votre session a expiré. Veuillez vous reconnecter.",
					})
				case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrNotFound):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "AUTH_REQUIRED",
						Message:   "Session invalide. Veuillez vous reconnecter.",
					})
				default:
					responder.loggerFor(r.Context()).ErrorContext(r.Context(), "session validation failed", "error", err, "error_kind", application.ErrorKind(err))
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "Erreur lors de la vérification de la session."})
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// CSRFConfig configures form submission protection.
type CSRFConfig struct {
	// AuthKey is the 32 byte key used to authenticate CSRF tokens.
	AuthKey []byte
	// TrustedOrigins lists extra hosts allowed to submit forms, e.g. "lmdetailing.re".
	TrustedOrigins []string
	// Secure marks the CSRF cookie Secure and expects HTTPS referers.
	Secure bool
}

// CSRF protects form submissions. JSON requests and requests carrying a
// bearer token are exempt.
func CSRF(cfg CSRFConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	protect := csrf.Protect(
		cfg.AuthKey,
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			responder.loggerFor(r.Context()).WarnContext(r.Context(), "csrf check failed", "reason", csrf.FailureReason(r))
			responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
				ErrorCode: "CSRF_INVALID",
				Message:   "Le formulaire a expiré. Veuillez recharger la page.",
			})
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || bearerToken(r) != "" {
				next.ServeHTTP(w, r)
				return
			}
			if !cfg.Secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds the usual hardening headers to every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
