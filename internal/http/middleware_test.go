package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/detailing-backoffice/internal/application"
)

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name         string
			cookieToken  *http.Cookie
			headerToken  string
			lookupError  error
			expectedCode string
		}{
			{
				name:         "missing credentials",
				expectedCode: "AUTH_REQUIRED",
			},
			{
				name:         "malformed authorization header",
				headerToken:  "Basic YWRtaW4=",
				expectedCode: "AUTH_REQUIRED",
			},
			{
				name:         "unknown token",
				headerToken:  "Bearer forged",
				lookupError:  application.ErrUnauthorized,
				expectedCode: "AUTH_REQUIRED",
			},
			{
				name:         "expired session",
				cookieToken:  &http.Cookie{Name: sessionCookieName, Value: "expired-token"},
				lookupError:  application.ErrSessionExpired,
				expectedCode: "AUTH_SESSION_EXPIRED",
			},
			{
				name:         "revoked session",
				cookieToken:  &http.Cookie{Name: sessionCookieName, Value: "revoked-token"},
				lookupError:  application.ErrSessionRevoked,
				expectedCode: "AUTH_SESSION_EXPIRED",
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookieToken != nil {
					req.AddCookie(tc.cookieToken)
				}
				if tc.headerToken != "" {
					req.Header.Set("Authorization", tc.headerToken)
				}
				recorder := httptest.NewRecorder()

				handler := RequireSession(fakeSessionValidator{err: tc.lookupError}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				expectStatus(t, recorder, http.StatusUnauthorized)
				if resp := decodeBody[errorResponse](t, recorder); resp.ErrorCode != tc.expectedCode {
					t.Fatalf("expected %s, got %+v", tc.expectedCode, resp)
				}
			})
		}
	})

	t.Run("attaches authenticated principal to request context", func(t *testing.T) {
		t.Parallel()

		principal := application.Principal{Username: "admin@lmdetailing.com", SessionID: "session-1"}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil).WithContext(context.Background())
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-token"})
		recorder := httptest.NewRecorder()

		var captured application.Principal
		middleware := RequireSession(fakeSessionValidator{principal: principal}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				t.Fatal("expected principal in request context")
			}
			captured = p
			w.WriteHeader(http.StatusOK)
		}))
		middleware.ServeHTTP(recorder, req)

		expectStatus(t, recorder, http.StatusOK)
		if captured != principal {
			t.Fatalf("expected %+v, got %+v", principal, captured)
		}
	})

	t.Run("store failures become internal errors", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer transient-error")
		recorder := httptest.NewRecorder()

		handler := RequireSession(fakeSessionValidator{err: errors.New("disk full")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))
		handler.ServeHTTP(recorder, req)

		expectStatus(t, recorder, http.StatusInternalServerError)
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected a request logger in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	out := buf.String()
	for _, want := range []string{"request started", "request completed", "request_id=1", "path=/api/catalog"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output %q", want, out)
		}
	}
}

func TestHandlerLoggerTagsAdmin(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	fallback := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := ContextWithPrincipal(context.Background(), application.Principal{Username: "admin@lmdetailing.com"})
	handlerLogger(ctx, fallback, "BookingHandler", "Delete", "booking_id", "b1").Info("booking deleted")
	handlerLogger(context.Background(), fallback, "PublicHandler", "").Info("catalog served")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}
	for _, want := range []string{"handler=BookingHandler", "operation=Delete", "admin=admin@lmdetailing.com", "booking_id=b1"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("expected %q in %q", want, lines[0])
		}
	}
	if strings.Contains(lines[1], "admin=") || strings.Contains(lines[1], "operation=") {
		t.Fatalf("expected public entry without admin or operation, got %q", lines[1])
	}
}

func TestCSRFExemptions(t *testing.T) {
	t.Parallel()

	reached := false
	handler := CSRF(CSRFConfig{AuthKey: testCSRFKey}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		prepare func(*http.Request)
		want    int
	}{
		{
			name:    "json body",
			prepare: func(r *http.Request) { r.Header.Set("Content-Type", "application/json; charset=utf-8") },
			want:    http.StatusNoContent,
		},
		{
			name:    "bearer token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer token") },
			want:    http.StatusNoContent,
		},
		{
			name:    "cookie authenticated delete",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "token"}) },
			want:    http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		reached = false
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/bookings/1", nil)
		tc.prepare(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
		if reached != (tc.want == http.StatusNoContent) {
			t.Fatalf("%s: unexpected next handler invocation %v", tc.name, reached)
		}
	}
}

type fakeSessionValidator struct {
	principal application.Principal
	err       error
}

func (f fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return f.principal, f.err
}
