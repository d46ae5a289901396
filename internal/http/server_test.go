package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/example/detailing-backoffice/internal/testfixtures"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

type testAPI struct {
	services *testfixtures.Services
	handler  http.Handler
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	services := testfixtures.NewServiceFactory(testfixtures.WithLogger(logger)).NewMemoryServices()

	handler := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(services.Auth, logger),
		Public:       NewPublicHandler(services.Bookings, services.Slots, services.Contacts, services.Gallery, logger),
		Bookings:     NewBookingHandler(services.Bookings, logger),
		Slots:        NewSlotHandler(services.Slots, logger),
		Contacts:     NewContactHandler(services.Contacts, logger),
		Gallery:      NewGalleryHandler(services.Gallery, logger),
		Stats:        NewStatsHandler(services.Stats, logger),
		RequireAdmin: RequireSession(services.Auth, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			SecurityHeaders,
			CSRF(CSRFConfig{AuthKey: testCSRFKey}, logger),
		},
	})

	return testAPI{services: services, handler: handler}
}

func (a testAPI) login(t *testing.T) string {
	t.Helper()
	token, err := a.services.Login(context.Background())
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return token
}

// do sends a JSON request. A non-empty token is sent as a bearer token.
func (a testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a testAPI) postForm(t *testing.T, target string, values url.Values, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if prepare != nil {
		prepare(req)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
