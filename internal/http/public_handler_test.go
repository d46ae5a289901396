package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/example/detailing-backoffice/internal/application"
)

func TestPublicBookingRequests(t *testing.T) {
	t.Parallel()

	t.Run("json request creates a pending workshop booking", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rec := api.do(t, http.MethodPost, "/api/bookings", "", map[string]any{
			"date":    "2024-01-15",
			"time":    "10:00",
			"service": "pro-nettoyage",
			"client":  map[string]string{"nom": "Payet", "telephone": "0692 12 34 56"},
		})
		expectStatus(t, rec, http.StatusCreated)

		result := decodeBody[application.BookingResult](t, rec)
		if result.Booking.Status != "en_attente" || result.Booking.Location != "atelier" {
			t.Fatalf("unexpected booking: %+v", result.Booking)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("expected security headers on the response")
		}
	})

	t.Run("rejections carry french field messages", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		tests := []struct {
			name    string
			body    map[string]any
			field   string
			message string
		}{
			{
				name: "occupied slot",
				body: map[string]any{
					"date": "2024-01-15", "time": "09:00", "service": "pro-nettoyage",
					"client": map[string]string{"nom": "Payet", "telephone": "0692"},
				},
				field:   "time",
				message: "Ce créneau n'est plus disponible.",
			},
			{
				name: "sunday",
				body: map[string]any{
					"date": "2024-01-14", "time": "10:00", "service": "pro-nettoyage",
					"client": map[string]string{"nom": "Payet", "telephone": "0692"},
				},
				field:   "date",
				message: "Cette date n'est pas ouverte à la réservation.",
			},
			{
				name:    "missing client name",
				body:    map[string]any{"date": "2024-01-15", "time": "10:00", "service": "pro-nettoyage"},
				field:   "client.nom",
				message: "Le nom est obligatoire.",
			},
			{
				name: "unknown service",
				body: map[string]any{
					"date": "2024-01-15", "time": "10:00", "service": "lavage-fusee",
					"client": map[string]string{"nom": "Payet", "telephone": "0692"},
				},
				field:   "service",
				message: "Le service ne fait pas partie des prestations proposées.",
			},
		}

		for _, tc := range tests {
			rec := api.do(t, http.MethodPost, "/api/bookings", "", tc.body)
			expectStatus(t, rec, http.StatusUnprocessableEntity)

			resp := decodeBody[errorResponse](t, rec)
			if got := resp.Errors[tc.field]; got != tc.message {
				t.Fatalf("%s: expected %q for %s, got %q (%+v)", tc.name, tc.message, tc.field, got, resp.Errors)
			}
		}
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)

		expectStatus(t, rec, http.StatusBadRequest)
		if resp := decodeBody[errorResponse](t, rec); resp.Message != errBadRequestBody.Error() {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})
}

func TestPublicFormSubmissions(t *testing.T) {
	t.Parallel()

	form := url.Values{
		"date":      {"2024-01-16"},
		"time":      {"11:00"},
		"service":   {"Express Detailing"},
		"nom":       {"Hoarau"},
		"prenom":    {"Léa"},
		"telephone": {"0693 00 00 00"},
	}

	t.Run("form posts without a csrf token are refused", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		rec := api.postForm(t, "/api/bookings", form, nil)
		expectStatus(t, rec, http.StatusForbidden)
		if resp := decodeBody[errorResponse](t, rec); resp.ErrorCode != "CSRF_INVALID" {
			t.Fatalf("expected CSRF_INVALID, got %+v", resp)
		}
	})

	t.Run("form posts echoing the token are accepted", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)

		tokenRec := api.do(t, http.MethodGet, "/api/csrf", "", nil)
		expectStatus(t, tokenRec, http.StatusOK)
		token := decodeBody[csrfTokenResponse](t, tokenRec).Token
		if token == "" {
			t.Fatalf("expected a csrf token")
		}
		cookies := tokenRec.Result().Cookies()

		rec := api.postForm(t, "/api/bookings", form, func(req *http.Request) {
			req.Header.Set("X-CSRF-Token", token)
			for _, cookie := range cookies {
				req.AddCookie(cookie)
			}
		})
		expectStatus(t, rec, http.StatusCreated)

		result := decodeBody[application.BookingResult](t, rec)
		if result.Booking.Client.FirstName != "Léa" || result.Booking.Service != "express-nettoyage" {
			t.Fatalf("form fields not mapped: %+v", result.Booking)
		}
	})
}

func TestPublicContactSubmission(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/contacts", "", map[string]string{
		"nom":     "Marie Grondin",
		"email":   "Marie@Example.com",
		"service": "Pro Protection",
		"message": "Bonjour, un devis svp.",
	})
	expectStatus(t, rec, http.StatusCreated)

	receipt := decodeBody[application.ContactReceipt](t, rec)
	if receipt.Contact.Email != "marie@example.com" || receipt.Contact.Status != "nouveau" {
		t.Fatalf("unexpected contact: %+v", receipt.Contact)
	}
	if !strings.HasPrefix(receipt.Mailto, "mailto:") {
		t.Fatalf("expected mailto link, got %q", receipt.Mailto)
	}

	invalid := api.do(t, http.MethodPost, "/api/contacts", "", map[string]string{"email": "pas-un-email"})
	expectStatus(t, invalid, http.StatusUnprocessableEntity)
	errs := decodeBody[errorResponse](t, invalid).Errors
	if errs["nom"] != "Le nom est obligatoire." || errs["email"] != "L'email est invalide." {
		t.Fatalf("unexpected validation errors: %+v", errs)
	}
}

func TestPublicReadEndpoints(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	t.Run("catalog", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/catalog", "", nil)
		expectStatus(t, rec, http.StatusOK)

		resp := decodeBody[catalogResponse](t, rec)
		if len(resp.TimeSlots) == 0 || resp.TimeSlots[0] != "08:30" {
			t.Fatalf("unexpected slots: %v", resp.TimeSlots)
		}
		found := map[string]serviceDTO{}
		for _, svc := range resp.Services {
			found[svc.ID] = svc
		}
		if found["pro-nettoyage"].Duration != "4h" || found["pro-nettoyage"].OnQuote {
			t.Fatalf("unexpected pro-nettoyage entry: %+v", found["pro-nettoyage"])
		}
		if !found["ultimate-protection"].OnQuote {
			t.Fatalf("expected ultimate-protection on quote")
		}
		if len(resp.Statuses) != 6 {
			t.Fatalf("expected every booking status, got %+v", resp.Statuses)
		}
		if first := resp.Statuses[0]; first.ID != "en_attente" || first.Label != "En attente" {
			t.Fatalf("unexpected first status %+v", first)
		}
		if last := resp.Statuses[5]; last.ID != "refusee" || last.Label != "Refusée" {
			t.Fatalf("unexpected last status %+v", last)
		}
	})

	t.Run("availability", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/availability?date=2024-01-15", "", nil)
		expectStatus(t, rec, http.StatusOK)

		availability := decodeBody[application.SlotAvailability](t, rec)
		taken := map[string]bool{}
		for _, slot := range availability.Slots {
			taken[slot.Time] = slot.Taken
		}
		if !taken["09:00"] || !taken["14:00"] || taken["10:00"] {
			t.Fatalf("unexpected occupation: %+v", availability.Slots)
		}

		expectStatus(t, api.do(t, http.MethodGet, "/api/availability?date=demain", "", nil), http.StatusUnprocessableEntity)
	})

	t.Run("gallery shows published images only", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/gallery", "", nil)
		expectStatus(t, rec, http.StatusOK)

		gallery := decodeBody[application.PublicGallery](t, rec)
		if gallery.Total != 2 || len(gallery.Images) != 2 {
			t.Fatalf("expected two published images, got %+v", gallery)
		}

		filtered := decodeBody[application.PublicGallery](t, api.do(t, http.MethodGet, "/api/gallery?category=protection", "", nil))
		if len(filtered.Images) != 0 || filtered.Total != 2 {
			t.Fatalf("unexpected filtered gallery: %+v", filtered)
		}

		expectStatus(t, api.do(t, http.MethodGet, "/api/gallery?category=inconnue", "", nil), http.StatusUnprocessableEntity)
	})

	t.Run("unsupported methods", func(t *testing.T) {
		expectStatus(t, api.do(t, http.MethodDelete, "/api/catalog", "x", nil), http.StatusMethodNotAllowed)
	})
}
