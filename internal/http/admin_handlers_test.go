package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/example/detailing-backoffice/internal/application"
)

func TestAdminRoutesRequireSession(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	for _, target := range []string{"/api/admin/bookings", "/api/admin/contacts", "/api/admin/gallery", "/api/admin/stats", "/api/admin/slots/2024-01-15"} {
		rec := api.do(t, http.MethodGet, target, "", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
		if resp := decodeBody[errorResponse](t, rec); resp.ErrorCode != "AUTH_REQUIRED" {
			t.Fatalf("%s: expected AUTH_REQUIRED, got %+v", target, resp)
		}
	}

	expectStatus(t, api.do(t, http.MethodGet, "/api/admin/bookings", "forged", nil), http.StatusUnauthorized)
}

func TestBookingHandlers(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/api/admin/bookings", token, map[string]any{
		"date":    "2024-01-15",
		"time":    "09:00",
		"service": "Pro Detailing",
		"client":  map[string]string{"nom": "Técher", "telephone": "0692"},
		"lieu":    "domicile",
		"prix":    "199,50 €",
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[application.BookingResult](t, rec)
	if created.Booking.Status != "confirmee" || created.Booking.Location != "domicile" {
		t.Fatalf("unexpected booking: %+v", created.Booking)
	}
	if len(created.Warnings) == 0 {
		t.Fatalf("expected an occupied slot warning")
	}
	id := created.Booking.ID

	t.Run("list filters by status", func(t *testing.T) {
		list := decodeBody[bookingListResponse](t, api.do(t, http.MethodGet, "/api/admin/bookings?statut=confirmee", token, nil))
		if list.Count != 1 || list.Bookings[0].ID != id {
			t.Fatalf("unexpected listing: %+v", list)
		}
		expectStatus(t, api.do(t, http.MethodGet, "/api/admin/bookings?statut=perdue", token, nil), http.StatusUnprocessableEntity)
	})

	t.Run("summary and lookup", func(t *testing.T) {
		summary := decodeBody[application.BookingSummary](t, api.do(t, http.MethodGet, "/api/admin/bookings/summary", token, nil))
		if summary.Total != 1 || summary.Confirmed != 1 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		booking := decodeBody[application.Booking](t, api.do(t, http.MethodGet, "/api/admin/bookings/"+id, token, nil))
		if booking.Price != "199,50 €" {
			t.Fatalf("unexpected booking: %+v", booking)
		}
		expectStatus(t, api.do(t, http.MethodGet, "/api/admin/bookings/absent", token, nil), http.StatusNotFound)
	})

	t.Run("status and update", func(t *testing.T) {
		rec := api.do(t, http.MethodPut, "/api/admin/bookings/"+id+"/status", token, map[string]string{"statut": "terminee"})
		expectStatus(t, rec, http.StatusOK)
		if booking := decodeBody[application.Booking](t, rec); booking.Status != "terminee" {
			t.Fatalf("unexpected status: %s", booking.Status)
		}

		stats := decodeBody[application.DashboardStats](t, api.do(t, http.MethodGet, "/api/admin/stats", token, nil))
		if stats.Revenue != 199.5 || stats.RevenueLabel != "199.50€" {
			t.Fatalf("unexpected revenue: %+v", stats)
		}

		update := api.do(t, http.MethodPut, "/api/admin/bookings/"+id, token, map[string]any{
			"date":    "2024-01-17",
			"time":    "10:00",
			"service": "pro-nettoyage",
			"client":  map[string]string{"nom": "Técher", "telephone": "0692"},
			"notes":   "Portail bleu",
		})
		expectStatus(t, update, http.StatusOK)
		result := decodeBody[application.BookingResult](t, update)
		if result.Booking.Date != "2024-01-17" || result.Booking.Status != "terminee" || result.Booking.Notes != "Portail bleu" {
			t.Fatalf("unexpected update: %+v", result.Booking)
		}
	})

	t.Run("delete requires confirmation", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/admin/bookings/"+id, token, nil)
		expectStatus(t, rec, http.StatusConflict)
		if resp := decodeBody[errorResponse](t, rec); resp.ErrorCode != "CONFIRMATION_REQUIRED" {
			t.Fatalf("expected CONFIRMATION_REQUIRED, got %+v", resp)
		}

		expectStatus(t, api.do(t, http.MethodDelete, "/api/admin/bookings/"+id+"?confirm=peut-etre", token, nil), http.StatusBadRequest)
		expectStatus(t, api.do(t, http.MethodDelete, "/api/admin/bookings/"+id+"?confirm=true", token, nil), http.StatusNoContent)
		expectStatus(t, api.do(t, http.MethodGet, "/api/admin/bookings/"+id, token, nil), http.StatusNotFound)
	})
}

func TestSlotHandlers(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.login(t)

	rec := api.do(t, http.MethodPut, "/api/admin/slots/2024-01-17", token, occupiedSlotsRequest{Slots: []string{"11:00", "08:30", "11:00"}})
	expectStatus(t, rec, http.StatusOK)

	public := decodeBody[application.SlotAvailability](t, api.do(t, http.MethodGet, "/api/availability?date=2024-01-17", "", nil))
	taken := []string{}
	for _, slot := range public.Slots {
		if slot.Taken {
			taken = append(taken, slot.Time)
		}
	}
	if strings.Join(taken, ",") != "08:30,11:00" {
		t.Fatalf("unexpected occupied slots: %v", taken)
	}

	invalid := api.do(t, http.MethodPut, "/api/admin/slots/2024-01-17", token, occupiedSlotsRequest{Slots: []string{"07:00"}})
	expectStatus(t, invalid, http.StatusUnprocessableEntity)
	if got := decodeBody[errorResponse](t, invalid).Errors["creneaux"]; got != "Les créneaux doivent faire partie des horaires d'ouverture." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestContactHandlers(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.login(t)

	receipt, err := api.services.Contacts.SubmitContact(context.Background(), application.ContactInput{
		Name:    "Marie Grondin",
		Email:   "marie@example.com",
		Message: "Un devis pour une céramique.",
	})
	if err != nil {
		t.Fatalf("submit contact: %v", err)
	}
	id := receipt.Contact.ID

	opened := decodeBody[application.Contact](t, api.do(t, http.MethodGet, "/api/admin/contacts/"+id, token, nil))
	if !opened.Read {
		t.Fatalf("expected opening to mark the message read")
	}

	summary := decodeBody[application.ContactSummary](t, api.do(t, http.MethodGet, "/api/admin/contacts/summary", token, nil))
	if summary.Total != 1 || summary.Unread != 0 || summary.New != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/contacts/"+id+"/priority", token, map[string]string{"priorite": "haute"}), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/contacts/"+id+"/priority", token, map[string]string{"priorite": "urgente"}), http.StatusUnprocessableEntity)

	list := decodeBody[contactListResponse](t, api.do(t, http.MethodGet, "/api/admin/contacts?priorite=haute&q=grondin", token, nil))
	if list.Count != 1 {
		t.Fatalf("expected one high priority contact, got %+v", list)
	}

	reply := api.do(t, http.MethodPost, "/api/admin/contacts/"+id+"/reply", token, map[string]string{"message": "Bonjour Marie,\n\nVoici notre devis."})
	expectStatus(t, reply, http.StatusOK)
	result := decodeBody[application.ReplyResult](t, reply)
	if !strings.HasPrefix(result.GmailURL, "https://mail.google.com/") || result.Contact.Status != "traite" {
		t.Fatalf("unexpected reply result: %+v", result)
	}

	emptyReply := api.do(t, http.MethodPost, "/api/admin/contacts/"+id+"/reply", token, map[string]string{"message": ""})
	expectStatus(t, emptyReply, http.StatusUnprocessableEntity)
	if got := decodeBody[errorResponse](t, emptyReply).Errors["message"]; got != "Le message est obligatoire." {
		t.Fatalf("unexpected message %q", got)
	}

	expectStatus(t, api.do(t, http.MethodPut, "/api/admin/contacts/"+id+"/status", token, map[string]string{"statut": "archive"}), http.StatusOK)
	expectStatus(t, api.do(t, http.MethodDelete, "/api/admin/contacts/"+id, token, nil), http.StatusConflict)
	expectStatus(t, api.do(t, http.MethodDelete, "/api/admin/contacts/"+id+"?confirm=true", token, nil), http.StatusNoContent)
	expectStatus(t, api.do(t, http.MethodGet, "/api/admin/contacts/"+id, token, nil), http.StatusNotFound)
}

func TestGalleryHandlers(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.login(t)

	list := decodeBody[imageListResponse](t, api.do(t, http.MethodGet, "/api/admin/gallery", token, nil))
	if list.Count != 3 {
		t.Fatalf("expected the seeded gallery, got %+v", list)
	}

	rec := api.do(t, http.MethodPost, "/api/admin/gallery", token, application.ImageInput{
		URL:      "https://images.example.com/capot.jpg",
		Title:    "Capot lustré",
		Category: "protection",
		Service:  "pro-protection",
		Tags:     "capot, Brillance, capot",
	})
	expectStatus(t, rec, http.StatusCreated)
	image := decodeBody[application.GalleryImage](t, rec)
	if image.Published || image.Service != "Pro Protection" || len(image.Tags) != 2 {
		t.Fatalf("unexpected image: %+v", image)
	}

	toggled := decodeBody[application.GalleryImage](t, api.do(t, http.MethodPost, "/api/admin/gallery/"+image.ID+"/publication", token, nil))
	if !toggled.Published {
		t.Fatalf("expected image to be published")
	}
	public := decodeBody[application.PublicGallery](t, api.do(t, http.MethodGet, "/api/gallery?category=protection", "", nil))
	if len(public.Images) != 1 || public.Images[0].ID != image.ID {
		t.Fatalf("expected the new image in the public gallery, got %+v", public.Images)
	}

	invalid := api.do(t, http.MethodPut, "/api/admin/gallery/"+image.ID, token, application.ImageInput{URL: "ftp://x", Title: "Capot", Category: "protection"})
	expectStatus(t, invalid, http.StatusUnprocessableEntity)
	if got := decodeBody[errorResponse](t, invalid).Errors["url"]; got != "L'image doit être une URL http(s) ou une image intégrée." {
		t.Fatalf("unexpected message %q", got)
	}

	expectStatus(t, api.do(t, http.MethodDelete, "/api/admin/gallery/"+image.ID+"?confirm=true", token, nil), http.StatusNoContent)
	expectStatus(t, api.do(t, http.MethodPost, "/api/admin/gallery/"+image.ID+"/publication", token, nil), http.StatusNotFound)
}
