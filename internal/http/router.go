package http

import (
	"net/http"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Public   *PublicHandler
	Bookings *BookingHandler
	Slots    *SlotHandler
	Contacts *ContactHandler
	Gallery  *GalleryHandler
	Stats    *StatsHandler
	// RequireAdmin guards every /api/admin route except login.
	RequireAdmin func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	admin := func(pattern string, handler http.HandlerFunc) {
		if cfg.RequireAdmin != nil {
			mux.Handle(pattern, cfg.RequireAdmin(handler))
			return
		}
		mux.Handle(pattern, handler)
	}

	if cfg.Public != nil {
		mux.HandleFunc("GET /api/catalog", cfg.Public.Catalog)
		mux.HandleFunc("GET /api/csrf", cfg.Public.CSRFToken)
		mux.HandleFunc("GET /api/availability", cfg.Public.Availability)
		mux.HandleFunc("POST /api/bookings", cfg.Public.RequestBooking)
		mux.HandleFunc("POST /api/contacts", cfg.Public.SubmitContact)
		mux.HandleFunc("GET /api/gallery", cfg.Public.Gallery)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /api/admin/sessions", cfg.Auth.CreateSession)
		mux.HandleFunc("DELETE /api/admin/sessions/current", cfg.Auth.DeleteCurrentSession)
	}

	if cfg.Bookings != nil {
		admin("GET /api/admin/bookings", cfg.Bookings.List)
		admin("POST /api/admin/bookings", cfg.Bookings.Create)
		admin("GET /api/admin/bookings/summary", cfg.Bookings.Summary)
		admin("GET /api/admin/bookings/{id}", cfg.Bookings.Get)
		admin("PUT /api/admin/bookings/{id}", cfg.Bookings.Update)
		admin("DELETE /api/admin/bookings/{id}", cfg.Bookings.Delete)
		admin("PUT /api/admin/bookings/{id}/status", cfg.Bookings.SetStatus)
	}

	if cfg.Slots != nil {
		admin("GET /api/admin/slots/{date}", cfg.Slots.Get)
		admin("PUT /api/admin/slots/{date}", cfg.Slots.Put)
	}

	if cfg.Contacts != nil {
		admin("GET /api/admin/contacts", cfg.Contacts.List)
		admin("GET /api/admin/contacts/summary", cfg.Contacts.Summary)
		admin("GET /api/admin/contacts/{id}", cfg.Contacts.Open)
		admin("DELETE /api/admin/contacts/{id}", cfg.Contacts.Delete)
		admin("PUT /api/admin/contacts/{id}/status", cfg.Contacts.SetStatus)
		admin("PUT /api/admin/contacts/{id}/priority", cfg.Contacts.SetPriority)
		admin("POST /api/admin/contacts/{id}/reply", cfg.Contacts.Reply)
	}

	if cfg.Gallery != nil {
		admin("GET /api/admin/gallery", cfg.Gallery.List)
		admin("POST /api/admin/gallery", cfg.Gallery.Create)
		admin("PUT /api/admin/gallery/{id}", cfg.Gallery.Update)
		admin("DELETE /api/admin/gallery/{id}", cfg.Gallery.Delete)
		admin("POST /api/admin/gallery/{id}/publication", cfg.Gallery.TogglePublication)
	}

	if cfg.Stats != nil {
		admin("GET /api/admin/stats", cfg.Stats.Dashboard)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}
