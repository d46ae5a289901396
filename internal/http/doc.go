// Package http exposes the detailing back office over a JSON API.
//
// Public endpoints, used by the marketing site:
//   - GET /api/catalog: services, gallery categories and bookable time slots.
//   - GET /api/csrf: the token form-encoded submissions must echo in the
//     X-CSRF-Token header or gorilla.csrf.Token field.
//   - GET /api/availability?date=YYYY-MM-DD: slot occupation of a date.
//   - POST /api/bookings: booking request, JSON or form-encoded. Sundays, past
//     dates and occupied slots are rejected with 422.
//   - POST /api/contacts: contact message, JSON or form-encoded. The response
//     carries the mailto: link of the quote request.
//   - GET /api/gallery?category=: published images with per-category counts.
//
// Back-office endpoints require a session token, sent as a bearer token or the
// session_token cookie:
//   - POST /api/admin/sessions: login. Body: {"username","password"}. Response:
//     {"token","expires_at","username"}; the token is also surfaced via the
//     X-Session-Token header and the session_token cookie.
//   - DELETE /api/admin/sessions/current: logout. Returns 204 and clears the cookie.
//   - /api/admin/bookings, /api/admin/bookings/summary, /api/admin/bookings/{id}
//     and /api/admin/bookings/{id}/status: booking management.
//   - GET|PUT /api/admin/slots/{date}: the occupied slot register.
//   - /api/admin/contacts, /api/admin/contacts/summary, /api/admin/contacts/{id}
//     plus its status, priority and reply sub-resources. Reading a message
//     marks it read.
//   - /api/admin/gallery, /api/admin/gallery/{id} and
//     /api/admin/gallery/{id}/publication: portfolio management.
//   - GET /api/admin/stats: dashboard counters and revenue.
//
// DELETE requests on records answer 409 CONFIRMATION_REQUIRED unless
// ?confirm=true is given. Errors use the errorResponse body with French
// messages; validation failures answer 422 with per-field messages.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
