package application

import (
	"time"

	"github.com/example/detailing-backoffice/internal/catalog"
)

// Client is the customer attached to a booking.
type Client struct {
	LastName  string `json:"nom" validate:"required"`
	FirstName string `json:"prenom"`
	Phone     string `json:"telephone" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Vehicle   string `json:"vehicule"`
	Comments  string `json:"commentaires"`
}

// Booking is a persisted appointment request.
type Booking struct {
	ID        string                `json:"id"`
	Date      string                `json:"date"`
	Time      string                `json:"time"`
	Service   string                `json:"service"`
	Client    Client                `json:"client"`
	Status    catalog.BookingStatus `json:"statut"`
	Location  catalog.Location      `json:"lieu"`
	Price     string                `json:"prix,omitempty"`
	Notes     string                `json:"notes,omitempty"`
	CreatedAt time.Time             `json:"dateCreation"`
}

// BookingInput captures caller provided booking fields. Location, price and
// notes are only honoured for back-office bookings.
type BookingInput struct {
	Date     string           `json:"date" validate:"required,civildate"`
	Time     string           `json:"time" validate:"required,timeslot"`
	Service  string           `json:"service" validate:"required,service"`
	Client   Client           `json:"client"`
	Location catalog.Location `json:"lieu" validate:"omitempty,location"`
	Price    string           `json:"prix"`
	Notes    string           `json:"notes"`
}

// UpdateBookingParams replaces every editable field of a booking. An empty
// status keeps the current one.
type UpdateBookingParams struct {
	ID     string
	Input  BookingInput
	Status catalog.BookingStatus
}

// DeleteParams identifies a record to delete. Confirmed must be set by the
// caller once the user acknowledged that deletion is irreversible.
type DeleteParams struct {
	ID        string
	Confirmed bool
}

// SlotWarning describes an advisory slot collision surfaced with a booking.
type SlotWarning struct {
	BookingID string `json:"reservationId,omitempty"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// BookingResult is returned by booking writes.
type BookingResult struct {
	Booking  Booking       `json:"reservation"`
	Warnings []SlotWarning `json:"avertissements,omitempty"`
}

// BookingFilter narrows a booking listing. Empty fields match everything.
type BookingFilter struct {
	Search    string
	Status    string
	DateRange string
}

// BookingSummary holds the counters shown above the booking list.
type BookingSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"enAttente"`
	Confirmed  int `json:"confirmees"`
	InProgress int `json:"enCours"`
	Today      int `json:"aujourdhui"`
}

// SlotState is the availability of one time slot.
type SlotState struct {
	Time  string `json:"time"`
	Taken bool   `json:"occupe"`
}

// SlotAvailability lists the slots of a date.
type SlotAvailability struct {
	Date     string      `json:"date"`
	Bookable bool        `json:"reservable"`
	Slots    []SlotState `json:"creneaux"`
}

// Contact is a persisted inquiry message.
type Contact struct {
	ID        string                `json:"id"`
	Name      string                `json:"nom"`
	Email     string                `json:"email"`
	Phone     string                `json:"telephone"`
	Service   string                `json:"service"`
	Message   string                `json:"message"`
	SentAt    time.Time             `json:"dateEnvoi"`
	Status    catalog.ContactStatus `json:"statut"`
	Read      bool                  `json:"lu"`
	Priority  catalog.Priority      `json:"priorite,omitempty"`
	Reply     string                `json:"reponse,omitempty"`
	RepliedAt *time.Time            `json:"dateReponse,omitempty"`
}

// ContactInput captures the public contact form.
type ContactInput struct {
	Name    string `json:"nom" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"telephone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// ContactReceipt is returned to the visitor after submitting the contact form.
type ContactReceipt struct {
	Contact Contact `json:"contact"`
	Mailto  string  `json:"mailto"`
}

// ReplyParams carries an administrator reply.
type ReplyParams struct {
	ID      string `json:"-"`
	Message string `json:"message" validate:"required"`
}

// ReplyResult is the stored reply plus the links handed to a mail client.
// When a provider is configured, Delivered reports whether it accepted the message.
type ReplyResult struct {
	Contact       Contact `json:"contact"`
	GmailURL      string  `json:"gmailUrl"`
	MailtoURL     string  `json:"mailtoUrl"`
	Delivered     bool    `json:"envoye"`
	MessageID     string  `json:"messageId,omitempty"`
	DeliveryError string  `json:"erreurEnvoi,omitempty"`
}

// ContactFilter narrows a contact listing. Empty fields match everything.
type ContactFilter struct {
	Search   string
	Status   string
	Priority string
}

// ContactSummary holds the counters shown above the contact list.
type ContactSummary struct {
	Total      int `json:"total"`
	New        int `json:"nouveaux"`
	InProgress int `json:"enCours"`
	Unread     int `json:"nonLus"`
}

// GalleryImage is a persisted portfolio entry.
type GalleryImage struct {
	ID          string           `json:"id"`
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    catalog.Category `json:"category"`
	Service     string           `json:"service"`
	Tags        []string         `json:"tags"`
	UploadDate  string           `json:"uploadDate"`
	Published   bool             `json:"publiee"`
}

// ImageInput captures the gallery upload form. Tags is the comma separated
// list typed by the administrator.
type ImageInput struct {
	URL         string `json:"url" validate:"required,imagesrc"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,category"`
	Service     string `json:"service" validate:"omitempty,service"`
	Tags        string `json:"tags"`
}

// UpdateImageParams replaces the editable fields of an image. Publication
// is changed only through ToggleImagePublication.
type UpdateImageParams struct {
	ID    string
	Input ImageInput
}

// ImageFilter narrows the back-office gallery listing.
type ImageFilter struct {
	Search   string
	Category string
}

// PublicGallery is the published subset of the gallery with per-category counts.
type PublicGallery struct {
	Images []GalleryImage           `json:"images"`
	Counts map[catalog.Category]int `json:"categories"`
	Total  int                      `json:"total"`
}

// DashboardStats aggregates the three collections for the back-office dashboard.
type DashboardStats struct {
	TotalBookings   int     `json:"totalReservations"`
	PendingBookings int     `json:"reservationsEnAttente"`
	TotalContacts   int     `json:"totalContacts"`
	NewContacts     int     `json:"nouveauxContacts"`
	UnreadContacts  int     `json:"contactsNonLus"`
	TotalImages     int     `json:"totalImages"`
	PublishedImages int     `json:"imagesPubliees"`
	Revenue         float64 `json:"chiffreAffaires"`
	RevenueLabel    string  `json:"chiffreAffairesLibelle"`
}

// Principal represents the authenticated administrator invoking a service method.
type Principal struct {
	Username  string
	SessionID string
}

// Session is an issued admin session.
type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// AuthenticateParams carries the admin login form.
type AuthenticateParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticateResult is returned by a successful login.
type AuthenticateResult struct {
	Principal Principal
	Session   Session
}
