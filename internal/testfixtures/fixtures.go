package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/catalog"
)

var (
	bookingCounter uint64
	contactCounter uint64
	imageCounter   uint64
)

// referenceTime is a Wednesday morning in Réunion.
var referenceTime = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.FixedZone("RET", 4*60*60))

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Booking fixtures -----------------------------

// BookingOption configures the generated booking fixture.
type BookingOption func(*application.Booking)

// NewBooking returns a deterministic pending booking with optional overrides.
func NewBooking(opts ...BookingOption) application.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := application.Booking{
		ID:      fmt.Sprintf("booking-%03d", idx),
		Date:    "2024-01-15",
		Time:    "10:00",
		Service: "pro-nettoyage",
		Client: application.Client{
			LastName:  fmt.Sprintf("Client %03d", idx),
			FirstName: "Marie",
			Phone:     fmt.Sprintf("0692 00 %02d %02d", idx/100%100, idx%100),
			Email:     fmt.Sprintf("client-%03d@example.com", idx),
			Vehicle:   "Peugeot 208",
		},
		Status:    catalog.BookingPending,
		Location:  catalog.LocationWorkshop,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(b *application.Booking) {
		b.ID = id
	}
}

// WithBookingSlot sets the date and time of the booking.
func WithBookingSlot(date, slot string) BookingOption {
	return func(b *application.Booking) {
		b.Date = date
		b.Time = slot
	}
}

// WithBookingStatus sets the booking status.
func WithBookingStatus(status catalog.BookingStatus) BookingOption {
	return func(b *application.Booking) {
		b.Status = status
	}
}

// WithBookingPrice sets the free-form price.
func WithBookingPrice(price string) BookingOption {
	return func(b *application.Booking) {
		b.Price = price
	}
}

// WithBookingClient replaces the client.
func WithBookingClient(client application.Client) BookingOption {
	return func(b *application.Booking) {
		b.Client = client
	}
}

// BookingInput returns a valid booking form for date and slot.
func BookingInput(date, slot string) application.BookingInput {
	return application.BookingInput{
		Date:    date,
		Time:    slot,
		Service: "pro-nettoyage",
		Client: application.Client{
			LastName:  "Dupont",
			FirstName: "Marie",
			Phone:     "0692 12 34 56",
			Email:     "marie.dupont@example.com",
			Vehicle:   "Peugeot 208",
		},
	}
}

// ----------------------------- Contact fixtures -----------------------------

// ContactOption configures the generated contact fixture.
type ContactOption func(*application.Contact)

// NewContact returns a deterministic unread message with optional overrides.
func NewContact(opts ...ContactOption) application.Contact {
	idx := atomic.AddUint64(&contactCounter, 1)
	contact := application.Contact{
		ID:      fmt.Sprintf("contact-%03d", idx),
		Name:    fmt.Sprintf("Visiteur %03d", idx),
		Email:   fmt.Sprintf("visiteur-%03d@example.com", idx),
		Phone:   "0693 00 00 00",
		Service: "Pro Protection",
		Message: "Bonjour, je souhaite un devis.",
		SentAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
		Status:  catalog.ContactNew,
	}
	for _, opt := range opts {
		opt(&contact)
	}
	return contact
}

// WithContactID overrides the generated contact ID.
func WithContactID(id string) ContactOption {
	return func(c *application.Contact) {
		c.ID = id
	}
}

// WithContactStatus sets the message status.
func WithContactStatus(status catalog.ContactStatus) ContactOption {
	return func(c *application.Contact) {
		c.Status = status
	}
}

// WithContactRead sets the read flag.
func WithContactRead(read bool) ContactOption {
	return func(c *application.Contact) {
		c.Read = read
	}
}

// ----------------------------- Image fixtures -----------------------------

// ImageOption configures the generated gallery image fixture.
type ImageOption func(*application.GalleryImage)

// NewImage returns a deterministic unpublished image with optional overrides.
func NewImage(opts ...ImageOption) application.GalleryImage {
	idx := atomic.AddUint64(&imageCounter, 1)
	image := application.GalleryImage{
		ID:          fmt.Sprintf("image-%03d", idx),
		URL:         fmt.Sprintf("https://example.com/gallery/%03d.jpg", idx),
		Title:       fmt.Sprintf("Réalisation %03d", idx),
		Description: "Nettoyage intérieur complet",
		Category:    catalog.CategoryCleaning,
		Service:     "Pro Detailing",
		Tags:        []string{"interieur"},
		UploadDate:  "2024-01-10",
	}
	for _, opt := range opts {
		opt(&image)
	}
	return image
}

// WithImageCategory sets the image category.
func WithImageCategory(category catalog.Category) ImageOption {
	return func(i *application.GalleryImage) {
		i.Category = category
	}
}

// WithImagePublished sets the publication flag.
func WithImagePublished(published bool) ImageOption {
	return func(i *application.GalleryImage) {
		i.Published = published
	}
}
