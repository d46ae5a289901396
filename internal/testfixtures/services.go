package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/mail"
	"github.com/example/detailing-backoffice/internal/persistence"
)

// Collection names used by the fixtures, matching the production layout.
const (
	BookingsCollection = "lm-bookings"
	ContactsCollection = "lm-contacts"
	GalleryCollection  = "lm-gallery-images"
	SlotsCollection    = "lm-booked-slots"
	SessionsCollection = "lm-admin-sessions"
)

// AdminUsername and AdminPassword are the credentials accepted by services
// built through a ServiceFactory.
const (
	AdminUsername = "admin@lmdetailing.com"
	AdminPassword = "motdepasse"
)

// Business is the identity signing composed emails in tests.
var Business = mail.Identity{Name: "LM Detailing", Email: "contact@lmdetailing.com", Phone: "06 93 94 03 67"}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator()
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services bundles every application service over one Store.
type Services struct {
	Store    *persistence.Store
	Bookings *application.BookingService
	Slots    *application.SlotService
	Contacts *application.ContactService
	Gallery  *application.GalleryService
	Stats    *application.StatsService
	Auth     *application.AuthService

	BookingRecords *persistence.Collection[application.Booking]
	ContactRecords *persistence.Collection[application.Contact]
	ImageRecords   *persistence.Collection[application.GalleryImage]
	SlotRegister   *persistence.Document[map[string][]string]
}

// NewMemoryServices wires every service over an in-memory backend.
func (f *ServiceFactory) NewMemoryServices() *Services {
	return f.NewServices(persistence.NewStore(persistence.NewMemoryBackend(), f.Logger))
}

// NewServices wires every service over store the way the server does. The
// admin password is compared in plain text to keep tests fast.
func (f *ServiceFactory) NewServices(store *persistence.Store) *Services {
	now := f.Clock.NowFunc()

	bookings := persistence.NewCollection[application.Booking](store, BookingsCollection)
	contacts := persistence.NewCollection[application.Contact](store, ContactsCollection)
	images := persistence.NewSeededCollection(store, GalleryCollection, application.DefaultGalleryImages)
	register := persistence.NewSeededDocument(store, SlotsCollection, application.DefaultOccupiedSlots)
	sessions := persistence.NewCollection[application.Session](store, SessionsCollection)

	slots := application.NewSlotServiceWithLogger(register, bookings, application.SlotPolicySeeded, now, f.Logger)
	stats := application.NewStatsServiceWithLogger(bookings, contacts, images, now, f.Logger)
	stats.Subscribe(store, BookingsCollection, ContactsCollection, GalleryCollection)

	return &Services{
		Store:    store,
		Bookings: application.NewBookingServiceWithLogger(bookings, slots, f.IDGenerator.For("booking"), now, f.Logger),
		Slots:    slots,
		Contacts: application.NewContactServiceWithLogger(contacts, Business, f.IDGenerator.For("contact"), now, f.Logger),
		Gallery:  application.NewGalleryServiceWithLogger(images, f.IDGenerator.For("image"), now, f.Logger),
		Stats:    stats,
		Auth: application.NewAuthServiceWithLogger(
			application.AdminAccount{Username: AdminUsername, PasswordHash: AdminPassword},
			sessions,
			PlainPasswordVerifier,
			f.IDGenerator.For("session"),
			now,
			time.Hour,
			f.Logger,
		),
		BookingRecords: bookings,
		ContactRecords: contacts,
		ImageRecords:   images,
		SlotRegister:   register,
	}
}

// PlainPasswordVerifier accepts a password equal to the stored value.
func PlainPasswordVerifier(stored, password string) error {
	if stored != password {
		return application.ErrInvalidCredentials
	}
	return nil
}

// Login authenticates the fixture admin and returns the session token.
func (s *Services) Login(ctx context.Context) (string, error) {
	result, err := s.Auth.Authenticate(ctx, application.AuthenticateParams{Username: AdminUsername, Password: AdminPassword})
	if err != nil {
		return "", err
	}
	return result.Session.Token, nil
}
