package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/config"
	httptransport "github.com/example/detailing-backoffice/internal/http"
	"github.com/example/detailing-backoffice/internal/logging"
	"github.com/example/detailing-backoffice/internal/mail"
	"github.com/example/detailing-backoffice/internal/persistence"
	"github.com/example/detailing-backoffice/internal/persistence/sqlite"
)

// Collection names of the persisted records.
const (
	bookingsCollection = "lm-bookings"
	contactsCollection = "lm-contacts"
	galleryCollection  = "lm-gallery-images"
	slotsCollection    = "lm-booked-slots"
	sessionsCollection = "lm-admin-sessions"
)

func main() {
	bootstrap := logging.New(os.Stderr, slog.LevelInfo)

	if err := config.LoadDotEnv(); err != nil {
		bootstrap.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootstrap.Warn("unknown log level, using info", "error", err)
	}
	logger := logging.New(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := newHandler(cfg, store, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("detailing API listening", "addr", server.Addr, "storage", cfg.Storage, "slot_policy", cfg.SlotPolicy)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openStore opens the configured backend. The returned close function is
// always safe to call.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*persistence.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, records are lost on restart")
		return persistence.NewStore(persistence.NewMemoryBackend(), logger), func() {}, nil
	}

	backend, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLitePath))
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open storage: %w", err)
	}
	closeBackend := func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}

	if err := backend.Migrate(ctx, logger); err != nil {
		closeBackend()
		return nil, func() {}, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return persistence.NewStore(backend, logger), closeBackend, nil
}

func newHandler(cfg config.Config, store *persistence.Store, logger *slog.Logger) (http.Handler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := func() time.Time { return time.Now().In(loc) }
	tokenGenerator := func() string { return randomHex(32) }

	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" {
		hashed, err := application.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		passwordHash = hashed
	}

	csrfKey := cfg.CSRFKey
	if len(csrfKey) == 0 {
		logger.Warn("DETAILING_CSRF_KEY not set, form tokens will not survive a restart")
		csrfKey = randomBytes(32)
	}

	bookings := persistence.NewCollection[application.Booking](store, bookingsCollection)
	contacts := persistence.NewCollection[application.Contact](store, contactsCollection)
	images := persistence.NewSeededCollection(store, galleryCollection, application.DefaultGalleryImages)
	register := persistence.NewSeededDocument(store, slotsCollection, application.DefaultOccupiedSlots)
	sessions := persistence.NewCollection[application.Session](store, sessionsCollection)

	slotService := application.NewSlotServiceWithLogger(register, bookings, application.SlotPolicy(cfg.SlotPolicy), now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookings, slotService, uuid.NewString, now, logger)
	contactService := application.NewContactServiceWithLogger(contacts, mail.Identity{
		Name:  cfg.BusinessName,
		Email: cfg.BusinessEmail,
		Phone: cfg.BusinessPhone,
	}, uuid.NewString, now, logger)
	galleryService := application.NewGalleryServiceWithLogger(images, uuid.NewString, now, logger)
	statsService := application.NewStatsServiceWithLogger(bookings, contacts, images, now, logger)
	authService := application.NewAuthServiceWithLogger(
		application.AdminAccount{Username: cfg.AdminUsername, PasswordHash: passwordHash},
		sessions,
		application.VerifyPassword,
		tokenGenerator,
		now,
		cfg.SessionTTL,
		logger,
	)

	if sender := selectSender(cfg, logger); sender != nil {
		contactService.UseSender(sender, cfg.MailFrom)
	}
	if cfg.StrictTransitions {
		bookingService.UseTransitions(application.StrictBookingTransitions)
		contactService.UseTransitions(application.StrictContactTransitions)
	}
	statsService.Subscribe(store, bookingsCollection, contactsCollection, galleryCollection)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	authHandler.UseSecureCookies(cfg.SecureCookies)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         authHandler,
		Public:       httptransport.NewPublicHandler(bookingService, slotService, contactService, galleryService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Slots:        httptransport.NewSlotHandler(slotService, logger),
		Contacts:     httptransport.NewContactHandler(contactService, logger),
		Gallery:      httptransport.NewGalleryHandler(galleryService, logger),
		Stats:        httptransport.NewStatsHandler(statsService, logger),
		RequireAdmin: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.SecurityHeaders,
			httptransport.CSRF(httptransport.CSRFConfig{
				AuthKey:        csrfKey,
				TrustedOrigins: cfg.TrustedOrigins,
				Secure:         cfg.SecureCookies,
			}, logger),
		},
	}), nil
}

// selectSender returns the Resend sender when a key is configured. A sender
// address without a key selects the logging sender, which lets staging
// exercise the delivery path without sending anything.
func selectSender(cfg config.Config, logger *slog.Logger) mail.Sender {
	switch {
	case cfg.ResendKey != "":
		return mail.NewResendSender(cfg.ResendKey, cfg.MailFrom, logger)
	case cfg.MailFrom != "":
		return mail.NewNoopSender(logger)
	default:
		return nil
	}
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return buf
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	return hex.EncodeToString(randomBytes(bytes))
}
