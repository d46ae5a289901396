package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/catalog"
)

const dashboardCacheKey = "dashboard"

// ChangeNotifier broadcasts collection writes.
type ChangeNotifier interface {
	OnChange(name string, fn func(ctx context.Context, name string)) func()
}

// StatsService derives the dashboard figures from the three collections.
type StatsService struct {
	bookings RecordStore[Booking]
	contacts RecordStore[Contact]
	images   RecordStore[GalleryImage]
	cache    *resultCache[DashboardStats]
	logger   *slog.Logger
}

// NewStatsService wires the collections read by the dashboard.
func NewStatsService(bookings RecordStore[Booking], contacts RecordStore[Contact], images RecordStore[GalleryImage], now func() time.Time) *StatsService {
	return NewStatsServiceWithLogger(bookings, contacts, images, now, nil)
}

// NewStatsServiceWithLogger wires the collections read by the dashboard with a logger.
func NewStatsServiceWithLogger(bookings RecordStore[Booking], contacts RecordStore[Contact], images RecordStore[GalleryImage], now func() time.Time, logger *slog.Logger) *StatsService {
	return &StatsService{
		bookings: bookings,
		contacts: contacts,
		images:   images,
		cache:    newResultCache[DashboardStats](5*time.Minute, 1, now),
		logger:   defaultLogger(logger),
	}
}

func (s *StatsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StatsService", operation, attrs...)
}

// Subscribe drops the cached figures whenever one of the named collections
// changes. The returned function cancels every subscription.
func (s *StatsService) Subscribe(notifier ChangeNotifier, collections ...string) func() {
	if s == nil || notifier == nil {
		return func() {}
	}
	cancels := make([]func(), 0, len(collections))
	for _, name := range collections {
		cancels = append(cancels, notifier.OnChange(name, func(context.Context, string) {
			s.cache.Invalidate()
		}))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// DashboardStats returns the current figures. A collection that cannot be
// read degrades to zeroed figures; the failure is logged.
func (s *StatsService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	if s == nil {
		return DashboardStats{}, fmt.Errorf("StatsService is nil")
	}
	if cached, ok := s.cache.Get(dashboardCacheKey); ok {
		return cached, nil
	}
	generation := s.cache.Generation()

	stats, err := s.compute(ctx)
	if err != nil {
		s.loggerWith(ctx, "DashboardStats").ErrorContext(ctx, "statistics computation failed", "error", err, "error_kind", ErrorKind(err))
		return ComputeStats(nil, nil, nil), nil
	}
	// A write that lands while the collections are read bumps the generation;
	// the figures are then returned but not kept.
	s.cache.StoreIfCurrent(dashboardCacheKey, stats, generation)
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (DashboardStats, error) {
	var (
		bookings []Booking
		contacts []Contact
		images   []GalleryImage
		err      error
	)
	if s.bookings != nil {
		if bookings, err = s.bookings.Load(ctx); err != nil {
			return DashboardStats{}, fmt.Errorf("load bookings: %w", err)
		}
	}
	if s.contacts != nil {
		if contacts, err = s.contacts.Load(ctx); err != nil {
			return DashboardStats{}, fmt.Errorf("load contacts: %w", err)
		}
	}
	if s.images != nil {
		if images, err = s.images.Load(ctx); err != nil {
			return DashboardStats{}, fmt.Errorf("load images: %w", err)
		}
	}
	return ComputeStats(bookings, contacts, images), nil
}

// ComputeStats aggregates the collections. Revenue sums the price of
// confirmed and completed bookings in cents; prices that do not parse count
// as zero.
func ComputeStats(bookings []Booking, contacts []Contact, images []GalleryImage) DashboardStats {
	stats := DashboardStats{
		TotalBookings: len(bookings),
		TotalContacts: len(contacts),
		TotalImages:   len(images),
	}
	var revenueCents int64
	for _, booking := range bookings {
		switch booking.Status {
		case catalog.BookingPending:
			stats.PendingBookings++
		case catalog.BookingConfirmed, catalog.BookingCompleted:
			revenueCents += ParsePrice(booking.Price)
		}
	}
	for _, contact := range contacts {
		if contact.Status == catalog.ContactNew {
			stats.NewContacts++
		}
		if !contact.Read {
			stats.UnreadContacts++
		}
	}
	for _, image := range images {
		if image.Published {
			stats.PublishedImages++
		}
	}
	stats.Revenue = float64(revenueCents) / 100
	stats.RevenueLabel = FormatRevenue(revenueCents)
	return stats
}

var leadingAmount = regexp.MustCompile(`^([+-]?)([0-9.,]*[0-9])`)

var priceNoise = strings.NewReplacer(
	"€", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"\u2009", "",
	"\t", "",
)

var priceSeparators = strings.NewReplacer(".", "", ",", "")

// ParsePrice reads the amount of a free-form price and returns it in cents.
// Spaces and "." group thousands ("1 250€", "1.250,50 €"); the last "," or
// "." is the decimal separator unless it repeats or is a "." followed by
// exactly three digits. Fractions beyond cents are rounded half up. Anything
// without a leading number is zero.
func ParsePrice(raw string) int64 {
	match := leadingAmount.FindStringSubmatch(priceNoise.Replace(strings.TrimSpace(raw)))
	if match == nil {
		return 0
	}
	sign, body := match[1], match[2]

	whole, fraction := body, ""
	if i := strings.LastIndexAny(body, ".,"); i >= 0 {
		sep, tail := body[i:i+1], body[i+1:]
		grouping := strings.Count(body, sep) > 1 || (sep == "." && len(tail) == 3)
		if !grouping {
			whole, fraction = body[:i], tail
		}
	}
	whole = priceSeparators.Replace(whole)
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100-1 {
		return 0
	}
	cents := units*100 + int64(digitAt(fraction, 0)*10+digitAt(fraction, 1))
	if digitAt(fraction, 2) >= 5 {
		cents++
	}
	if sign == "-" {
		cents = -cents
	}
	return cents
}

func digitAt(digits string, i int) int {
	if i >= len(digits) {
		return 0
	}
	return int(digits[i] - '0')
}

// FormatRevenue renders an amount in cents the way the dashboard shows it,
// e.g. "150.00€".
func FormatRevenue(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d€", sign, cents/100, cents%100)
}
