package testfixtures

import (
	"context"
	"testing"

	"github.com/example/detailing-backoffice/internal/application"
	"github.com/example/detailing-backoffice/internal/catalog"
)

func TestServiceFactoryNewMemoryServices(t *testing.T) {
	factory := NewServiceFactory()
	services := factory.NewMemoryServices()
	ctx := context.Background()

	result, err := services.Bookings.RequestBooking(ctx, BookingInput("2024-01-15", "10:00"))
	if err != nil {
		t.Fatalf("RequestBooking returned error: %v", err)
	}
	if result.Booking.ID != "booking-1" {
		t.Fatalf("expected generated ID booking-1, got %q", result.Booking.ID)
	}
	if !result.Booking.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), result.Booking.CreatedAt)
	}

	if _, err := services.Login(ctx); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
}

func TestSQLiteHarnessServices(t *testing.T) {
	harness := NewSQLiteHarness(t)
	services := NewServiceFactory().NewServices(harness.Store)
	ctx := context.Background()

	if err := services.BookingRecords.Save(ctx, []application.Booking{NewBooking(WithBookingStatus(catalog.BookingConfirmed), WithBookingPrice("110€"))}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	stats, err := services.Stats.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats returned error: %v", err)
	}
	if stats.TotalBookings != 1 || stats.RevenueLabel != "110.00€" || stats.PublishedImages != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
