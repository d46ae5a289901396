package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.Today().String(); got != "2024-01-10" {
		t.Fatalf("expected 2024-01-10, got %s", got)
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := ReferenceTime()
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(time.Date(2024, time.January, 10, 21, 30, 0, 0, time.UTC))
	if got := clock.Today().String(); got != "2024-01-11" {
		t.Fatalf("expected the Réunion date to roll over to 2024-01-11, got %s", got)
	}

	if day := clock.AdvanceDays(3); day.String() != "2024-01-14" {
		t.Fatalf("expected 2024-01-14, got %s", day)
	}
}

func TestClockSetSlot(t *testing.T) {
	clock := NewClock(time.Time{})
	if err := clock.SetSlot("2024-01-15", "14:30"); err != nil {
		t.Fatalf("SetSlot returned error: %v", err)
	}
	got := clock.Now()
	if got.Hour() != 14 || got.Minute() != 30 || clock.Today().String() != "2024-01-15" {
		t.Fatalf("unexpected instant %v", got)
	}
	if got.Location() != ReferenceTime().Location() {
		t.Fatalf("expected the reference location, got %v", got.Location())
	}

	if err := clock.SetSlot("15/01/2024", "14:30"); err == nil {
		t.Fatalf("expected an error for a malformed date")
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatalf("expected a wall clock fallback")
	}
}
