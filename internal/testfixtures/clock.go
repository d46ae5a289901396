package testfixtures

import (
	"sync"
	"time"

	"github.com/example/detailing-backoffice/internal/calendar"
)

// Clock is a manually driven business clock. It keeps the location of its
// start time so calendar days roll over the way they do in the shop.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the instant the clock points at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns Now for injection into services. A nil clock falls back to
// the wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Today is the civil date the clock points at in its own location.
func (c *Clock) Today() calendar.Date {
	return calendar.Of(c.Now())
}

// Set moves the clock to t, converted to the clock's location.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.In(c.now.Location())
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays moves the clock by n calendar days, keeping the wall-clock time.
func (c *Clock) AdvanceDays(n int) calendar.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
	return calendar.Of(c.now)
}

// SetSlot moves the clock to the given date and HH:MM slot.
func (c *Clock) SetSlot(date, slot string) error {
	day, err := calendar.Parse(date)
	if err != nil {
		return err
	}
	clock, err := time.Parse("15:04", slot)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(day.Year, day.Month, day.Day, clock.Hour(), clock.Minute(), 0, 0, c.now.Location())
	return nil
}
