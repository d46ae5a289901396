// Package calendar provides civil-date helpers used to bucket bookings and
// to decide which days of the public booking calendar are open.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the stored representation of a civil date.
const Layout = "2006-01-02"

// ErrInvalidDate indicates the value is not a YYYY-MM-DD civil date.
var ErrInvalidDate = errors.New("calendar: invalid date")

// Date is a day-granularity calendar date without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse reads a YYYY-MM-DD civil date.
func Parse(value string) (Date, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(Layout, trimmed)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Of(t), nil
}

// Of returns the civil date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the civil date of the instant reported by now, evaluated in
// the location carried by that instant.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return Of(now())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// AddDays returns the date n days later, normalizing month and year overflow.
func (d Date) AddDays(n int) Date {
	return Of(d.midnight().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.midnight().After(other.midnight())
}

// Between reports whether from <= d <= to.
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Range selects bookings by their date relative to today.
type Range string

const (
	RangeAll      Range = "all"
	RangeToday    Range = "today"
	RangeTomorrow Range = "tomorrow"
	RangeWeek     Range = "week"
)

// Valid reports whether the range is known. The empty range means all.
func (r Range) Valid() bool {
	switch r {
	case "", RangeAll, RangeToday, RangeTomorrow, RangeWeek:
		return true
	default:
		return false
	}
}

// Contains reports whether date falls in the range evaluated against today.
// The week range spans today through today+7 inclusive.
func (r Range) Contains(date, today Date) bool {
	switch r {
	case "", RangeAll:
		return true
	case RangeToday:
		return date == today
	case RangeTomorrow:
		return date == today.AddDays(1)
	case RangeWeek:
		return date.Between(today, today.AddDays(7))
	default:
		return false
	}
}

// Openings describes which days accept public booking requests.
type Openings struct {
	Closed []time.Weekday
}

// DefaultOpenings closes the workshop on Sundays.
func DefaultOpenings() Openings {
	return Openings{Closed: []time.Weekday{time.Sunday}}
}

// Bookable reports whether a public request may target date given today.
// Past dates and closed weekdays are rejected.
func (o Openings) Bookable(date, today Date) bool {
	if date.Before(today) {
		return false
	}
	weekday := date.Weekday()
	for _, closed := range o.Closed {
		if weekday == closed {
			return false
		}
	}
	return true
}
