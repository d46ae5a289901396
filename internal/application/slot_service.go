package application

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/calendar"
	"github.com/example/detailing-backoffice/internal/catalog"
)

// SlotRegister is the persisted map of occupied slots per date.
type SlotRegister interface {
	Load(ctx context.Context) (map[string][]string, error)
	Update(ctx context.Context, mutate func(map[string][]string) (map[string][]string, error)) (map[string][]string, error)
}

// SlotPolicy selects where occupied slots come from.
type SlotPolicy string

const (
	// SlotPolicySeeded only consults the independently maintained register.
	SlotPolicySeeded SlotPolicy = "seeded"
	// SlotPolicyDerived also treats confirmed and in-progress bookings as occupying their slot.
	SlotPolicyDerived SlotPolicy = "derived"
)

// DefaultOccupiedSlots is the register content used when nothing is stored yet.
func DefaultOccupiedSlots() map[string][]string {
	return map[string][]string{
		"2024-01-15": {"09:00", "14:00"},
		"2024-01-16": {"10:30", "15:30"},
	}
}

// SlotService answers availability questions for the public calendar and
// lets the back office maintain the occupied-slot register.
type SlotService struct {
	register SlotRegister
	bookings RecordStore[Booking]
	policy   SlotPolicy
	openings calendar.Openings
	now      func() time.Time
	logger   *slog.Logger
}

// NewSlotService wires dependencies for slot lookups.
func NewSlotService(register SlotRegister, bookings RecordStore[Booking], policy SlotPolicy, now func() time.Time) *SlotService {
	return NewSlotServiceWithLogger(register, bookings, policy, now, nil)
}

// NewSlotServiceWithLogger wires dependencies for slot lookups with a logger.
func NewSlotServiceWithLogger(register SlotRegister, bookings RecordStore[Booking], policy SlotPolicy, now func() time.Time, logger *slog.Logger) *SlotService {
	if policy == "" {
		policy = SlotPolicySeeded
	}
	if now == nil {
		now = time.Now
	}
	return &SlotService{
		register: register,
		bookings: bookings,
		policy:   policy,
		openings: calendar.DefaultOpenings(),
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *SlotService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SlotService", operation, attrs...)
}

// IsSlotTaken reports whether slot on date is occupied.
func (s *SlotService) IsSlotTaken(ctx context.Context, date, slot string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("SlotService is nil")
	}
	taken, err := s.occupied(ctx, strings.TrimSpace(date))
	if err != nil {
		return false, err
	}
	return slices.Contains(taken, strings.TrimSpace(slot)), nil
}

// Availability lists every bookable slot of date with its occupation.
func (s *SlotService) Availability(ctx context.Context, date string) (SlotAvailability, error) {
	if s == nil {
		return SlotAvailability{}, fmt.Errorf("SlotService is nil")
	}

	day, vErr := parseDateField(date)
	if vErr.HasErrors() {
		return SlotAvailability{}, vErr
	}

	taken, err := s.occupied(ctx, day.String())
	if err != nil {
		return SlotAvailability{}, err
	}
	return s.availability(day, taken), nil
}

// SetOccupiedSlots replaces the occupied slots recorded for date. An empty
// list clears the date from the register.
func (s *SlotService) SetOccupiedSlots(ctx context.Context, date string, slots []string) (result SlotAvailability, err error) {
	if s == nil {
		err = fmt.Errorf("SlotService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetOccupiedSlots", "date", date, "slot_count", len(slots))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "occupied slot update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "occupied slots updated")
	}()

	day, vErr := parseDateField(date)
	cleaned := make([]string, 0, len(slots))
	for _, slot := range slots {
		slot = strings.TrimSpace(slot)
		if !catalog.ValidTimeSlot(slot) {
			vErr.add("creneaux", "creneaux must only contain bookable time slots")
			continue
		}
		if !slices.Contains(cleaned, slot) {
			cleaned = append(cleaned, slot)
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	slices.Sort(cleaned)

	if s.register == nil {
		err = fmt.Errorf("slot register not configured")
		return
	}

	key := day.String()
	_, err = s.register.Update(ctx, func(current map[string][]string) (map[string][]string, error) {
		next := maps.Clone(current)
		if next == nil {
			next = make(map[string][]string)
		}
		if len(cleaned) == 0 {
			delete(next, key)
		} else {
			next[key] = cleaned
		}
		return next, nil
	})
	if err != nil {
		return
	}

	var taken []string
	taken, err = s.occupied(ctx, key)
	if err != nil {
		return
	}
	result = s.availability(day, taken)
	return
}

func (s *SlotService) occupied(ctx context.Context, date string) ([]string, error) {
	var taken []string
	if s.register != nil {
		register, err := s.register.Load(ctx)
		if err != nil {
			return nil, err
		}
		taken = append(taken, register[date]...)
	}

	if s.policy == SlotPolicyDerived && s.bookings != nil {
		bookings, err := s.bookings.Load(ctx)
		if err != nil {
			return nil, err
		}
		for _, booking := range bookings {
			if booking.Date != date {
				continue
			}
			if booking.Status == catalog.BookingConfirmed || booking.Status == catalog.BookingInProgress {
				taken = append(taken, booking.Time)
			}
		}
	}
	return taken, nil
}

func (s *SlotService) availability(day calendar.Date, taken []string) SlotAvailability {
	slots := catalog.TimeSlots()
	states := make([]SlotState, 0, len(slots))
	for _, slot := range slots {
		states = append(states, SlotState{Time: slot, Taken: slices.Contains(taken, slot)})
	}
	return SlotAvailability{
		Date:     day.String(),
		Bookable: s.openings.Bookable(day, calendar.Today(s.now)),
		Slots:    states,
	}
}

func parseDateField(value string) (calendar.Date, *ValidationError) {
	vErr := &ValidationError{}
	value = strings.TrimSpace(value)
	if value == "" {
		vErr.add("date", "date is required")
		return calendar.Date{}, vErr
	}
	day, err := calendar.Parse(value)
	if err != nil {
		vErr.add("date", "date must be a YYYY-MM-DD date")
	}
	return day, vErr
}
