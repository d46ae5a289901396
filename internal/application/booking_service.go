package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/calendar"
	"github.com/example/detailing-backoffice/internal/catalog"
)

// SlotChecker reports whether a slot is listed as occupied.
type SlotChecker interface {
	IsSlotTaken(ctx context.Context, date, slot string) (bool, error)
}

// BookingService owns the booking collection: creation from the public form
// and the back office, status changes, edits, deletion and filtering.
type BookingService struct {
	bookings    RecordStore[Booking]
	slots       SlotChecker
	transitions TransitionTable[catalog.BookingStatus]
	openings    calendar.Openings
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings RecordStore[Booking], slots SlotChecker, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, slots, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies for booking operations with a logger.
func NewBookingServiceWithLogger(bookings RecordStore[Booking], slots SlotChecker, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		slots:       slots,
		openings:    calendar.DefaultOpenings(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// UseTransitions restricts status changes to table. A nil table removes the restriction.
func (s *BookingService) UseTransitions(table TransitionTable[catalog.BookingStatus]) {
	if s != nil {
		s.transitions = table
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// RequestBooking records a booking submitted from the public form. The
// booking is always pending and held at the workshop.
func (s *BookingService) RequestBooking(ctx context.Context, input BookingInput) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	normalized := normalizeBookingInput(input)
	logger := s.loggerWith(ctx, "RequestBooking", "date", normalized.Date, "time", normalized.Time)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking request failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.Booking.ID).InfoContext(ctx, "booking requested")
	}()

	vErr := validateStruct(normalized)
	if !vErr.HasErrors() {
		date, _ := calendar.Parse(normalized.Date)
		if !s.openings.Bookable(date, calendar.Today(s.now)) {
			vErr.add("date", "date is not open for booking")
		}
	}
	if !vErr.HasErrors() && s.slots != nil {
		var taken bool
		taken, err = s.slots.IsSlotTaken(ctx, normalized.Date, normalized.Time)
		if err != nil {
			return
		}
		if taken {
			vErr.add("time", "time slot is not available")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	booking := s.newBooking(normalized, catalog.BookingPending)
	booking.Location = catalog.LocationWorkshop

	result, err = s.insert(ctx, booking)
	return
}

// CreateBooking records a booking entered in the back office. It is confirmed
// immediately and slot collisions are reported as warnings.
func (s *BookingService) CreateBooking(ctx context.Context, input BookingInput) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	normalized := normalizeBookingInput(input)
	logger := s.loggerWith(ctx, "CreateBooking", "date", normalized.Date, "time", normalized.Time)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.Booking.ID, "warning_count", len(result.Warnings)).InfoContext(ctx, "booking created")
	}()

	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	booking := s.newBooking(normalized, catalog.BookingConfirmed)
	booking.Location = normalized.Location
	booking.Price = normalized.Price
	booking.Notes = normalized.Notes

	result, err = s.insert(ctx, booking)
	return
}

// SetBookingStatus overwrites the status of a booking.
func (s *BookingService) SetBookingStatus(ctx context.Context, id string, status catalog.BookingStatus) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetBookingStatus", "booking_id", id, "status", status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking status change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking status changed")
	}()

	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("statut", "statut is invalid")
		err = vErr
		return
	}

	booking, err = updateRecord(ctx, s.bookings, id, bookingID, func(_ []Booking, current *Booking) error {
		if !s.transitions.Allows(current.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, current.Status, status)
		}
		current.Status = status
		return nil
	})
	return
}

// UpdateBooking replaces the editable fields of a booking. The id and
// creation time are preserved.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	normalized := normalizeBookingInput(params.Input)
	logger := s.loggerWith(ctx, "UpdateBooking", "booking_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("warning_count", len(result.Warnings)).InfoContext(ctx, "booking updated")
	}()

	vErr := validateStruct(normalized)
	if params.Status != "" && !params.Status.Valid() {
		vErr.add("statut", "statut is invalid")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var warnings []SlotWarning
	result.Booking, err = updateRecord(ctx, s.bookings, params.ID, bookingID, func(all []Booking, current *Booking) error {
		status := current.Status
		if params.Status != "" {
			if !s.transitions.Allows(current.Status, params.Status) {
				return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, current.Status, params.Status)
			}
			status = params.Status
		}

		current.Date = normalized.Date
		current.Time = normalized.Time
		current.Service = canonicalService(normalized.Service)
		current.Client = normalized.Client
		current.Location = normalized.Location
		current.Price = normalized.Price
		current.Notes = normalized.Notes
		current.Status = status

		warnings = slotWarnings(all, *current)
		return nil
	})
	if err != nil {
		return
	}

	result.Warnings, err = s.withOccupiedWarning(ctx, result.Booking, warnings)
	return
}

// DeleteBooking removes a booking once the deletion has been confirmed.
func (s *BookingService) DeleteBooking(ctx context.Context, params DeleteParams) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "booking_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	return deleteRecord(ctx, s.bookings, params, bookingID)
}

// GetBooking returns a single booking.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	return findRecord(ctx, s.bookings, id, bookingID)
}

// ListBookings returns the bookings matching filter, newest first.
func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}

	vErr := &ValidationError{}
	if !isAll(filter.Status) && !catalog.BookingStatus(strings.TrimSpace(filter.Status)).Valid() {
		vErr.add("statut", "statut is invalid")
	}
	if !calendar.Range(strings.TrimSpace(filter.DateRange)).Valid() {
		vErr.add("periode", "periode is invalid")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	bookings, err := s.bookings.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBookings(bookings, filter, calendar.Today(s.now)), nil
}

// BookingSummary counts bookings per headline status.
func (s *BookingService) BookingSummary(ctx context.Context) (BookingSummary, error) {
	if s == nil {
		return BookingSummary{}, fmt.Errorf("BookingService is nil")
	}

	bookings, err := s.bookings.Load(ctx)
	if err != nil {
		return BookingSummary{}, err
	}

	today := calendar.Today(s.now).String()
	summary := BookingSummary{Total: len(bookings)}
	for _, booking := range bookings {
		switch booking.Status {
		case catalog.BookingPending:
			summary.Pending++
		case catalog.BookingConfirmed:
			summary.Confirmed++
		case catalog.BookingInProgress:
			summary.InProgress++
		}
		if booking.Date == today {
			summary.Today++
		}
	}
	return summary, nil
}

// FilterBookings applies the search text, status and date range of filter.
// All criteria must match. The search is case-insensitive over the client
// names, service and vehicle; the phone number is matched as typed.
func FilterBookings(bookings []Booking, filter BookingFilter, today calendar.Date) []Booking {
	search := strings.TrimSpace(filter.Search)
	status := strings.TrimSpace(filter.Status)
	dateRange := calendar.Range(strings.TrimSpace(filter.DateRange))

	out := make([]Booking, 0, len(bookings))
	for _, booking := range bookings {
		if search != "" && !bookingMatches(booking, search) {
			continue
		}
		if !isAll(status) && string(booking.Status) != status {
			continue
		}
		if dateRange != "" && dateRange != calendar.RangeAll {
			date, err := calendar.Parse(booking.Date)
			if err != nil || !dateRange.Contains(date, today) {
				continue
			}
		}
		out = append(out, booking)
	}
	return out
}

func bookingMatches(booking Booking, search string) bool {
	if strings.Contains(booking.Client.Phone, search) {
		return true
	}
	return containsFold(search,
		booking.Client.LastName,
		booking.Client.FirstName,
		booking.Service,
		catalog.ServiceName(booking.Service),
		booking.Client.Vehicle,
	)
}

func (s *BookingService) newBooking(input BookingInput, status catalog.BookingStatus) Booking {
	return Booking{
		ID:        s.idGenerator(),
		Date:      input.Date,
		Time:      input.Time,
		Service:   canonicalService(input.Service),
		Client:    input.Client,
		Status:    status,
		Location:  catalog.LocationWorkshop,
		CreatedAt: s.now(),
	}
}

func (s *BookingService) insert(ctx context.Context, booking Booking) (BookingResult, error) {
	var warnings []SlotWarning
	_, err := s.bookings.Update(ctx, func(current []Booking) ([]Booking, error) {
		if indexOf(current, booking.ID, bookingID) >= 0 {
			return nil, fmt.Errorf("booking id %q already exists", booking.ID)
		}
		warnings = slotWarnings(current, booking)
		return prepend(current, booking), nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	warnings, err = s.withOccupiedWarning(ctx, booking, warnings)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: booking, Warnings: warnings}, nil
}

func (s *BookingService) withOccupiedWarning(ctx context.Context, booking Booking, warnings []SlotWarning) ([]SlotWarning, error) {
	if s.slots == nil || !booking.Status.Active() {
		return warnings, nil
	}
	taken, err := s.slots.IsSlotTaken(ctx, booking.Date, booking.Time)
	if err != nil {
		return nil, err
	}
	if taken {
		warnings = append(warnings, SlotWarning{
			Type: string(calendar.ConflictTypeOccupied),
			Date: booking.Date,
			Time: booking.Time,
		})
	}
	return warnings, nil
}

func slotWarnings(existing []Booking, candidate Booking) []SlotWarning {
	holds := make([]calendar.Hold, 0, len(existing))
	for _, booking := range existing {
		holds = append(holds, bookingHold(booking))
	}

	conflicts := calendar.DetectConflicts(holds, bookingHold(candidate))
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]SlotWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, SlotWarning{
			BookingID: conflict.WithBookingID,
			Type:      string(conflict.Type),
			Date:      conflict.Date,
			Time:      conflict.Time,
		})
	}
	return warnings
}

func bookingHold(booking Booking) calendar.Hold {
	return calendar.Hold{
		BookingID: booking.ID,
		Date:      booking.Date,
		Time:      booking.Time,
		Active:    booking.Status.Active(),
	}
}

func bookingID(booking Booking) string {
	return booking.ID
}

// canonicalService stores catalog services by identifier.
func canonicalService(value string) string {
	if svc, ok := catalog.LookupService(value); ok {
		return svc.ID
	}
	return strings.TrimSpace(value)
}

func normalizeBookingInput(input BookingInput) BookingInput {
	out := BookingInput{
		Date:     strings.TrimSpace(input.Date),
		Time:     strings.TrimSpace(input.Time),
		Service:  strings.TrimSpace(input.Service),
		Location: catalog.Location(strings.TrimSpace(string(input.Location))),
		Price:    strings.TrimSpace(input.Price),
		Notes:    strings.TrimSpace(input.Notes),
		Client: Client{
			LastName:  strings.TrimSpace(input.Client.LastName),
			FirstName: strings.TrimSpace(input.Client.FirstName),
			Phone:     strings.TrimSpace(input.Client.Phone),
			Email:     strings.TrimSpace(input.Client.Email),
			Vehicle:   strings.TrimSpace(input.Client.Vehicle),
			Comments:  strings.TrimSpace(input.Client.Comments),
		},
	}
	if out.Location == "" {
		out.Location = catalog.LocationWorkshop
	}
	return out
}
