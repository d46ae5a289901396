package application

import "github.com/example/detailing-backoffice/internal/catalog"

// TransitionTable lists the statuses reachable from each status. A nil table
// leaves the state machine unconstrained: any status may follow any other.
type TransitionTable[S comparable] map[S][]S

// Allows reports whether a record may move from one status to another.
// Keeping the current status is always allowed.
func (t TransitionTable[S]) Allows(from, to S) bool {
	if t == nil || from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StrictBookingTransitions follows the booking workflow: requests are
// confirmed or refused, confirmed work is carried out, and cancelled or
// refused bookings can only be reopened as pending.
var StrictBookingTransitions = TransitionTable[catalog.BookingStatus]{
	catalog.BookingPending:    {catalog.BookingConfirmed, catalog.BookingRejected, catalog.BookingCancelled},
	catalog.BookingConfirmed:  {catalog.BookingInProgress, catalog.BookingCancelled, catalog.BookingPending},
	catalog.BookingInProgress: {catalog.BookingCompleted, catalog.BookingCancelled},
	catalog.BookingCancelled:  {catalog.BookingPending},
	catalog.BookingRejected:   {catalog.BookingPending},
}

// StrictContactTransitions lets messages progress and be archived or reopened.
var StrictContactTransitions = TransitionTable[catalog.ContactStatus]{
	catalog.ContactNew:        {catalog.ContactInProgress, catalog.ContactHandled, catalog.ContactArchived},
	catalog.ContactInProgress: {catalog.ContactHandled, catalog.ContactArchived, catalog.ContactNew},
	catalog.ContactHandled:    {catalog.ContactArchived, catalog.ContactInProgress},
	catalog.ContactArchived:   {catalog.ContactNew, catalog.ContactInProgress, catalog.ContactHandled},
}
