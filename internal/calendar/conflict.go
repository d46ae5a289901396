package calendar

// Hold is a booking occupying a (date, time) slot.
type Hold struct {
	BookingID string
	Date      string
	Time      string
	Active    bool
}

// ConflictType describes why two holds collide.
type ConflictType string

const (
	// ConflictTypeSlot indicates two active bookings share a date and time.
	ConflictTypeSlot ConflictType = "slot"
	// ConflictTypeOccupied indicates the slot is listed in the occupied-slot register.
	ConflictTypeOccupied ConflictType = "occupied"
)

// Conflict details an advisory collision that callers can surface to users.
type Conflict struct {
	WithBookingID string
	Type          ConflictType
	Date          string
	Time          string
}

// DetectConflicts reports the active holds sharing the candidate's slot.
// Inactive holds never conflict and the candidate never conflicts with itself.
func DetectConflicts(existing []Hold, candidate Hold) []Conflict {
	if !candidate.Active || candidate.Date == "" || candidate.Time == "" {
		return nil
	}

	var conflicts []Conflict
	for _, hold := range existing {
		if !hold.Active {
			continue
		}
		if hold.BookingID != "" && hold.BookingID == candidate.BookingID {
			continue
		}
		if hold.Date == candidate.Date && hold.Time == candidate.Time {
			conflicts = append(conflicts, Conflict{
				WithBookingID: hold.BookingID,
				Type:          ConflictTypeSlot,
				Date:          hold.Date,
				Time:          hold.Time,
			})
		}
	}
	return conflicts
}
