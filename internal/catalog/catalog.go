// Package catalog holds the enumerations shared by every producer and consumer
// of detailing records: services, gallery categories, opening slots, and the
// status domains of bookings and contact messages.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "en_attente"
	BookingConfirmed  BookingStatus = "confirmee"
	BookingInProgress BookingStatus = "en_cours"
	BookingCompleted  BookingStatus = "terminee"
	BookingCancelled  BookingStatus = "annulee"
	BookingRejected   BookingStatus = "refusee"
)

// BookingStatuses lists every booking status in display order.
var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingInProgress,
	BookingCompleted,
	BookingCancelled,
	BookingRejected,
}

// Valid reports whether the status belongs to the booking status domain.
func (s BookingStatus) Valid() bool {
	for _, candidate := range BookingStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Active reports whether a booking in this status still holds its slot.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled && s != BookingRejected
}

// Label returns the French label shown in the back office.
func (s BookingStatus) Label() string {
	switch s {
	case BookingPending:
		return "En attente"
	case BookingConfirmed:
		return "Confirmée"
	case BookingInProgress:
		return "En cours"
	case BookingCompleted:
		return "Terminée"
	case BookingCancelled:
		return "Annulée"
	case BookingRejected:
		return "Refusée"
	default:
		return string(s)
	}
}

// Location is where a booking takes place.
type Location string

const (
	LocationWorkshop Location = "atelier"
	LocationHome     Location = "domicile"
)

// Valid reports whether the location is known.
func (l Location) Valid() bool {
	return l == LocationWorkshop || l == LocationHome
}

// ContactStatus is the lifecycle state of a contact message.
type ContactStatus string

const (
	ContactNew        ContactStatus = "nouveau"
	ContactInProgress ContactStatus = "en_cours"
	ContactHandled    ContactStatus = "traite"
	ContactArchived   ContactStatus = "archive"
)

// ContactStatuses lists every contact status in display order.
var ContactStatuses = []ContactStatus{ContactNew, ContactInProgress, ContactHandled, ContactArchived}

// Valid reports whether the status belongs to the contact status domain.
func (s ContactStatus) Valid() bool {
	for _, candidate := range ContactStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Priority ranks a contact message.
type Priority string

const (
	PriorityLow    Priority = "basse"
	PriorityNormal Priority = "normale"
	PriorityHigh   Priority = "haute"
)

// Valid reports whether the priority is known.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// Category classifies a gallery image.
type Category string

const (
	CategoryBeforeAfter   Category = "before-after"
	CategoryCleaning      Category = "nettoyage"
	CategoryRenovation    Category = "renovation"
	CategoryProtection    Category = "protection"
	CategoryCustomization Category = "personnalisation"
	CategoryEquipment     Category = "equipment"
	CategoryWorkspace     Category = "workspace"
)

// Categories lists every gallery category in display order.
var Categories = []Category{
	CategoryBeforeAfter,
	CategoryCleaning,
	CategoryRenovation,
	CategoryProtection,
	CategoryCustomization,
	CategoryEquipment,
	CategoryWorkspace,
}

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Label returns the French label of the category.
func (c Category) Label() string {
	switch c {
	case CategoryBeforeAfter:
		return "Avant/Après"
	case CategoryCleaning:
		return "Nettoyage"
	case CategoryRenovation:
		return "Rénovation"
	case CategoryProtection:
		return "Protection"
	case CategoryCustomization:
		return "Personnalisation"
	case CategoryEquipment:
		return "Équipement"
	case CategoryWorkspace:
		return "Atelier"
	default:
		return string(c)
	}
}

// Service is one entry of the detailing offer.
type Service struct {
	ID       string
	Name     string
	Family   Category
	Price    string
	Duration time.Duration
}

// OnQuote reports whether the service is priced on quote only.
func (s Service) OnQuote() bool {
	return s.Price == "Sur devis"
}

var services = []Service{
	{ID: "express-nettoyage", Name: "Express Detailing", Family: CategoryCleaning, Price: "60€", Duration: 2 * time.Hour},
	{ID: "pro-nettoyage", Name: "Pro Detailing", Family: CategoryCleaning, Price: "110€", Duration: 4 * time.Hour},
	{ID: "ultimate-nettoyage", Name: "Ultimate Detailing", Family: CategoryCleaning, Price: "180€", Duration: 5 * time.Hour},
	{ID: "express-renovation", Name: "Express Rénovation", Family: CategoryRenovation, Price: "40€", Duration: time.Hour},
	{ID: "pro-renovation", Name: "Pro Rénovation", Family: CategoryRenovation, Price: "250€", Duration: 6 * time.Hour},
	{ID: "ultimate-renovation", Name: "Ultimate Rénovation", Family: CategoryRenovation, Price: "450€", Duration: 14 * time.Hour},
	{ID: "express-protection", Name: "Express Protection", Family: CategoryProtection, Price: "230€", Duration: 7 * time.Hour},
	{ID: "pro-protection", Name: "Pro Protection", Family: CategoryProtection, Price: "850€", Duration: 14 * time.Hour},
	{ID: "ultimate-protection", Name: "Ultimate Protection", Family: CategoryProtection, Price: "Sur devis", Duration: 35 * time.Hour},
	{ID: "film-solaire", Name: "Film Solaire", Family: CategoryCustomization, Price: "230€", Duration: 4 * time.Hour},
	{ID: "film-covering", Name: "Film Covering", Family: CategoryCustomization, Price: "Sur devis", Duration: 35 * time.Hour},
	{ID: "ppf-couleur", Name: "PPF Couleur", Family: CategoryCustomization, Price: "Sur devis", Duration: 35 * time.Hour},
}

// Services returns a copy of the service offer in display order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// LookupService resolves a service by identifier or display name, ignoring case
// and surrounding whitespace. Stored records use either form.
func LookupService(value string) (Service, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Service{}, false
	}
	for _, svc := range services {
		if strings.EqualFold(svc.ID, trimmed) || strings.EqualFold(svc.Name, trimmed) {
			return svc, true
		}
	}
	return Service{}, false
}

// ServiceName returns the display name for a stored service reference, falling
// back to the raw value when it is not part of the catalog.
func ServiceName(value string) string {
	if svc, ok := LookupService(value); ok {
		return svc.Name
	}
	return strings.TrimSpace(value)
}

const (
	openingMinute = 8*60 + 30
	closingMinute = 17*60 + 30
	slotStep      = 30
)

// TimeSlots returns the bookable half-hour slots from opening to closing time.
func TimeSlots() []string {
	slots := make([]string, 0, (closingMinute-openingMinute)/slotStep+1)
	for minute := openingMinute; minute <= closingMinute; minute += slotStep {
		slots = append(slots, formatClock(minute))
	}
	return slots
}

// ValidTimeSlot reports whether value is one of the bookable slots.
func ValidTimeSlot(value string) bool {
	for _, slot := range TimeSlots() {
		if slot == value {
			return true
		}
	}
	return false
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
