package ports

import (
	"context"
	"moving-quote-service/internal/domain"
	"time"
)

// Port: the administratively owned pricing and fleet configuration.
type RulesStore interface {
	// Return the single active pricing rule set as stored (unvalidated).
	ActivePricingRules(ctx context.Context) (domain.PricingRulesDocument, error)
	// Return the number of trucks in the fleet.
	FleetSize(ctx context.Context) (int, error)
}

// Port: booking-derived data needed to compute slot availability.
type ScheduleStore interface {
	// Return the configured slots in display order.
	CanonicalSlots(ctx context.Context) ([]domain.TimeSlot, error)
	// Return, per label in slots, the count of non-cancelled bookings overlapping it on date.
	Occupancy(ctx context.Context, date time.Time, slots []domain.TimeSlot) (map[string]int, error)
	// Return the labels declared unavailable on date.
	BlockedSlots(ctx context.Context, date time.Time) (map[string]struct{}, error)
}
