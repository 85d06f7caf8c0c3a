package services

import (
	"fmt"
	"moving-quote-service/internal/domain"
	"time"

	"go.uber.org/zap"
)

// SlotCalculator turns fleet size and occupancy into per-slot availability.
// It holds no state besides its logger.
type SlotCalculator struct {
	log *zap.Logger
}

func NewSlotCalculator(log *zap.Logger) *SlotCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotCalculator{log: log}
}

// Compute returns one entry per canonical slot, in the configured order.
//
// Booked counts are clamped to [0, capacity]; a count above capacity is an
// upstream overbooking and is logged, not rejected. Blocked slots report zero
// available trucks. An empty slot list yields an empty, non-nil result.
func (c *SlotCalculator) Compute(
	date time.Time,
	fleet domain.FleetConfig,
	slots []domain.TimeSlot,
	occupancy map[string]int,
	blocked map[string]struct{},
) ([]domain.SlotAvailability, error) {
	if !fleet.Valid() {
		return nil, fmt.Errorf("compute availability: %w: fleet must have at least one vehicle (got %d)", domain.ErrConfiguration, fleet.NumVehicles)
	}

	capacity := fleet.NumVehicles
	out := make([]domain.SlotAvailability, 0, len(slots))

	for _, s := range slots {
		booked := occupancy[s.Label]
		if booked > capacity {
			c.log.Warn("slot occupancy exceeds fleet capacity",
				zap.String("date", date.Format(time.DateOnly)),
				zap.String("slot", s.Label),
				zap.Int("booked", booked),
				zap.Int("capacity", capacity),
			)
			booked = capacity
		}
		if booked < 0 {
			booked = 0
		}

		_, isBlocked := blocked[s.Label]

		available := capacity - booked
		if isBlocked {
			available = 0
		}

		out = append(out, domain.SlotAvailability{
			Time:           s.Label,
			Recommended:    s.Recommended,
			Capacity:       capacity,
			Booked:         booked,
			AvailableSlots: available,
			IsBlocked:      isBlocked,
			IsAvailable:    !isBlocked && available > 0,
		})
	}

	return out, nil
}
