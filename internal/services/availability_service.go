package services

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
	"moving-quote-service/internal/ports"
	"time"
)

// FleetSource returns the current fleet configuration.
type FleetSource interface {
	Fleet(ctx context.Context) (domain.FleetConfig, error)
}

// AvailabilityService gathers fleet and booking data for a date and computes slot availability.
type AvailabilityService struct {
	Fleet      FleetSource
	Schedule   ports.ScheduleStore
	Calculator *SlotCalculator
}

func NewAvailabilityService(fleet FleetSource, schedule ports.ScheduleStore, calc *SlotCalculator) *AvailabilityService {
	return &AvailabilityService{Fleet: fleet, Schedule: schedule, Calculator: calc}
}

func (s *AvailabilityService) Availability(ctx context.Context, date time.Time) (_ []domain.SlotAvailability, err error) {
	defer obs.Time(ctx, "availability.Availability")(&err)

	if date.IsZero() {
		return nil, fmt.Errorf("availability: %w: date is required", domain.ErrInputValidation)
	}

	fleet, err := s.Fleet.Fleet(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	slots, err := s.Schedule.CanonicalSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability: canonical slots: %w", err)
	}
	if len(slots) == 0 {
		return []domain.SlotAvailability{}, nil
	}

	occupancy, err := s.Schedule.Occupancy(ctx, date, slots)
	if err != nil {
		return nil, fmt.Errorf("availability: occupancy for %s: %w", date.Format(time.DateOnly), err)
	}

	blocked, err := s.Schedule.BlockedSlots(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("availability: blocked slots for %s: %w", date.Format(time.DateOnly), err)
	}

	return s.Calculator.Compute(date, fleet, slots, occupancy, blocked)
}
