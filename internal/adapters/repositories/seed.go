package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"moving-quote-service/internal/domain"
	"os"
	"strings"
	"time"
)

type SlotSeed struct {
	Label       string `json:"label"`
	Recommended bool   `json:"recommended"`
}

type BookingSeed struct {
	Date          string  `json:"date"`
	StartLabel    string  `json:"start"`
	DurationHours float64 `json:"durationHours"`
	Status        string  `json:"status"`
}

type BlockedSeed struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// ConfigSeed is the JSON layout of the seed file.
type ConfigSeed struct {
	PricingRules domain.PricingRulesDocument `json:"pricingRules"`
	NumVehicles  int                         `json:"numVehicles"`
	TimeSlots    []SlotSeed                  `json:"timeSlots"`
	Bookings     []BookingSeed               `json:"bookings"`
	BlockedSlots []BlockedSeed               `json:"blockedSlots"`
}

// Populate the database with pricing rules, fleet, slots and sample bookings from a JSON file.
// The pricing rules are validated before anything is written.
func SeedFromJSON(ctx context.Context, store *SQLStore, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data ConfigSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if _, err := data.PricingRules.Rules(); err != nil {
		return fmt.Errorf("seed: pricing rules: %w", err)
	}

	fleet, err := domain.NewFleetConfig(data.NumVehicles)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	slots := make([]domain.TimeSlot, 0, len(data.TimeSlots))
	for i, s := range data.TimeSlots {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return fmt.Errorf("seed: time slot at index %d: label cannot be empty", i+1)
		}
		slots = append(slots, domain.TimeSlot{Label: label, Recommended: s.Recommended})
	}

	if err := store.SaveActivePricingRules(ctx, data.PricingRules); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := store.SetFleetSize(ctx, fleet); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := store.ReplaceTimeSlots(ctx, slots); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for i, b := range data.Bookings {
		date, err := time.Parse(time.DateOnly, b.Date)
		if err != nil {
			return fmt.Errorf("seed: booking at index %d: %w", i+1, err)
		}
		_, err = store.AddBooking(ctx, domain.Booking{
			Date:          date,
			StartLabel:    b.StartLabel,
			DurationHours: b.DurationHours,
			Status:        domain.BookingStatus(b.Status),
		})
		if err != nil {
			return fmt.Errorf("seed: booking at index %d: %w", i+1, err)
		}
	}

	for i, b := range data.BlockedSlots {
		date, err := time.Parse(time.DateOnly, b.Date)
		if err != nil {
			return fmt.Errorf("seed: blocked slot at index %d: %w", i+1, err)
		}
		if err := store.BlockSlot(ctx, date, b.Label); err != nil {
			return fmt.Errorf("seed: blocked slot at index %d: %w", i+1, err)
		}
	}

	return nil
}
