package domain

import (
	"fmt"
	"time"
)

// SlotLength is the span of one canonical slot used to match booking intervals.
const SlotLength = time.Hour

// Canonical time-of-day slot, e.g. "08:00".
type TimeSlot struct {
	Label       string
	Recommended bool
}

// Availability of one slot on one date.
type SlotAvailability struct {
	Time           string
	Recommended    bool
	Capacity       int
	Booked         int
	AvailableSlots int
	IsBlocked      bool
	IsAvailable    bool
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is the minimal view of a reservation needed to derive slot occupancy.
type Booking struct {
	ID            int64
	Date          time.Time
	StartLabel    string
	DurationHours float64
	Status        BookingStatus
}

// ParseSlotLabel parses an "HH:MM" label into an offset from midnight.
func ParseSlotLabel(label string) (time.Duration, error) {
	t, err := time.Parse("15:04", label)
	if err != nil {
		return 0, fmt.Errorf("%w: slot label %q: expected HH:MM", ErrInputValidation, label)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Overlaps reports whether the booking's interval intersects the slot starting at slotStart.
// Bookings shorter than a slot occupy one full slot.
func (b Booking) Overlaps(slotStart time.Duration) (bool, error) {
	start, err := ParseSlotLabel(b.StartLabel)
	if err != nil {
		return false, err
	}

	length := time.Duration(b.DurationHours * float64(time.Hour))
	if length < SlotLength {
		length = SlotLength
	}

	return start < slotStart+SlotLength && slotStart < start+length, nil
}

// CountOccupancy derives, per slot label, how many non-cancelled bookings overlap it.
func CountOccupancy(slots []TimeSlot, bookings []Booking) (map[string]int, error) {
	out := make(map[string]int, len(slots))
	for _, s := range slots {
		slotStart, err := ParseSlotLabel(s.Label)
		if err != nil {
			return nil, fmt.Errorf("count occupancy: %w", err)
		}

		for _, b := range bookings {
			if b.Status == BookingCancelled {
				continue
			}
			ok, err := b.Overlaps(slotStart)
			if err != nil {
				return nil, fmt.Errorf("count occupancy: booking %d: %w", b.ID, err)
			}
			if ok {
				out[s.Label]++
			}
		}
	}
	return out, nil
}
