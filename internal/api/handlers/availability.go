package handlers

import (
	"context"
	"moving-quote-service/internal/api/dto"
	"moving-quote-service/internal/domain"
	"net/http"
	"time"
)

type AvailabilityService interface {
	Availability(ctx context.Context, date time.Time) ([]domain.SlotAvailability, error)
}

type AvailabilityHandler struct {
	Service AvailabilityService
}

// Get lists every canonical slot of the requested date with its free trucks.
// An empty slot list is a normal answer.
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := dto.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	slots, err := h.Service.Availability(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, "availability", err)
		return
	}

	res := dto.AvailabilityResponse{
		Date:  date.Format(time.DateOnly),
		Slots: make([]dto.SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		res.Slots = append(res.Slots, dto.SlotResponse{
			Time:           s.Time,
			Recommended:    s.Recommended,
			Capacity:       s.Capacity,
			Booked:         s.Booked,
			AvailableSlots: s.AvailableSlots,
			IsBlocked:      s.IsBlocked,
			IsAvailable:    s.IsAvailable,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
