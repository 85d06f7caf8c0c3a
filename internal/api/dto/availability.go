package dto

type SlotResponse struct {
	Time           string `json:"time"`
	Recommended    bool   `json:"recommended"`
	Capacity       int    `json:"capacity"`
	Booked         int    `json:"booked"`
	AvailableSlots int    `json:"availableSlots"`
	IsBlocked      bool   `json:"isBlocked"`
	IsAvailable    bool   `json:"isAvailable"`
}

type AvailabilityResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}
