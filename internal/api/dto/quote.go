package dto

import (
	"fmt"
	"moving-quote-service/internal/domain"
	"strings"
	"time"
)

type QuoteRequest struct {
	PersonalInfo        domain.PersonalInfo     `json:"personalInfo"`
	Date                string                  `json:"date"`
	Time                string                  `json:"time"`
	IsFlexible          bool                    `json:"isFlexible"`
	Origin              domain.Address          `json:"origin"`
	Destination         domain.Address          `json:"destination"`
	OriginProperty      domain.PropertyDetails  `json:"originProperty"`
	DestinationProperty domain.PropertyDetails  `json:"destinationProperty"`
	Items               []domain.MovableItem    `json:"items"`
	AdditionalServices  domain.SelectedServices `json:"additionalServices"`
	IsCompany           bool                    `json:"isCompany"`
}

// ToDomain converts the request; a malformed date is an input validation error.
func (r QuoteRequest) ToDomain() (domain.QuoteInputs, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.QuoteInputs{}, err
	}

	return domain.QuoteInputs{
		Personal:            r.PersonalInfo,
		Date:                date,
		TimeLabel:           strings.TrimSpace(r.Time),
		IsFlexible:          r.IsFlexible,
		Origin:              r.Origin,
		Destination:         r.Destination,
		OriginProperty:      r.OriginProperty,
		DestinationProperty: r.DestinationProperty,
		Items:               r.Items,
		Services:            r.AdditionalServices,
		IsCompany:           r.IsCompany,
	}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInputValidation, s)
	}
	return d, nil
}

type PriceComponentResponse struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type QuoteResponse struct {
	TotalVolume             float64                  `json:"totalVolume"`
	TotalWeight             float64                  `json:"totalWeight"`
	TotalDistanceKm         float64                  `json:"totalDistanceKm"`
	RecommendedVehicleClass string                   `json:"recommendedVehicleClass"`
	EstimatedPrice          int64                    `json:"estimatedPrice"`
	Breakdown               []PriceComponentResponse `json:"breakdown"`
	ContactServices         []string                 `json:"contactServices"`
	DistanceFallback        bool                     `json:"distanceFallback"`
	RulesVersion            int                      `json:"rulesVersion"`
}

func NewQuoteResponse(res domain.QuoteResult) QuoteResponse {
	out := QuoteResponse{
		TotalVolume:             res.TotalVolume,
		TotalWeight:             res.TotalWeight,
		TotalDistanceKm:         res.TotalDistanceKm,
		RecommendedVehicleClass: res.RecommendedVehicleClass,
		EstimatedPrice:          res.EstimatedPrice,
		Breakdown:               make([]PriceComponentResponse, 0, len(res.Breakdown)),
		ContactServices:         res.ContactServices,
		DistanceFallback:        res.DistanceFallback,
		RulesVersion:            res.RulesVersion,
	}
	for _, c := range res.Breakdown {
		out.Breakdown = append(out.Breakdown, PriceComponentResponse{Name: c.Name, Amount: c.Amount})
	}
	if out.ContactServices == nil {
		out.ContactServices = []string{}
	}
	return out
}
