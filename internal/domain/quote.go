package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyOffice    PropertyType = "office"
	PropertyWarehouse PropertyType = "warehouse"
	PropertyOther     PropertyType = "other"
)

// Vehicle classes recommended from total volume.
const (
	VehiclePickup      = "Pickup"
	VehicleLargePickup = "Large Pickup"
	VehicleMediumVan   = "Medium Van"
	VehicleLargeVan    = "Large Van"
)

// PackagingNone means no protective packaging was selected.
const PackagingNone = "none"

type Packaging struct {
	Type               string  `json:"type"`
	PricePerUnitVolume float64 `json:"pricePerUnitVolume" validate:"gte=0"`
}

// Selected reports whether the packaging adds a surcharge.
func (p *Packaging) Selected() bool {
	return p != nil && p.Type != "" && p.Type != PackagingNone
}

type MovableItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Volume    float64    `json:"volume" validate:"gt=0"`
	Weight    float64    `json:"weight" validate:"gt=0"`
	Quantity  int        `json:"quantity" validate:"gte=1"`
	IsFragile bool       `json:"isFragile"`
	IsHeavy   bool       `json:"isHeavy"`
	IsGlass   bool       `json:"isGlass"`
	Packaging *Packaging `json:"packaging,omitempty"`
}

type PropertyDetails struct {
	PropertyType          PropertyType `json:"propertyType" validate:"oneof=house apartment office warehouse other"`
	Floor                 int          `json:"floor" validate:"gte=0"`
	HasElevator           bool         `json:"hasElevator"`
	ParkingDistanceMeters float64      `json:"parkingDistanceMeters" validate:"gte=0"`
}

type SelectedServices struct {
	Disassembly bool `json:"disassembly"`
	Assembly    bool `json:"assembly"`
	Packing     bool `json:"packing"`
	Unpacking   bool `json:"unpacking"`
}

// Contact-only services requested by the customer. They are never priced automatically.
func (s SelectedServices) ContactServices() []string {
	out := []string{}
	if s.Packing {
		out = append(out, "packing")
	}
	if s.Unpacking {
		out = append(out, "unpacking")
	}
	return out
}

// Customer data carried with a quote; not priced.
type PersonalInfo struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type QuoteInputs struct {
	Personal            PersonalInfo
	Date                time.Time
	TimeLabel           string
	IsFlexible          bool
	Origin              Address
	Destination         Address
	OriginProperty      PropertyDetails
	DestinationProperty PropertyDetails
	Items               []MovableItem `validate:"dive"`
	Services            SelectedServices
	IsCompany           bool
}

// Validate rejects inputs that must never reach the pricing math.
func (q QuoteInputs) Validate() error {
	if q.Date.IsZero() {
		return fmt.Errorf("%w: service date is required", ErrInputValidation)
	}
	if q.TimeLabel != "" {
		if _, err := ParseSlotLabel(q.TimeLabel); err != nil {
			return err
		}
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s%s", fe.Namespace(), fe.Tag(), paramSuffix(fe.Param())))
			}
			return fmt.Errorf("%w: %s", ErrInputValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInputValidation, err)
	}

	return nil
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// One additive step of the price, in calculation order.
type PriceComponent struct {
	Name   string
	Amount float64
}

type QuoteResult struct {
	TotalVolume             float64
	TotalWeight             float64
	TotalDistanceKm         float64
	RecommendedVehicleClass string
	EstimatedPrice          int64
	Breakdown               []PriceComponent
	ContactServices         []string
	DistanceFallback        bool
	RulesVersion            int
}

// RecommendVehicle picks a vehicle class from total volume in cubic meters.
func RecommendVehicle(totalVolume float64) string {
	switch {
	case totalVolume > 20:
		return VehicleLargeVan
	case totalVolume > 10:
		return VehicleMediumVan
	case totalVolume > 5:
		return VehicleLargePickup
	default:
		return VehiclePickup
	}
}
