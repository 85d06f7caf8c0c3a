package domain

import (
	"fmt"
	"strings"
)

// DefaultFreeKilometers applies to rule sets stored before freeKilometers existed.
const DefaultFreeKilometers = 50.0

type AdditionalServicePrices struct {
	Disassembly float64 `json:"disassembly"`
	Assembly    float64 `json:"assembly"`
	Packing     float64 `json:"packing"`
	Unpacking   float64 `json:"unpacking"`
}

type SpecialPackagingPrices struct {
	SurchargePerItem float64 `json:"surchargePerItem"`
}

// Percentages applied on top of the running price.
type TimeSurcharges struct {
	Saturday float64 `json:"saturday"`
	Sunday   float64 `json:"sunday"`
	Holiday  float64 `json:"holiday"`
}

// Percentages subtracted from the running price.
type Discounts struct {
	Flexibility    float64 `json:"flexibility"`
	AdvanceBooking float64 `json:"advanceBooking"`
	RepeatCustomer float64 `json:"repeatCustomer"`
}

// The active, validated pricing configuration. Read-only for the pricing engine.
type PricingRules struct {
	Version            int
	BasePrice          float64
	PricePerCubicMeter float64
	PricePerKilometer  float64
	FreeKilometers     float64
	FloorSurcharge     float64
	AdditionalServices AdditionalServicePrices
	SpecialPackaging   SpecialPackagingPrices
	TimeSurcharges     TimeSurcharges
	Discounts          Discounts
}

// PricingRulesDocument is the stored form of a rule set. Groups are pointers so that
// a record missing one of them is detected instead of being read as zeros.
type PricingRulesDocument struct {
	Version            int                      `json:"version"`
	BasePrice          float64                  `json:"basePrice"`
	PricePerCubicMeter float64                  `json:"pricePerCubicMeter"`
	PricePerKilometer  float64                  `json:"pricePerKilometer"`
	FreeKilometers     *float64                 `json:"freeKilometers,omitempty"`
	FloorSurcharge     float64                  `json:"floorSurcharge"`
	AdditionalServices *AdditionalServicePrices `json:"additionalServices,omitempty"`
	SpecialPackaging   *SpecialPackagingPrices  `json:"specialPackaging,omitempty"`
	TimeSurcharges     *TimeSurcharges          `json:"timeSurcharges,omitempty"`
	Discounts          *Discounts               `json:"discounts,omitempty"`
}

// Rules validates the document and returns the rule set used for pricing.
func (d PricingRulesDocument) Rules() (PricingRules, error) {
	var missing []string
	if d.AdditionalServices == nil {
		missing = append(missing, "additionalServices")
	}
	if d.SpecialPackaging == nil {
		missing = append(missing, "specialPackaging")
	}
	if d.TimeSurcharges == nil {
		missing = append(missing, "timeSurcharges")
	}
	if d.Discounts == nil {
		missing = append(missing, "discounts")
	}
	if len(missing) > 0 {
		return PricingRules{}, fmt.Errorf(
			"%w: pricing rules v%d missing %s",
			ErrConfiguration, d.Version, strings.Join(missing, ", "),
		)
	}

	freeKm := DefaultFreeKilometers
	if d.FreeKilometers != nil {
		freeKm = *d.FreeKilometers
	}

	rules := PricingRules{
		Version:            d.Version,
		BasePrice:          d.BasePrice,
		PricePerCubicMeter: d.PricePerCubicMeter,
		PricePerKilometer:  d.PricePerKilometer,
		FreeKilometers:     freeKm,
		FloorSurcharge:     d.FloorSurcharge,
		AdditionalServices: *d.AdditionalServices,
		SpecialPackaging:   *d.SpecialPackaging,
		TimeSurcharges:     *d.TimeSurcharges,
		Discounts:          *d.Discounts,
	}

	if err := rules.validate(); err != nil {
		return PricingRules{}, err
	}

	return rules, nil
}

func (r PricingRules) validate() error {
	amounts := map[string]float64{
		"basePrice":                      r.BasePrice,
		"pricePerCubicMeter":             r.PricePerCubicMeter,
		"pricePerKilometer":              r.PricePerKilometer,
		"freeKilometers":                 r.FreeKilometers,
		"floorSurcharge":                 r.FloorSurcharge,
		"additionalServices.disassembly": r.AdditionalServices.Disassembly,
		"additionalServices.assembly":    r.AdditionalServices.Assembly,
		"specialPackaging.surcharge":     r.SpecialPackaging.SurchargePerItem,
		"timeSurcharges.saturday":        r.TimeSurcharges.Saturday,
		"discounts.flexibility":          r.Discounts.Flexibility,
	}
	for name, v := range amounts {
		if v < 0 {
			return fmt.Errorf("%w: pricing rules v%d: %s must not be negative (got %v)", ErrConfiguration, r.Version, name, v)
		}
	}

	if r.Discounts.Flexibility > 100 {
		return fmt.Errorf("%w: pricing rules v%d: flexibility discount above 100%%", ErrConfiguration, r.Version)
	}

	return nil
}

// Document converts validated rules back into their stored form.
func (r PricingRules) Document() PricingRulesDocument {
	freeKm := r.FreeKilometers
	services := r.AdditionalServices
	packaging := r.SpecialPackaging
	surcharges := r.TimeSurcharges
	discounts := r.Discounts

	return PricingRulesDocument{
		Version:            r.Version,
		BasePrice:          r.BasePrice,
		PricePerCubicMeter: r.PricePerCubicMeter,
		PricePerKilometer:  r.PricePerKilometer,
		FreeKilometers:     &freeKm,
		FloorSurcharge:     r.FloorSurcharge,
		AdditionalServices: &services,
		SpecialPackaging:   &packaging,
		TimeSurcharges:     &surcharges,
		Discounts:          &discounts,
	}
}
