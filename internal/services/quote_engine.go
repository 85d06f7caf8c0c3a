package services

import (
	"fmt"
	"math"
	"moving-quote-service/internal/domain"
	"time"
)

// CompanyTaxMultiplier is applied last when the customer requests an invoice.
const CompanyTaxMultiplier = 1.19

// Names of the price components, in calculation order.
const (
	ComponentBase              = "base"
	ComponentVolume            = "volume"
	ComponentDistance          = "distance"
	ComponentOriginFloors      = "origin_floors"
	ComponentDestinationFloors = "destination_floors"
	ComponentSaturday          = "saturday_surcharge"
	ComponentDisassembly       = "disassembly"
	ComponentAssembly          = "assembly"
	ComponentPackaging         = "packaging"
	ComponentSpecialItems      = "special_items"
	ComponentFlexibility       = "flexibility_discount"
	ComponentCompanyTax        = "company_tax"
)

// QuoteEngine composes pricing rules, items, distance and dates into a price.
// It is a pure function of its arguments.
type QuoteEngine struct{}

func NewQuoteEngine() *QuoteEngine { return &QuoteEngine{} }

// Calculate prices a move. The order of the steps is fixed; changing it changes prices.
func (e *QuoteEngine) Calculate(in domain.QuoteInputs, rules domain.PricingRules, distanceKm float64) (domain.QuoteResult, error) {
	if err := in.Validate(); err != nil {
		return domain.QuoteResult{}, fmt.Errorf("calculate quote: %w", err)
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return domain.QuoteResult{}, fmt.Errorf("calculate quote: %w: distance must be a non-negative number (got %v)", domain.ErrInputValidation, distanceKm)
	}

	var totalVolume, totalWeight float64
	for _, it := range in.Items {
		totalVolume += it.Volume * float64(it.Quantity)
		totalWeight += it.Weight * float64(it.Quantity)
	}

	var (
		price     float64
		breakdown []domain.PriceComponent
	)
	add := func(name string, amount float64) {
		price += amount
		breakdown = append(breakdown, domain.PriceComponent{Name: name, Amount: amount})
	}

	add(ComponentBase, rules.BasePrice)
	add(ComponentVolume, totalVolume*rules.PricePerCubicMeter)

	chargeableKm := math.Max(0, distanceKm-rules.FreeKilometers)
	add(ComponentDistance, chargeableKm*rules.PricePerKilometer)

	if !in.OriginProperty.HasElevator && in.OriginProperty.Floor > 0 {
		add(ComponentOriginFloors, float64(in.OriginProperty.Floor)*rules.FloorSurcharge)
	}
	if !in.DestinationProperty.HasElevator && in.DestinationProperty.Floor > 0 {
		add(ComponentDestinationFloors, float64(in.DestinationProperty.Floor)*rules.FloorSurcharge)
	}

	// Sunday and holiday percentages are stored but not priced.
	if in.Date.Weekday() == time.Saturday {
		add(ComponentSaturday, price*rules.TimeSurcharges.Saturday/100)
	}

	if in.Services.Disassembly {
		add(ComponentDisassembly, rules.AdditionalServices.Disassembly)
	}
	if in.Services.Assembly {
		add(ComponentAssembly, rules.AdditionalServices.Assembly)
	}

	var packaging float64
	specialItems := 0
	for _, it := range in.Items {
		if it.Packaging.Selected() {
			packaging += it.Packaging.PricePerUnitVolume * it.Volume * float64(it.Quantity)
		}
		if it.IsFragile || it.IsGlass {
			specialItems++
		}
	}
	if packaging > 0 {
		add(ComponentPackaging, packaging)
	}
	if specialItems > 0 {
		add(ComponentSpecialItems, float64(specialItems)*rules.SpecialPackaging.SurchargePerItem)
	}

	if in.IsFlexible {
		add(ComponentFlexibility, -price*rules.Discounts.Flexibility/100)
	}

	if in.IsCompany {
		taxed := price * CompanyTaxMultiplier
		breakdown = append(breakdown, domain.PriceComponent{Name: ComponentCompanyTax, Amount: taxed - price})
		price = taxed
	}

	return domain.QuoteResult{
		TotalVolume:             totalVolume,
		TotalWeight:             totalWeight,
		TotalDistanceKm:         distanceKm,
		RecommendedVehicleClass: domain.RecommendVehicle(totalVolume),
		EstimatedPrice:          int64(math.Round(price)),
		Breakdown:               breakdown,
		ContactServices:         in.Services.ContactServices(),
		RulesVersion:            rules.Version,
	}, nil
}
