package services

import (
	"math"
	"moving-quote-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday   = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2026, 11, 8, 0, 0, 0, 0, time.UTC)
)

func testRules() domain.PricingRules {
	return domain.PricingRules{
		Version:            1,
		BasePrice:          50000,
		PricePerCubicMeter: 15000,
		PricePerKilometer:  800,
		FreeKilometers:     50,
		FloorSurcharge:     3000,
		AdditionalServices: domain.AdditionalServicePrices{Disassembly: 15000, Assembly: 12000, Packing: 9999, Unpacking: 9999},
		SpecialPackaging:   domain.SpecialPackagingPrices{SurchargePerItem: 5000},
		TimeSurcharges:     domain.TimeSurcharges{Saturday: 10, Sunday: 20, Holiday: 30},
		Discounts:          domain.Discounts{Flexibility: 10},
	}
}

func testInputs() domain.QuoteInputs {
	property := domain.PropertyDetails{PropertyType: domain.PropertyApartment}
	return domain.QuoteInputs{
		Date:                monday,
		TimeLabel:           "09:00",
		Origin:              domain.Address{Street: "Av. Providencia", Number: "1234", Commune: "Providencia"},
		Destination:         domain.Address{Street: "Av. Apoquindo", Number: "4500", Commune: "Las Condes"},
		OriginProperty:      property,
		DestinationProperty: property,
		Items:               []domain.MovableItem{{ID: "boxes", Volume: 3, Weight: 60, Quantity: 1}},
	}
}

func TestCalculateWithinFreeKilometers(t *testing.T) {
	res, err := NewQuoteEngine().Calculate(testInputs(), testRules(), 30)
	require.NoError(t, err)

	assert.Equal(t, int64(95000), res.EstimatedPrice)
	assert.Equal(t, 3.0, res.TotalVolume)
	assert.Equal(t, 60.0, res.TotalWeight)
	assert.Equal(t, 30.0, res.TotalDistanceKm)
	assert.Equal(t, domain.VehiclePickup, res.RecommendedVehicleClass)
	assert.Equal(t, 1, res.RulesVersion)
}

func TestCalculateChargesKilometersBeyondAllowance(t *testing.T) {
	res, err := NewQuoteEngine().Calculate(testInputs(), testRules(), 80)
	require.NoError(t, err)
	assert.Equal(t, int64(119000), res.EstimatedPrice)
}

func TestCalculateFlexibilityDiscount(t *testing.T) {
	in := testInputs()
	in.IsFlexible = true

	res, err := NewQuoteEngine().Calculate(in, testRules(), 80)
	require.NoError(t, err)
	assert.Equal(t, int64(107100), res.EstimatedPrice)
}

func TestCalculateCompanyTaxAppliedLast(t *testing.T) {
	in := testInputs()
	in.IsFlexible = true
	in.IsCompany = true

	res, err := NewQuoteEngine().Calculate(in, testRules(), 80)
	require.NoError(t, err)
	assert.Equal(t, int64(127449), res.EstimatedPrice)

	last := res.Breakdown[len(res.Breakdown)-1]
	assert.Equal(t, ComponentCompanyTax, last.Name)
}

func TestCalculateFloorSurchargeOnlyWithoutElevator(t *testing.T) {
	in := testInputs()
	in.OriginProperty.Floor = 3
	in.DestinationProperty.Floor = 5
	in.DestinationProperty.HasElevator = true

	res, err := NewQuoteEngine().Calculate(in, testRules(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(95000+9000), res.EstimatedPrice)
}

func TestCalculateWeekdaySurcharges(t *testing.T) {
	engine := NewQuoteEngine()

	cases := []struct {
		name string
		date time.Time
		want int64
	}{
		{"weekday", monday, 95000},
		{"saturday", saturday, 104500},
		{"sunday is not priced", sunday, 95000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := testInputs()
			in.Date = tc.date

			res, err := engine.Calculate(in, testRules(), 30)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.EstimatedPrice)
		})
	}
}

func TestCalculateSaturdayBeforeServices(t *testing.T) {
	in := testInputs()
	in.Date = saturday
	in.Services.Disassembly = true

	res, err := NewQuoteEngine().Calculate(in, testRules(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(95000*1.1+15000), res.EstimatedPrice)
}

func TestCalculateServices(t *testing.T) {
	in := testInputs()
	in.Services = domain.SelectedServices{Disassembly: true, Assembly: true, Packing: true, Unpacking: true}

	res, err := NewQuoteEngine().Calculate(in, testRules(), 30)
	require.NoError(t, err)

	assert.Equal(t, int64(95000+15000+12000), res.EstimatedPrice)
	assert.Equal(t, []string{"packing", "unpacking"}, res.ContactServices)
}

func TestCalculatePackagingAndSpecialItems(t *testing.T) {
	in := testInputs()
	in.Items = []domain.MovableItem{
		{
			ID: "glasses", Volume: 2, Weight: 5, Quantity: 3,
			IsFragile: true, IsGlass: true,
			Packaging: &domain.Packaging{Type: "bubble", PricePerUnitVolume: 1000},
		},
		{ID: "table", Volume: 1, Weight: 30, Quantity: 1, Packaging: &domain.Packaging{Type: domain.PackagingNone, PricePerUnitVolume: 5000}},
	}

	res, err := NewQuoteEngine().Calculate(in, testRules(), 30)
	require.NoError(t, err)

	// volume 7 m3, packaging 2*3*1000, one special entry
	assert.Equal(t, 7.0, res.TotalVolume)
	assert.Equal(t, int64(50000+7*15000+6000+5000), res.EstimatedPrice)
	assert.Equal(t, domain.VehicleLargePickup, res.RecommendedVehicleClass)
}

func TestCalculateBreakdownAddsUp(t *testing.T) {
	in := testInputs()
	in.Date = saturday
	in.IsFlexible = true
	in.IsCompany = true
	in.OriginProperty.Floor = 2
	in.Services.Assembly = true

	res, err := NewQuoteEngine().Calculate(in, testRules(), 120)
	require.NoError(t, err)

	var sum float64
	names := make([]string, 0, len(res.Breakdown))
	for _, c := range res.Breakdown {
		sum += c.Amount
		names = append(names, c.Name)
	}
	assert.Equal(t, res.EstimatedPrice, int64(math.Round(sum)))
	assert.Equal(t, []string{
		ComponentBase, ComponentVolume, ComponentDistance, ComponentOriginFloors,
		ComponentSaturday, ComponentAssembly, ComponentFlexibility, ComponentCompanyTax,
	}, names)
}

func TestCalculateIsDeterministic(t *testing.T) {
	in := testInputs()
	in.IsFlexible = true
	in.Date = saturday

	engine := NewQuoteEngine()
	first, err := engine.Calculate(in, testRules(), 73.4)
	require.NoError(t, err)
	second, err := engine.Calculate(in, testRules(), 73.4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateAllowsEmptyItemList(t *testing.T) {
	in := testInputs()
	in.Items = nil

	res, err := NewQuoteEngine().Calculate(in, testRules(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), res.EstimatedPrice)
	assert.Equal(t, domain.VehiclePickup, res.RecommendedVehicleClass)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	engine := NewQuoteEngine()

	for _, km := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := engine.Calculate(testInputs(), testRules(), km)
		assert.ErrorIs(t, err, domain.ErrInputValidation, "distance %v", km)
	}

	in := testInputs()
	in.Items[0].Quantity = 0
	_, err := engine.Calculate(in, testRules(), 30)
	assert.ErrorIs(t, err, domain.ErrInputValidation)
}
