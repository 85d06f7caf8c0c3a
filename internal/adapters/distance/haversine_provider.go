package distance

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
)

// DefaultAverageSpeedKmh is used to estimate durations for straight-line distances.
const DefaultAverageSpeedKmh = 40.0

// HaversineProvider implements DistanceProvider with great-circle distances.
// It never calls the network and never fails.
type HaversineProvider struct {
	SpeedKmh float64
}

func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{SpeedKmh: DefaultAverageSpeedKmh}
}

func (p *HaversineProvider) Distance(_ context.Context, origin, destination domain.Coordinates) (domain.DistanceResult, error) {
	km := domain.HaversineKm(origin.Lat, origin.Lng, destination.Lat, destination.Lng)

	speed := p.SpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}

	return domain.DistanceResult{
		Kilometers:      km,
		DurationMinutes: km / speed * 60,
	}, nil
}

// UnavailableGeocoder is used when no geocoding credentials are configured.
// Every lookup fails, so quotes fall back to the default distance.
type UnavailableGeocoder struct{}

func (UnavailableGeocoder) Geocode(_ context.Context, address domain.Address) (domain.Coordinates, error) {
	return domain.Coordinates{}, fmt.Errorf("%w: no geocoder configured for %q", domain.ErrProviderUnavailable, address.Line())
}
