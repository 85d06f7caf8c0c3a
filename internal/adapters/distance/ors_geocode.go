package distance

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
	"net/http"
	"net/url"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves one address with the OpenRouteService structured search.
// An empty result wraps domain.ErrNotFound; transport and payload failures wrap
// domain.ErrProviderUnavailable.
func (o *ORSClient) Geocode(ctx context.Context, address domain.Address) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	q := url.Values{}
	q.Set("address", address.Line())
	q.Set("locality", address.Commune)
	if address.Region != "" {
		q.Set("region", address.Region)
	}
	if o.country != "" {
		q.Set("country", o.country)
	}
	q.Set("size", "1")

	var decoded geocodeResponse
	if err := o.callJSON(ctx, http.MethodGet, "/geocode/search/structured", q, nil, &decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address.Key(), err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: no results: %w", address.Key(), domain.ErrNotFound)
	}

	// GeoJSON order is [lng, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: coordinates %v", address.Key(), domain.ErrProviderUnavailable, coords)
	}

	return domain.Coordinates{Lng: coords[0], Lat: coords[1]}, nil
}
