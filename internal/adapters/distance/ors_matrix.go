package distance

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Distance retrieves the driving distance (km) and duration (minutes) from origin
// to destination using the OpenRouteService matrix endpoint.
func (o *ORSClient) Distance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.Distance")(&err)

	req := matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
		Units:        "km",
	}

	var mr matrixResponse
	if err := o.callJSON(ctx, http.MethodPost, "/v2/matrix/"+o.profile, nil, req, &mr); err != nil {
		return domain.DistanceResult{}, fmt.Errorf("matrix %v -> %v: %w", origin, destination, err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 ||
		len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return domain.DistanceResult{}, fmt.Errorf(
			"%w: expected a 1x1 matrix; got distances=%v durations=%v",
			domain.ErrProviderUnavailable, mr.Distances, mr.Durations,
		)
	}

	km := mr.Distances[0][0]
	seconds := mr.Durations[0][0]
	// ORS reports null for unroutable pairs.
	if km == nil || seconds == nil {
		return domain.DistanceResult{}, fmt.Errorf("no route between %v and %v: %w", origin, destination, domain.ErrNotFound)
	}

	return domain.DistanceResult{
		Kilometers:      *km,
		DurationMinutes: *seconds / 60,
	}, nil
}
