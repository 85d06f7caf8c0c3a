package ports

import (
	"context"
	"moving-quote-service/internal/domain"
)

// Contract for resolving a postal address to coordinates.
type Geocoder interface {
	// Return coordinates for the address, or an error wrapping domain.ErrNotFound.
	Geocode(ctx context.Context, address domain.Address) (domain.Coordinates, error)
}

// Contract for retrieving travel distance and duration between coordinates.
type DistanceProvider interface {
	// Return travel distance and estimated duration from origin to destination.
	Distance(ctx context.Context, origin, destination domain.Coordinates) (domain.DistanceResult, error)
}
