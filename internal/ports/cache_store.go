package ports

import (
	"context"
	"moving-quote-service/internal/domain"
)

// Persistent second level for geocode results, keyed by domain.Address.Key().
type GeocodeStore interface {
	GetCoordinates(ctx context.Context, key string) (domain.Coordinates, bool, error)
	PutCoordinates(ctx context.Context, key string, c domain.Coordinates) error
	PurgeCoordinates(ctx context.Context) error
}

// Persistent second level for distance results, keyed by an ordered coordinate pair.
type DistanceStore interface {
	GetDistance(ctx context.Context, key string) (domain.DistanceResult, bool, error)
	PutDistance(ctx context.Context, key string, r domain.DistanceResult) error
	PurgeDistances(ctx context.Context) error
}
