package cache

import (
	"context"
	"moving-quote-service/internal/adapters/repositories"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSQLCaches(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(conn))

	ctx := context.Background()
	geo := NewSQLGeocodeCache(conn, db.DriverSQLite)
	dist := NewSQLDistanceCache(conn, db.DriverSQLite)

	_, ok, err := geo.GetCoordinates(ctx, "a|1|b|c")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, geo.PutCoordinates(ctx, "a|1|b|c", domain.Coordinates{Lat: -33.4, Lng: -70.6}))
	require.NoError(t, geo.PutCoordinates(ctx, "a|1|b|c", domain.Coordinates{Lat: -33.5, Lng: -70.7}))

	c, ok, err := geo.GetCoordinates(ctx, "a|1|b|c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: -33.5, Lng: -70.7}, c)

	key := "-33.5,-70.7|-33,-71.6"
	require.NoError(t, dist.PutDistance(ctx, key, domain.DistanceResult{Kilometers: 118.5, DurationMinutes: 90}))

	d, ok, err := dist.GetDistance(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.DistanceResult{Kilometers: 118.5, DurationMinutes: 90}, d)

	_, ok, err = dist.GetDistance(ctx, "-33,-71.6|-33.5,-70.7")
	require.NoError(t, err)
	assert.False(t, ok, "pairs are ordered")

	_, _, err = dist.GetDistance(ctx, "no-separator")
	assert.Error(t, err)

	require.NoError(t, geo.PurgeCoordinates(ctx))
	require.NoError(t, dist.PurgeDistances(ctx))

	_, ok, err = geo.GetCoordinates(ctx, "a|1|b|c")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = dist.GetDistance(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
