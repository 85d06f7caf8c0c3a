package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/db"
	"moving-quote-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a SQL-backed store mapping normalized address keys to coordinates.
// It works with both the pgx and sqlite drivers.
type SQLGeocodeCache struct {
	DB     *sql.DB
	Driver string
}

func NewSQLGeocodeCache(conn *sql.DB, driver string) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: conn, Driver: driver}
}

// Fetch cached coordinates for one address key.
func (s *SQLGeocodeCache) GetCoordinates(ctx context.Context, key string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return domain.Coordinates{}, false, errors.New("get geocode cache: key must not be empty")
	}

	q := db.Rebind(s.Driver, `
	SELECT lat, lng
    FROM geocode_cache
    WHERE address_key = ?;
	`)

	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&c.Lat, &c.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return c, true, nil
}

// Store an address key -> coordinate mapping.
func (s *SQLGeocodeCache) PutCoordinates(ctx context.Context, key string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	q := db.Rebind(s.Driver, `
	INSERT INTO geocode_cache (address_key, lat, lng)
    VALUES (?, ?, ?)
	ON CONFLICT (address_key) DO UPDATE
	SET lat = excluded.lat,
		lng = excluded.lng;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key, c.Lat, c.Lng); err != nil {
		return fmt.Errorf("insert geocode cache key=%q: %w", key, err)
	}

	return nil
}

// Remove every cached coordinate.
func (s *SQLGeocodeCache) PurgeCoordinates(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM geocode_cache;`); err != nil {
		return fmt.Errorf("purge geocode cache: %w", err)
	}
	return nil
}
