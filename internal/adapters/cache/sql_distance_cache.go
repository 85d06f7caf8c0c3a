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

// SQLDistanceCache is a SQL-backed store for ordered coordinate-pair distance results.
// The pair key is split at '|' into origin and destination columns.
type SQLDistanceCache struct {
	DB     *sql.DB
	Driver string
}

func NewSQLDistanceCache(conn *sql.DB, driver string) *SQLDistanceCache {
	return &SQLDistanceCache{DB: conn, Driver: driver}
}

func splitPair(key string) (origin, destination string, err error) {
	origin, destination, ok := strings.Cut(key, "|")
	if !ok || origin == "" || destination == "" {
		return "", "", fmt.Errorf("distance cache: malformed pair key %q", key)
	}
	return origin, destination, nil
}

// Fetch a cached distance for one ordered pair.
func (s *SQLDistanceCache) GetDistance(ctx context.Context, key string) (_ domain.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "distance.cache.Get")(&err)

	if s.DB == nil {
		return domain.DistanceResult{}, false, errors.New("distance cache: db is nil")
	}

	origin, destination, err := splitPair(key)
	if err != nil {
		return domain.DistanceResult{}, false, err
	}

	q := db.Rebind(s.Driver, `
	SELECT kilometers, duration_minutes
    FROM distance_cache
    WHERE origin = ?
        AND destination = ?;
	`)

	var r domain.DistanceResult
	err = s.DB.QueryRowContext(ctx, q, origin, destination).Scan(&r.Kilometers, &r.DurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DistanceResult{}, false, nil
	}
	if err != nil {
		return domain.DistanceResult{}, false, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}

	return r, true, nil
}

// Store a distance result for one ordered pair.
func (s *SQLDistanceCache) PutDistance(ctx context.Context, key string, r domain.DistanceResult) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	origin, destination, err := splitPair(key)
	if err != nil {
		return err
	}

	q := db.Rebind(s.Driver, `
	INSERT INTO distance_cache (origin, destination, kilometers, duration_minutes)
    VALUES (?, ?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET kilometers = excluded.kilometers,
		duration_minutes = excluded.duration_minutes;
	`)

	if _, err := s.DB.ExecContext(ctx, q, origin, destination, r.Kilometers, r.DurationMinutes); err != nil {
		return fmt.Errorf("insert distance cache %s -> %s: %w", origin, destination, err)
	}

	return nil
}

// Remove every cached distance.
func (s *SQLDistanceCache) PurgeDistances(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM distance_cache;`); err != nil {
		return fmt.Errorf("purge distance cache: %w", err)
	}
	return nil
}
