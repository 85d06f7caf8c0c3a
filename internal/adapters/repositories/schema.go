package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates every table used by the service.
// The DDL is portable between PostgreSQL and SQLite.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPricingRulesQuery := `
	CREATE TABLE IF NOT EXISTS pricing_rules (
		id INTEGER PRIMARY KEY,
		version INTEGER NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		document TEXT NOT NULL
	);
	`

	createFleetConfigQuery := `
	CREATE TABLE IF NOT EXISTS fleet_config (
		id INTEGER PRIMARY KEY,
		num_vehicles INTEGER NOT NULL
	);
	`

	createTimeSlotsQuery := `
	CREATE TABLE IF NOT EXISTS time_slots (
		label TEXT PRIMARY KEY,
		recommended BOOLEAN NOT NULL DEFAULT FALSE,
		position INTEGER NOT NULL
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY,
		service_date TEXT NOT NULL,
		start_label TEXT NOT NULL,
		duration_hours DOUBLE PRECISION NOT NULL DEFAULT 1,
		status TEXT NOT NULL
	);
	`

	createBlockedSlotsQuery := `
	CREATE TABLE IF NOT EXISTS blocked_slots (
		service_date TEXT NOT NULL,
		label TEXT NOT NULL,
		PRIMARY KEY (service_date, label)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        kilometers DOUBLE PRECISION NOT NULL,
        duration_minutes DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address_key TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lng DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bookings_service_date
    ON bookings(service_date);
	`

	statements := []string{
		createPricingRulesQuery,
		createFleetConfigQuery,
		createTimeSlotsQuery,
		createBookingsQuery,
		createBlockedSlotsQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
