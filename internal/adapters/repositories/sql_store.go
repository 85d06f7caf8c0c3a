package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/db"
	"moving-quote-service/internal/platform/obs"
	"time"
)

const fleetConfigID = 1

// SQLStore implements the RulesStore and ScheduleStore ports on PostgreSQL or SQLite.
type SQLStore struct {
	DB     *sql.DB
	Driver string
}

func NewSQLStore(conn *sql.DB, driver string) *SQLStore {
	return &SQLStore{DB: conn, Driver: driver}
}

func (s *SQLStore) q(query string) string { return db.Rebind(s.Driver, query) }

func (s *SQLStore) check() error {
	if s.DB == nil {
		return errors.New("sql store: DB is nil")
	}
	return nil
}

// Return the highest active pricing rule set.
func (s *SQLStore) ActivePricingRules(ctx context.Context) (_ domain.PricingRulesDocument, err error) {
	defer obs.Time(ctx, "store.ActivePricingRules")(&err)

	if err := s.check(); err != nil {
		return domain.PricingRulesDocument{}, err
	}

	query := `
	SELECT version, document
	FROM pricing_rules
	WHERE is_active = TRUE
	ORDER BY version DESC
	LIMIT 1;
	`

	var (
		version int
		raw     string
	)
	err = s.DB.QueryRowContext(ctx, query).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PricingRulesDocument{}, fmt.Errorf("active pricing rules: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.PricingRulesDocument{}, fmt.Errorf("active pricing rules: query pricing_rules table: %w", err)
	}

	var doc domain.PricingRulesDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.PricingRulesDocument{}, fmt.Errorf("active pricing rules: %w: decode v%d: %w", domain.ErrConfiguration, version, err)
	}
	doc.Version = version

	return doc, nil
}

// SaveActivePricingRules stores doc under its version and makes it the only active rule set.
func (s *SQLStore) SaveActivePricingRules(ctx context.Context, doc domain.PricingRulesDocument) error {
	if err := s.check(); err != nil {
		return err
	}
	if doc.Version <= 0 {
		return fmt.Errorf("save pricing rules: invalid version %d", doc.Version)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save pricing rules: encode: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save pricing rules: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE pricing_rules SET is_active = FALSE;`); err != nil {
		return fmt.Errorf("save pricing rules: deactivate: %w", err)
	}

	upsert := s.q(`
	INSERT INTO pricing_rules (id, version, is_active, document)
	VALUES (?, ?, TRUE, ?)
	ON CONFLICT (version) DO UPDATE
	SET is_active = TRUE,
		document = excluded.document;
	`)
	if _, err := tx.ExecContext(ctx, upsert, doc.Version, doc.Version, string(payload)); err != nil {
		return fmt.Errorf("save pricing rules v%d: %w", doc.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save pricing rules: commit tx: %w", err)
	}
	return nil
}

func (s *SQLStore) FleetSize(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}

	var n int
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT num_vehicles FROM fleet_config WHERE id = ?;`), fleetConfigID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("fleet size: %w", domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("fleet size: query fleet_config table: %w", err)
	}
	return n, nil
}

// SetFleetSize validates and stores the fleet size.
func (s *SQLStore) SetFleetSize(ctx context.Context, fleet domain.FleetConfig) error {
	if err := s.check(); err != nil {
		return err
	}
	if !fleet.Valid() {
		return fmt.Errorf("set fleet size: %w: %d vehicles", domain.ErrConfiguration, fleet.NumVehicles)
	}

	query := s.q(`
	INSERT INTO fleet_config (id, num_vehicles)
	VALUES (?, ?)
	ON CONFLICT (id) DO UPDATE
	SET num_vehicles = excluded.num_vehicles;
	`)
	if _, err := s.DB.ExecContext(ctx, query, fleetConfigID, fleet.NumVehicles); err != nil {
		return fmt.Errorf("set fleet size: %w", err)
	}
	return nil
}

// Return the canonical slots in configured order.
func (s *SQLStore) CanonicalSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT label, recommended
	FROM time_slots
	ORDER BY position, label;
	`)
	if err != nil {
		return nil, fmt.Errorf("canonical slots: query time_slots table: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0, 16)
	for rows.Next() {
		var ts domain.TimeSlot
		if err := rows.Scan(&ts.Label, &ts.Recommended); err != nil {
			return nil, fmt.Errorf("canonical slots: scan row: %w", err)
		}
		slots = append(slots, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("canonical slots: row iteration: %w", err)
	}

	return slots, nil
}

// ReplaceTimeSlots overwrites the canonical slot list; order is taken from the slice.
func (s *SQLStore) ReplaceTimeSlots(ctx context.Context, slots []domain.TimeSlot) error {
	if err := s.check(); err != nil {
		return err
	}

	for _, ts := range slots {
		if _, err := domain.ParseSlotLabel(ts.Label); err != nil {
			return fmt.Errorf("replace time slots: %w", err)
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace time slots: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slots;`); err != nil {
		return fmt.Errorf("replace time slots: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO time_slots (label, recommended, position)
	VALUES (?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("replace time slots: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, ts := range slots {
		if _, err := stmt.ExecContext(ctx, ts.Label, ts.Recommended, i); err != nil {
			return fmt.Errorf("replace time slots: insert %q: %w", ts.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace time slots: commit tx: %w", err)
	}
	return nil
}

// Return non-cancelled bookings for date.
func (s *SQLStore) activeBookings(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT id, start_label, duration_hours, status
	FROM bookings
	WHERE service_date = ?
		AND status <> ?
	ORDER BY id;
	`), date.Format(time.DateOnly), string(domain.BookingCancelled))
	if err != nil {
		return nil, fmt.Errorf("query bookings table: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0, 16)
	for rows.Next() {
		b := domain.Booking{Date: date}
		var status string
		if err := rows.Scan(&b.ID, &b.StartLabel, &b.DurationHours, &status); err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		b.Status = domain.BookingStatus(status)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking row iteration: %w", err)
	}

	return bookings, nil
}

// Occupancy counts, per slot in slots, the non-cancelled bookings overlapping it on date.
// Callers pass the slots they already read from CanonicalSlots.
func (s *SQLStore) Occupancy(ctx context.Context, date time.Time, slots []domain.TimeSlot) (_ map[string]int, err error) {
	defer obs.Time(ctx, "store.Occupancy")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	bookings, err := s.activeBookings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}

	return domain.CountOccupancy(slots, bookings)
}

// AddBooking records a booking and returns its id.
// Ids are assigned as MAX(id)+1, so concurrent writers must be serialized by the caller.
func (s *SQLStore) AddBooking(ctx context.Context, b domain.Booking) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if _, err := domain.ParseSlotLabel(b.StartLabel); err != nil {
		return 0, fmt.Errorf("add booking: %w", err)
	}
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	if b.DurationHours <= 0 {
		b.DurationHours = 1
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, s.q(`
	INSERT INTO bookings (id, service_date, start_label, duration_hours, status)
	VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM bookings), ?, ?, ?, ?)
	RETURNING id;
	`), b.Date.Format(time.DateOnly), b.StartLabel, b.DurationHours, string(b.Status)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add booking: %w", err)
	}
	return id, nil
}

// UpdateBookingStatus changes the status of an existing booking.
func (s *SQLStore) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if err := s.check(); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE bookings SET status = ? WHERE id = ?;`), string(status), id)
	if err != nil {
		return fmt.Errorf("update booking %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update booking %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Return the slot labels blocked on date.
func (s *SQLStore) BlockedSlots(ctx context.Context, date time.Time) (map[string]struct{}, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT label
	FROM blocked_slots
	WHERE service_date = ?;
	`), date.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("blocked slots: query blocked_slots table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("blocked slots: scan row: %w", err)
		}
		out[label] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("blocked slots: row iteration: %w", err)
	}

	return out, nil
}

// BlockSlot declares a slot unavailable on date.
func (s *SQLStore) BlockSlot(ctx context.Context, date time.Time, label string) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := domain.ParseSlotLabel(label); err != nil {
		return fmt.Errorf("block slot: %w", err)
	}

	query := s.q(`
	INSERT INTO blocked_slots (service_date, label)
	VALUES (?, ?)
	ON CONFLICT (service_date, label) DO NOTHING;
	`)
	if _, err := s.DB.ExecContext(ctx, query, date.Format(time.DateOnly), label); err != nil {
		return fmt.Errorf("block slot %s %s: %w", date.Format(time.DateOnly), label, err)
	}
	return nil
}
