package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite schema: the bookings table plus the persistent
// geocode and distance caches used by the matrix adapter.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		booking_id TEXT PRIMARY KEY,
		trip_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		pickup_time TEXT NOT NULL DEFAULT '',
		stops_json TEXT NOT NULL,
		frozen INTEGER NOT NULL DEFAULT 0,
		frozen_at TEXT,
		sequence_json TEXT,
		final_times_json TEXT
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bookings_frozen_trip_date
	ON bookings(frozen, trip_date);
	`

	statements := []string{
		createBookingsQuery,
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

// Populate the SQLite database with booking data from a JSON seed file.
// Existing rows with the same booking id are replaced; already-frozen rows
// are effectively reset, which is the intended local-dev behavior.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	seeds, err := loadSeeds(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed bookings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO bookings (
		booking_id,
		trip_date,
		start_time,
		pickup_time,
		stops_json,
		frozen
	)
	VALUES (?, ?, ?, ?, ?, 0);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed bookings: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range seeds {
		if _, err := stmt.Exec(s.BookingID, s.TripDate, s.StartTime, s.PickupTime, s.stopsJSON); err != nil {
			return fmt.Errorf("seed bookings: insert booking_id=%s: %w", s.BookingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed bookings: commit tx: %w", err)
	}

	return nil
}
