package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"pickup-commit-service/internal/domain"
)

// SQLite-backed implementation of the BookingRepository and BookingReader ports.
type SqliteBookingRepository struct{ DB *sql.DB }

func NewSqliteBookingRepository(db *sql.DB) *SqliteBookingRepository {
	return &SqliteBookingRepository{DB: db}
}

// Return un-frozen bookings with a trip date inside [from, to], up to limit.
// Bookings whose stops blob fails to decode are skipped with a log line:
// malformed entry data is not this subsystem's problem to escalate.
func (s *SqliteBookingRepository) ListCommitCandidates(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite booking repository: DB is nil")
	}

	query := `
	SELECT booking_id, trip_date, start_time, pickup_time, stops_json
	FROM bookings
	WHERE frozen = 0
		AND trip_date BETWEEN ? AND ?
	ORDER BY trip_date, booking_id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	if err != nil {
		return nil, fmt.Errorf("list commit candidates: query bookings table: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, 64)
	for rows.Next() {
		var id, tripDate, startTime, pickupTime, stopsJSON string
		if err := rows.Scan(&id, &tripDate, &startTime, &pickupTime, &stopsJSON); err != nil {
			return nil, fmt.Errorf("list commit candidates: scan row: %w", err)
		}

		stops, err := decodeStops(stopsJSON)
		if err != nil {
			log.Printf("list commit candidates: booking=%s skipped: %v", id, err)
			continue
		}

		bookings = append(bookings, &domain.Booking{
			ID:                 id,
			TripDate:           tripDate,
			RequestedStartTime: startTime,
			PickupTime:         pickupTime,
			Stops:              stops,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list commit candidates: row iteration: %w", err)
	}

	return bookings, nil
}

// Persist a commitment conditioned on the booking still being un-frozen.
// The frozen column acts as a single-writer gate: of two overlapping ticks,
// exactly one sees a row update here.
func (s *SqliteBookingRepository) FreezeBooking(
	ctx context.Context,
	id string,
	c domain.Commitment,
) (bool, error) {
	if s.DB == nil {
		return false, errors.New("sqlite booking repository: DB is nil")
	}

	sequenceJSON, finalTimesJSON, err := encodeCommitment(c)
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: %w", id, err)
	}

	query := `
	UPDATE bookings
	SET frozen = 1,
		frozen_at = ?,
		sequence_json = ?,
		final_times_json = ?
	WHERE booking_id = ?
		AND frozen = 0;
	`
	res, err := s.DB.ExecContext(ctx, query, c.FrozenAt.UTC().Format(time.RFC3339), sequenceJSON, finalTimesJSON, id)
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: exec update: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: rows affected: %w", id, err)
	}

	return affected == 1, nil
}

// Return recent bookings regardless of frozen state, for the ops surface.
func (s *SqliteBookingRepository) ListBookings(ctx context.Context, limit int) ([]*domain.Booking, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite booking repository: DB is nil")
	}

	query := `
	SELECT booking_id, trip_date, start_time, pickup_time, stops_json,
		frozen, frozen_at, sequence_json, final_times_json
	FROM bookings
	ORDER BY trip_date DESC, booking_id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: query bookings table: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, 64)
	for rows.Next() {
		var id, tripDate, startTime, pickupTime, stopsJSON string
		var frozen int
		var frozenAt, sequenceJSON, finalTimesJSON sql.NullString
		if err := rows.Scan(
			&id, &tripDate, &startTime, &pickupTime, &stopsJSON,
			&frozen, &frozenAt, &sequenceJSON, &finalTimesJSON,
		); err != nil {
			return nil, fmt.Errorf("list bookings: scan row: %w", err)
		}

		stops, err := decodeStops(stopsJSON)
		if err != nil {
			log.Printf("list bookings: booking=%s skipped: %v", id, err)
			continue
		}

		b := &domain.Booking{
			ID:                 id,
			TripDate:           tripDate,
			RequestedStartTime: startTime,
			PickupTime:         pickupTime,
			Stops:              stops,
			Frozen:             frozen == 1,
		}

		if frozenAt.Valid {
			if t, err := time.Parse(time.RFC3339, frozenAt.String); err == nil {
				b.FrozenAt = &t
			}
		}
		if sequenceJSON.Valid {
			if seq, err := decodeSequence(sequenceJSON.String); err == nil {
				b.Sequence = seq
			}
		}
		if finalTimesJSON.Valid {
			if times, err := decodeFinalTimes(finalTimesJSON.String); err == nil {
				b.FinalTimes = times
			}
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: row iteration: %w", err)
	}

	return bookings, nil
}
