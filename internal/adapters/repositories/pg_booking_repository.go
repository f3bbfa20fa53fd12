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

// Postgres-backed implementation of the BookingRepository and BookingReader
// ports, selected when DATABASE_URL is configured.
type PgBookingRepository struct{ DB *sql.DB }

func NewPgBookingRepository(db *sql.DB) *PgBookingRepository {
	return &PgBookingRepository{DB: db}
}

func (p *PgBookingRepository) ListCommitCandidates(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]*domain.Booking, error) {
	if p.DB == nil {
		return nil, errors.New("pg booking repository: DB is nil")
	}

	query := `
	SELECT booking_id, trip_date, start_time, pickup_time, stops_json
	FROM bookings
	WHERE frozen = FALSE
		AND trip_date BETWEEN $1 AND $2
	ORDER BY trip_date, booking_id
	LIMIT $3;
	`
	rows, err := p.DB.QueryContext(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
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

func (p *PgBookingRepository) FreezeBooking(
	ctx context.Context,
	id string,
	c domain.Commitment,
) (bool, error) {
	if p.DB == nil {
		return false, errors.New("pg booking repository: DB is nil")
	}

	sequenceJSON, finalTimesJSON, err := encodeCommitment(c)
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: %w", id, err)
	}

	query := `
	UPDATE bookings
	SET frozen = TRUE,
		frozen_at = $1,
		sequence_json = $2,
		final_times_json = $3
	WHERE booking_id = $4
		AND frozen = FALSE;
	`
	res, err := p.DB.ExecContext(ctx, query, c.FrozenAt.UTC(), sequenceJSON, finalTimesJSON, id)
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: exec update: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("freeze booking %s: rows affected: %w", id, err)
	}

	return affected == 1, nil
}

func (p *PgBookingRepository) ListBookings(ctx context.Context, limit int) ([]*domain.Booking, error) {
	if p.DB == nil {
		return nil, errors.New("pg booking repository: DB is nil")
	}

	query := `
	SELECT booking_id, trip_date, start_time, pickup_time, stops_json,
		frozen, frozen_at, sequence_json, final_times_json
	FROM bookings
	ORDER BY trip_date DESC, booking_id
	LIMIT $1;
	`
	rows, err := p.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: query bookings table: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, 64)
	for rows.Next() {
		var id, tripDate, startTime, pickupTime, stopsJSON string
		var frozen bool
		var frozenAt sql.NullTime
		var sequenceJSON, finalTimesJSON sql.NullString
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
			Frozen:             frozen,
		}

		if frozenAt.Valid {
			t := frozenAt.Time
			b.FrozenAt = &t
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
