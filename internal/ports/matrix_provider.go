package ports

import (
	"context"
	"errors"

	"pickup-commit-service/internal/domain"
)

// ErrMatrixUnavailable tags every failure mode of a matrix lookup: transport
// errors, timeouts, and malformed or partial responses. Callers skip the
// booking for the current tick and rely on the scheduler cadence to retry.
var ErrMatrixUnavailable = errors.New("travel matrix unavailable")

// Pairwise travel metrics between a booking's stops, indexed by original stop
// position. A nil entry means the pair is unknown (a matrix hole); consumers
// must degrade gracefully rather than abort.
type TravelMatrix struct {
	DurationSeconds [][]*int
	DistanceMeters  [][]*int
}

// Duration returns the travel duration from stop i to stop j in seconds.
// The second return value is false for matrix holes.
func (m TravelMatrix) Duration(i, j int) (int, bool) {
	if i < 0 || i >= len(m.DurationSeconds) {
		return 0, false
	}
	row := m.DurationSeconds[i]
	if j < 0 || j >= len(row) || row[j] == nil {
		return 0, false
	}
	return *row[j], true
}

// Distance returns the travel distance from stop i to stop j in meters.
// The second return value is false for matrix holes.
func (m TravelMatrix) Distance(i, j int) (int, bool) {
	if i < 0 || i >= len(m.DistanceMeters) {
		return 0, false
	}
	row := m.DistanceMeters[i]
	if j < 0 || j >= len(row) || row[j] == nil {
		return 0, false
	}
	return *row[j], true
}

// Contract for retrieving the full pairwise travel matrix for a list of stops.
type MatrixProvider interface {
	// Return N×N duration and distance matrices for the given stops, or an
	// error wrapping ErrMatrixUnavailable. Implementations fail closed: no
	// guessing, no internal retries.
	GetTravelMatrix(ctx context.Context, stops []domain.Stop) (TravelMatrix, error)
}
