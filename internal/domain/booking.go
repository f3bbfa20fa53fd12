package domain

import (
	"fmt"
	"strings"
	"time"
)

// A single pickup location within a multi-stop booking.
// Coordinates are preferred over the address when both are present.
type Stop struct {
	Name         string
	Address      string
	Lat          *float64
	Lng          *float64
	ContactPhone string
	ContactEmail string
}

// HasCoordinates reports whether the stop carries usable geocoordinates.
func (s Stop) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil
}

// Label returns the stop's display name, falling back to its address.
func (s Stop) Label() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.Address
}

// A shared-vehicle trip booking as seen by the commitment pipeline.
//
// The stop list is immutable in its original entry order; Sequence and
// FinalTimes are keyed by that original order and are only present once the
// booking has been frozen. A frozen booking is never re-sequenced.
type Booking struct {
	ID                 string
	TripDate           string // "2006-01-02", local to the operating region
	RequestedStartTime string // "15:04" wall clock for the first stop
	PickupTime         string // optional "15:04" override of RequestedStartTime
	Stops              []Stop

	Frozen     bool
	FrozenAt   *time.Time
	Sequence   []int          // sequence position -> original stop index
	FinalTimes map[int]string // original stop index -> "15:04"
}

// DepartureTime returns the wall-clock time the first stop should be visited,
// preferring the explicit pickup time override when configured.
func (b *Booking) DepartureTime() string {
	if strings.TrimSpace(b.PickupTime) != "" {
		return b.PickupTime
	}
	return b.RequestedStartTime
}

// The frozen result of one commitment pass: the visiting order, the computed
// per-stop times, and the moment the freeze happened. Written atomically and
// exactly once per booking.
type Commitment struct {
	FrozenAt   time.Time
	Sequence   []int
	FinalTimes map[int]string
}

// Validate checks the commitment invariants against the booking's stop count:
// Sequence must be a permutation of [0..n-1] and FinalTimes must hold exactly
// one entry per original stop index.
func (c Commitment) Validate(stopCount int) error {
	if len(c.Sequence) != stopCount {
		return fmt.Errorf("commitment: sequence has %d entries, want %d", len(c.Sequence), stopCount)
	}

	seen := make(map[int]bool, stopCount)
	for pos, idx := range c.Sequence {
		if idx < 0 || idx >= stopCount {
			return fmt.Errorf("commitment: sequence position %d holds out-of-range index %d", pos, idx)
		}
		if seen[idx] {
			return fmt.Errorf("commitment: stop index %d appears twice in sequence", idx)
		}
		seen[idx] = true
	}

	if len(c.FinalTimes) != stopCount {
		return fmt.Errorf("commitment: finalTimes has %d entries, want %d", len(c.FinalTimes), stopCount)
	}
	for idx := range c.FinalTimes {
		if idx < 0 || idx >= stopCount {
			return fmt.Errorf("commitment: finalTimes holds out-of-range index %d", idx)
		}
	}

	return nil
}
