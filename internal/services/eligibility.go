package services

import (
	"fmt"
	"time"

	"pickup-commit-service/internal/domain"
)

// CommitWindow bounds when a booking may be frozen relative to its departure
// instant: it becomes eligible Before ahead of departure and stays eligible
// for Grace afterwards, tolerating bounded scheduler downtime without ever
// freezing bookings far in the past or future.
type CommitWindow struct {
	Before time.Duration
	Grace  time.Duration
}

// DepartureInstant resolves the booking's target departure as an instant in
// the trip's local timezone.
func DepartureInstant(b *domain.Booking, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", b.TripDate+" "+b.DepartureTime(), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("departure instant: booking %s: %w", b.ID, err)
	}
	return t, nil
}

// Eligible decides whether a booking should be processed this tick.
//
// Pure predicate, no side effects: already-frozen bookings, bookings without
// stops, and bookings with an unparseable date or start time are never
// eligible. Otherwise the booking is eligible exactly when now falls inside
// [departure − window.Before, departure + window.Grace], both edges inclusive.
func Eligible(b *domain.Booking, now time.Time, loc *time.Location, w CommitWindow) bool {
	if b == nil || b.Frozen {
		return false
	}
	if len(b.Stops) == 0 {
		return false
	}

	target, err := DepartureInstant(b, loc)
	if err != nil {
		return false
	}

	opens := target.Add(-w.Before)
	closes := target.Add(w.Grace)
	return !now.Before(opens) && !now.After(closes)
}
