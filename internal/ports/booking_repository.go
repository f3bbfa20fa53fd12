package ports

import (
	"context"
	"time"

	"pickup-commit-service/internal/domain"
)

// Port: a boundary for reading and freezing Booking entities in the booking store.
type BookingRepository interface {
	// Return un-frozen bookings whose trip date falls inside [from, to],
	// capped at limit. The precise time-of-day eligibility filter is applied
	// by the caller.
	ListCommitCandidates(ctx context.Context, from, to time.Time, limit int) ([]*domain.Booking, error)

	// Persist the commitment for the given booking as a single logical update,
	// conditioned on the booking still being un-frozen. Returns false when the
	// booking was already frozen, which callers must treat as a no-op rather
	// than an error.
	FreezeBooking(ctx context.Context, id string, c domain.Commitment) (bool, error)
}

// Optional read-only extension used by the ops surface.
type BookingReader interface {
	// Return recent bookings regardless of frozen state, capped at limit.
	ListBookings(ctx context.Context, limit int) ([]*domain.Booking, error)
}
