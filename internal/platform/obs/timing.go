package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// BookingIDKey carries the booking currently flowing through the pipeline so
// external-call timings can be correlated with the unit of work that made them.
const BookingIDKey ctxKey = "booking_id"

// WithBookingID returns a context annotated with the given booking id.
func WithBookingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BookingIDKey, id)
}

// Time logs the duration (and error, if any) of the named operation when the
// returned func is invoked, typically via defer:
//
//	defer obs.Time(ctx, "ors.GetTravelMatrix")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	bookingID, _ := ctx.Value(BookingIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("booking=%s op=%s dur=%dms err=%v", bookingID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("booking=%s op=%s dur=%dms", bookingID, name, dur.Milliseconds())
	}
}
