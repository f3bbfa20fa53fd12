package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pickup-commit-service/internal/domain"
	"pickup-commit-service/internal/platform/obs"
	"pickup-commit-service/internal/ports"
)

// Per-call deadlines for the two blocking points of a booking's pipeline, so
// one slow external call cannot stall an entire tick.
const (
	matrixCallTimeout = 15 * time.Second
	storeCallTimeout  = 5 * time.Second
)

// PipelineDeps bundles the collaborators and clock of the commitment pipeline.
// Now is injectable so eligibility boundaries can be tested deterministically;
// a nil Now means time.Now.
type PipelineDeps struct {
	Repo     ports.BookingRepository
	Matrix   ports.MatrixProvider
	Notifier ports.Notifier
	Location *time.Location
	Window   CommitWindow
	Now      func() time.Time
}

func (d PipelineDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Outcome of running the pipeline for one booking.
type CommitOutcome int

const (
	// The booking was frozen by this run and notifications were dispatched.
	OutcomeFrozen CommitOutcome = iota
	// The booking is outside its commitment window (or already frozen,
	// or has no stops) and was left untouched.
	OutcomeNotEligible
	// The travel matrix could not be obtained; the booking stays un-frozen
	// and will be retried on the next tick.
	OutcomeMatrixUnavailable
	// A concurrent run froze the booking first; treated as handled, with no
	// write and no duplicate notification.
	OutcomeAlreadyFrozen
	// The booking store rejected the freeze write; the booking stays
	// un-frozen and the deterministic pipeline reproduces the same
	// commitment on the next tick.
	OutcomeStoreUnavailable
)

func (o CommitOutcome) String() string {
	switch o {
	case OutcomeFrozen:
		return "frozen"
	case OutcomeNotEligible:
		return "not_eligible"
	case OutcomeMatrixUnavailable:
		return "matrix_unavailable"
	case OutcomeAlreadyFrozen:
		return "already_frozen"
	case OutcomeStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// CommitBooking runs the full per-booking pipeline: eligibility, sequencing,
// time projection, the conditional freeze write, and notification dispatch.
//
// Ordering within the pipeline is strict, and the booking is never notified
// before it is frozen. Determinism of the sequencer and projector makes the
// freeze write idempotent: a retried booking reproduces the same commitment.
func CommitBooking(ctx context.Context, deps PipelineDeps, b *domain.Booking) (CommitOutcome, error) {
	if !Eligible(b, deps.now(), deps.Location, deps.Window) {
		return OutcomeNotEligible, nil
	}

	departAt, err := DepartureInstant(b, deps.Location)
	if err != nil {
		return OutcomeNotEligible, nil
	}

	n := len(b.Stops)

	// Single-stop bookings need no matrix call: the only stop is visited at
	// the departure instant.
	var matrix ports.TravelMatrix
	if n >= 2 {
		mctx, cancel := context.WithTimeout(ctx, matrixCallTimeout)
		matrix, err = deps.Matrix.GetTravelMatrix(mctx, b.Stops)
		cancel()
		if err != nil {
			if errors.Is(err, ports.ErrMatrixUnavailable) {
				log.Printf("commit: booking=%s matrix unavailable, retrying next tick: %v", b.ID, err)
				return OutcomeMatrixUnavailable, nil
			}
			return OutcomeMatrixUnavailable, fmt.Errorf("commit booking %s: get travel matrix: %w", b.ID, err)
		}
	}

	order := SequenceStops(matrix, n)
	commitment := domain.Commitment{
		FrozenAt:   deps.now(),
		Sequence:   order,
		FinalTimes: ProjectTimes(order, matrix, departAt),
	}

	if err := commitment.Validate(n); err != nil {
		return OutcomeNotEligible, fmt.Errorf("commit booking %s: %w", b.ID, err)
	}

	wctx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	applied, err := deps.Repo.FreezeBooking(wctx, b.ID, commitment)
	cancel()
	if err != nil {
		return OutcomeStoreUnavailable, fmt.Errorf("commit booking %s: freeze write: %w", b.ID, err)
	}
	if !applied {
		// Lost the race to an overlapping tick; the earlier writer already
		// froze and notified.
		return OutcomeAlreadyFrozen, nil
	}

	notifyStops(ctx, deps.Notifier, b, commitment)

	return OutcomeFrozen, nil
}

// notifyStops dispatches one best-effort message per stop in visiting order.
// A delivery failure for one stop never prevents attempts for the others.
func notifyStops(ctx context.Context, notifier ports.Notifier, b *domain.Booking, c domain.Commitment) {
	if notifier == nil {
		return
	}

	for _, idx := range c.Sequence {
		stop := b.Stops[idx]
		at, ok := c.FinalTimes[idx]
		if !ok {
			continue
		}

		target := ports.NotificationTarget{
			Phone: stop.ContactPhone,
			Email: stop.ContactEmail,
		}
		msg := pickupMessage(stop, at)

		if err := notifier.Send(ctx, target, msg); err != nil {
			log.Printf("notify: booking=%s stop=%d send failed: %v", b.ID, idx, err)
		}
	}
}

// pickupMessage renders the rider-facing text for one stop. The explicit
// uncertainty margin sets expectations given heuristic sequencing.
func pickupMessage(stop domain.Stop, at string) string {
	return fmt.Sprintf("Your pickup at %s is scheduled for %s (±5 minutes).", stop.Label(), at)
}

// PassStats summarizes one full commitment pass.
type PassStats struct {
	Candidates    int
	Frozen        int
	NotEligible   int
	Unavailable   int
	AlreadyFrozen int
	Failed        int
}

// RunCommitPass executes one tick of the pipeline: load a bounded batch of
// candidate bookings, then run each booking's pipeline sequentially. Failures
// are contained at the per-booking level; a failed booking is logged and the
// pass moves on.
func RunCommitPass(ctx context.Context, deps PipelineDeps, limit int) (_ PassStats, err error) {
	defer obs.Time(ctx, "commit.RunCommitPass")(&err)

	now := deps.now()
	// The date window is deliberately generous; Eligible applies the precise
	// time-of-day filter per booking.
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, 1)

	lctx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	candidates, err := deps.Repo.ListCommitCandidates(lctx, from, to, limit)
	cancel()
	if err != nil {
		return PassStats{}, fmt.Errorf("commit pass: list candidates: %w", err)
	}

	stats := PassStats{Candidates: len(candidates)}
	for _, b := range candidates {
		bctx := obs.WithBookingID(ctx, b.ID)

		outcome, err := CommitBooking(bctx, deps, b)
		if err != nil {
			stats.Failed++
			log.Printf("commit: booking=%s outcome=%s err=%v", b.ID, outcome, err)
			continue
		}

		switch outcome {
		case OutcomeFrozen:
			stats.Frozen++
			log.Printf("commit: booking=%s outcome=frozen stops=%d", b.ID, len(b.Stops))
		case OutcomeNotEligible:
			stats.NotEligible++
		case OutcomeMatrixUnavailable:
			stats.Unavailable++
		case OutcomeAlreadyFrozen:
			stats.AlreadyFrozen++
		}
	}

	return stats, nil
}
