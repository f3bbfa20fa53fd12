package services

import (
	"time"

	"pickup-commit-service/internal/ports"
)

// ProjectTimes walks a visiting order accumulating travel durations from the
// departure instant and assigns one wall-clock pickup time per stop.
//
// The first stop in the sequence is pinned to departAt; each subsequent stop
// advances the running clock by the travel duration from its predecessor,
// falling back to zero seconds for unknown pairs. Accumulation is monotonic,
// so the assigned times taken in sequence order never decrease.
//
// The result is keyed by original stop index and formatted as local "15:04",
// rounded to the nearest minute.
func ProjectTimes(order []int, m ports.TravelMatrix, departAt time.Time) map[int]string {
	times := make(map[int]string, len(order))

	t := departAt
	for k, idx := range order {
		if k > 0 {
			if d, ok := m.Duration(order[k-1], idx); ok && d > 0 {
				t = t.Add(time.Duration(d) * time.Second)
			}
		}
		times[idx] = t.Round(time.Minute).Format("15:04")
	}

	return times
}
