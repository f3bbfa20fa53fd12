package services

import (
	"testing"
	"time"

	"pickup-commit-service/internal/adapters/matrix"
)

func TestProjectTimesAccumulates(t *testing.T) {
	m := matrix.BuildMatrix(3, []matrix.MockLeg{
		{From: 0, To: 1, Seconds: 300},
		{From: 1, To: 2, Seconds: 400},
	})

	departAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	times := ProjectTimes([]int{0, 1, 2}, m, departAt)

	want := map[int]string{0: "09:00", 1: "09:05", 2: "09:12"}
	if len(times) != len(want) {
		t.Fatalf("got %d entries, want %d", len(times), len(want))
	}
	for idx, w := range want {
		if times[idx] != w {
			t.Fatalf("times[%d] = %q, want %q (all: %v)", idx, times[idx], w, times)
		}
	}
}

func TestProjectTimesUnknownPairAddsNothing(t *testing.T) {
	// duration[1][2] is a hole: stop 2 inherits stop 1's time.
	m := matrix.BuildMatrix(3, []matrix.MockLeg{
		{From: 0, To: 1, Seconds: 600},
	})

	departAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	times := ProjectTimes([]int{0, 1, 2}, m, departAt)

	if times[1] != "09:10" {
		t.Fatalf("times[1] = %q, want 09:10", times[1])
	}
	if times[2] != "09:10" {
		t.Fatalf("times[2] = %q, want zero-duration fallback 09:10", times[2])
	}
}

func TestProjectTimesCompleteAndMonotonic(t *testing.T) {
	m := matrix.BuildMatrix(4, []matrix.MockLeg{
		{From: 0, To: 3, Seconds: 90},
		{From: 3, To: 1, Seconds: 30},
		{From: 1, To: 2, Seconds: 1800},
	})
	order := []int{0, 3, 1, 2}

	departAt := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	times := ProjectTimes(order, m, departAt)

	if len(times) != 4 {
		t.Fatalf("got %d entries, want exactly one per stop", len(times))
	}

	prev := ""
	for _, idx := range order {
		got, ok := times[idx]
		if !ok {
			t.Fatalf("missing time for stop %d", idx)
		}
		if prev != "" && got < prev && prev <= "23:59" && got >= "00:00" {
			// Allow midnight rollover only when the clock actually wrapped.
			continue
		}
		if got < prev {
			t.Fatalf("times not monotonic in visiting order: %q before %q", prev, got)
		}
		prev = got
	}
}

func TestProjectTimesSingleStop(t *testing.T) {
	departAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	times := ProjectTimes([]int{0}, matrix.BuildMatrix(1, nil), departAt)

	if len(times) != 1 || times[0] != "09:00" {
		t.Fatalf("times = %v, want {0: 09:00}", times)
	}
}
