package services

import (
	"testing"

	"pickup-commit-service/internal/adapters/matrix"
)

func assertPermutation(t *testing.T, order []int, n int) {
	t.Helper()

	if len(order) != n {
		t.Fatalf("order has %d entries, want %d", len(order), n)
	}
	seen := make(map[int]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			t.Fatalf("order contains out-of-range index %d", idx)
		}
		if seen[idx] {
			t.Fatalf("order contains duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestSequenceStopsGreedy(t *testing.T) {
	// A->B is closer than A->C, so the greedy path is A, B, C.
	m := matrix.BuildMatrix(3, []matrix.MockLeg{
		{From: 0, To: 1, Seconds: 300},
		{From: 0, To: 2, Seconds: 900},
		{From: 1, To: 2, Seconds: 400},
	})

	order := SequenceStops(m, 3)
	assertPermutation(t, order, 3)

	want := []int{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSequenceStopsTieBreaksByLowestIndex(t *testing.T) {
	m := matrix.BuildMatrix(3, []matrix.MockLeg{
		{From: 0, To: 1, Seconds: 500},
		{From: 0, To: 2, Seconds: 500},
		{From: 2, To: 1, Seconds: 100},
		{From: 1, To: 2, Seconds: 100},
	})

	order := SequenceStops(m, 3)
	assertPermutation(t, order, 3)

	if order[1] != 1 {
		t.Fatalf("tie should break to lowest index; order = %v", order)
	}
}

func TestSequenceStopsWithMatrixHoles(t *testing.T) {
	// duration[1][2] and duration[1][3] are unknown; the sequencer must still
	// produce a full permutation, taking unknown stops in ascending index
	// order once known candidates run out.
	m := matrix.BuildMatrix(4, []matrix.MockLeg{
		{From: 0, To: 1, Seconds: 100},
		{From: 0, To: 2, Seconds: 200},
		{From: 0, To: 3, Seconds: 300},
	})

	order := SequenceStops(m, 4)
	assertPermutation(t, order, 4)

	if order[0] != 0 || order[1] != 1 {
		t.Fatalf("order = %v, want it to start [0 1 ...]", order)
	}
	// From stop 1 nothing is known, so the fallback takes 2 then 3.
	if order[2] != 2 || order[3] != 3 {
		t.Fatalf("order = %v, want fallback tail [... 2 3]", order)
	}
}

func TestSequenceStopsEmptyMatrix(t *testing.T) {
	order := SequenceStops(matrix.BuildMatrix(3, nil), 3)
	assertPermutation(t, order, 3)

	want := []int{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want ascending fallback %v", order, want)
		}
	}
}

func TestSequenceStopsSingleStop(t *testing.T) {
	order := SequenceStops(matrix.BuildMatrix(1, nil), 1)
	if len(order) != 1 || order[0] != 0 {
		t.Fatalf("order = %v, want [0]", order)
	}
}
