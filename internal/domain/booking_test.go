package domain

import (
	"testing"
	"time"
)

func TestCommitmentValidate(t *testing.T) {
	valid := Commitment{
		FrozenAt:   time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC),
		Sequence:   []int{0, 2, 1},
		FinalTimes: map[int]string{0: "09:00", 1: "09:20", 2: "09:05"},
	}
	if err := valid.Validate(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	duplicate := Commitment{
		Sequence:   []int{0, 1, 1},
		FinalTimes: map[int]string{0: "09:00", 1: "09:05", 2: "09:10"},
	}
	if err := duplicate.Validate(3); err == nil {
		t.Fatal("expected error for duplicate sequence index")
	}

	short := Commitment{
		Sequence:   []int{0, 1},
		FinalTimes: map[int]string{0: "09:00", 1: "09:05"},
	}
	if err := short.Validate(3); err == nil {
		t.Fatal("expected error for incomplete sequence")
	}

	outOfRange := Commitment{
		Sequence:   []int{0, 1, 3},
		FinalTimes: map[int]string{0: "09:00", 1: "09:05", 3: "09:10"},
	}
	if err := outOfRange.Validate(3); err == nil {
		t.Fatal("expected error for out-of-range index")
	}

	missingTime := Commitment{
		Sequence:   []int{0, 1, 2},
		FinalTimes: map[int]string{0: "09:00", 1: "09:05"},
	}
	if err := missingTime.Validate(3); err == nil {
		t.Fatal("expected error for missing final time")
	}
}

func TestStopLabel(t *testing.T) {
	named := Stop{Name: "Alice", Address: "12 Oak St"}
	if got := named.Label(); got != "Alice" {
		t.Fatalf("Label() = %q, want Alice", got)
	}

	unnamed := Stop{Address: "12 Oak St"}
	if got := unnamed.Label(); got != "12 Oak St" {
		t.Fatalf("Label() = %q, want address fallback", got)
	}
}

func TestBookingDepartureTime(t *testing.T) {
	b := &Booking{RequestedStartTime: "09:00"}
	if got := b.DepartureTime(); got != "09:00" {
		t.Fatalf("DepartureTime() = %q, want 09:00", got)
	}

	b.PickupTime = "08:30"
	if got := b.DepartureTime(); got != "08:30" {
		t.Fatalf("DepartureTime() = %q, want pickup override 08:30", got)
	}
}
