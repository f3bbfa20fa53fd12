package services

import (
	"testing"
	"time"

	"pickup-commit-service/internal/domain"
)

func eligibilityBooking() *domain.Booking {
	return &domain.Booking{
		ID:                 "bk-1",
		TripDate:           "2026-03-10",
		RequestedStartTime: "09:00",
		Stops:              []domain.Stop{{Name: "Alice", Address: "12 Oak St"}},
	}
}

func TestEligibleWindowEdges(t *testing.T) {
	w := CommitWindow{Before: time.Hour, Grace: time.Hour}
	b := eligibilityBooking()

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before window opens", time.Date(2026, 3, 10, 7, 59, 59, 0, time.UTC), false},
		{"exactly at window open", time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), true},
		{"mid window", time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC), true},
		{"at departure", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), true},
		{"exactly at grace end", time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), true},
		{"one second past grace", time.Date(2026, 3, 10, 10, 0, 1, 0, time.UTC), false},
		{"previous day", time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		if got := Eligible(b, tc.now, time.UTC, w); got != tc.want {
			t.Fatalf("%s: Eligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEligibleRespectsPickupTimeOverride(t *testing.T) {
	w := CommitWindow{Before: time.Hour, Grace: time.Hour}
	b := eligibilityBooking()
	b.PickupTime = "14:00"

	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	if Eligible(b, now, time.UTC, w) {
		t.Fatal("booking with a later pickup override should not be eligible at 08:30")
	}

	now = time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC)
	if !Eligible(b, now, time.UTC, w) {
		t.Fatal("booking should be eligible inside the overridden window")
	}
}

func TestEligibleRejectsFrozenAndEmptyAndMalformed(t *testing.T) {
	w := CommitWindow{Before: time.Hour, Grace: time.Hour}
	now := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

	frozen := eligibilityBooking()
	frozen.Frozen = true
	if Eligible(frozen, now, time.UTC, w) {
		t.Fatal("frozen booking must never be eligible")
	}

	empty := eligibilityBooking()
	empty.Stops = nil
	if Eligible(empty, now, time.UTC, w) {
		t.Fatal("booking without stops must never be eligible")
	}

	badDate := eligibilityBooking()
	badDate.TripDate = "03/10/2026"
	if Eligible(badDate, now, time.UTC, w) {
		t.Fatal("booking with unparseable date must never be eligible")
	}

	badTime := eligibilityBooking()
	badTime.RequestedStartTime = "9am"
	if Eligible(badTime, now, time.UTC, w) {
		t.Fatal("booking with unparseable start time must never be eligible")
	}

	if Eligible(nil, now, time.UTC, w) {
		t.Fatal("nil booking must never be eligible")
	}
}

func TestDepartureInstantUsesLocation(t *testing.T) {
	b := eligibilityBooking()

	loc := time.FixedZone("UTC-7", -7*60*60)
	got, err := DepartureInstant(b, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DepartureInstant = %v, want %v", got, want)
	}
}
