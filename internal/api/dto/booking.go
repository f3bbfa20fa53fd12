package dto

import "time"

type BookingResponse struct {
	BookingID          string         `json:"booking_id"`
	TripDate           string         `json:"trip_date"`
	RequestedStartTime string         `json:"requested_start_time"`
	PickupTime         string         `json:"pickup_time,omitempty"`
	StopCount          int            `json:"stop_count"`
	Frozen             bool           `json:"frozen"`
	FrozenAt           *time.Time     `json:"frozen_at,omitempty"`
	Sequence           []int          `json:"sequence,omitempty"`
	FinalTimes         map[int]string `json:"final_times,omitempty"`
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}
