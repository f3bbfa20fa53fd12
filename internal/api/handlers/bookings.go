package handlers

import (
	"log"
	"net/http"

	"pickup-commit-service/internal/api/dto"
	"pickup-commit-service/internal/ports"
)

const listBookingsLimit = 200

// BookingHandler exposes read-only booking freeze-state retrieval.
type BookingHandler struct {
	Reader ports.BookingReader
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := h.Reader.ListBookings(r.Context(), listBookingsLimit)
	if err != nil {
		log.Printf("list bookings failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListBookingsResponse{
		Bookings: make([]dto.BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		res.Bookings = append(res.Bookings, dto.BookingResponse{
			BookingID:          b.ID,
			TripDate:           b.TripDate,
			RequestedStartTime: b.RequestedStartTime,
			PickupTime:         b.PickupTime,
			StopCount:          len(b.Stops),
			Frozen:             b.Frozen,
			FrozenAt:           b.FrozenAt,
			Sequence:           b.Sequence,
			FinalTimes:         b.FinalTimes,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
