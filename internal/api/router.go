package api

import (
	"net/http"

	"pickup-commit-service/internal/api/handlers"
	"pickup-commit-service/internal/ports"
)

// NewRouter wires the read-only ops endpoints. The commitment pipeline has no
// user-facing API; this surface exists for liveness checks and for inspecting
// booking freeze state during operations.
func NewRouter(reader ports.BookingReader) http.Handler {
	mux := http.NewServeMux()

	bookingHandler := &handlers.BookingHandler{Reader: reader}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/bookings", bookingHandler.List)

	return loggingMiddleware(mux)
}
