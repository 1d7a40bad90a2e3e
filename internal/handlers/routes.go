package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterFlightRoutes(r chi.Router, h *FlightHandler) {
	r.Get("/api/arrivals", h.GetArrivals)
	r.Get("/api/departures", h.GetDepartures)
	r.Get("/api/all_flights", h.GetAllFlights)
	r.Get("/api/all_flights/export", h.ExportAllFlights)
}

func RegisterAuthRoutes(r chi.Router, h *AuthHandler) {
	r.Post("/api/login", h.Login)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
