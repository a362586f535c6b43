package dto

import "github.com/Winan03/AeroFlash-app/internal/domain"

// DashboardStats is the aggregate shown on the admin dashboard
type DashboardStats struct {
	TotalFlights          int            `json:"total_flights"`
	ActiveFlights         int            `json:"active_flights"`
	TotalReservations     int            `json:"total_reservations"`
	ConfirmedReservations int            `json:"confirmed_reservations"`
	PendingReservations   int            `json:"pending_reservations"`
	CancelledReservations int            `json:"cancelled_reservations"`
	TotalRevenue          float64        `json:"total_revenue"`
	AveragePrice          float64        `json:"average_price"`
	FlightsToday          int            `json:"flights_today"`
	UpcomingFlights       int            `json:"upcoming_flights"`
	Occupancy             OccupancyStats `json:"occupancy"`
}

// OccupancyStats summarizes seat usage over active flights
type OccupancyStats struct {
	OccupancyRate        float64           `json:"occupancy_rate"`
	HighOccupancyFlights int               `json:"high_occupancy_flights"`
	LowOccupancyFlights  int               `json:"low_occupancy_flights"`
	ByFlight             []FlightOccupancy `json:"occupancy_by_flight"`
}

// FlightOccupancy is the occupancy of one flight number
type FlightOccupancy struct {
	FlightID      string  `json:"flight_id"`
	NumeroVuelo   string  `json:"numero_vuelo"`
	Route         string  `json:"route"`
	TotalSeats    int     `json:"total_seats"`
	OccupiedSeats int     `json:"occupied_seats"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// DashboardResponse is returned by the dashboard endpoint
type DashboardResponse struct {
	Stats   *DashboardStats  `json:"stats"`
	Flights []*domain.Flight `json:"flights"`
}

// FlightStatsResponse details one flight
type FlightStatsResponse struct {
	Flight                *domain.Flight   `json:"flight"`
	TotalSeats            int              `json:"total_seats"`
	OccupiedSeats         int              `json:"occupied_seats"`
	AvailableSeats        int              `json:"available_seats"`
	OccupancyRate         float64          `json:"occupancy_rate"`
	TotalReservations     int              `json:"total_reservations"`
	ConfirmedReservations int              `json:"confirmed_reservations"`
	CancelledReservations int              `json:"cancelled_reservations"`
	PendingReservations   int              `json:"pending_reservations"`
	Revenue               float64          `json:"revenue"`
	AveragePrice          float64          `json:"average_price"`
	Reservations          []*domain.Ticket `json:"reservations"`
}
