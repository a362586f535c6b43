package dto

import "github.com/Winan03/AeroFlash-app/internal/domain"

// BookFlightRequest reserves one seat for one passenger
type BookFlightRequest struct {
	NombreCompleto  string `json:"nombre_completo" binding:"required"`
	DNI             string `json:"dni" binding:"required,dni"`
	Correo          string `json:"correo" binding:"required,email"`
	FlightID        string `json:"flight_id" binding:"required"`
	Asiento         string `json:"asiento" binding:"required"`
	FechaNacimiento string `json:"fecha_nacimiento" binding:"omitempty,flightdate"`
	Genero          string `json:"genero"`
	Telefono        string `json:"telefono"`
}

// Passenger builds the passenger snapshot
func (r *BookFlightRequest) Passenger() domain.Passenger {
	return domain.Passenger{
		NombreCompleto:  r.NombreCompleto,
		DNI:             r.DNI,
		Correo:          r.Correo,
		FechaNacimiento: r.FechaNacimiento,
		Genero:          r.Genero,
		Telefono:        r.Telefono,
	}
}

// BookFlightResponse is returned after a successful booking
type BookFlightResponse struct {
	Message     string `json:"message"`
	TicketCode  string `json:"ticket_code"`
	RedirectURL string `json:"redirect_url"`
}

// SearchTicketRequest is the public ticket lookup form
type SearchTicketRequest struct {
	TicketCode string `json:"ticket_code" form:"ticket_code"`
}

// TicketResponse wraps one ticket
type TicketResponse struct {
	Message     string         `json:"message,omitempty"`
	TicketCode  string         `json:"ticket_code"`
	Ticket      *domain.Ticket `json:"ticket"`
	RedirectURL string         `json:"redirect_url,omitempty"`
}

// TicketListResponse lists tickets keyed by code
type TicketListResponse struct {
	Tickets map[string]*domain.Ticket `json:"tickets"`
	Count   int                       `json:"count"`
}

// UpdateTicketRequest changes a ticket status
type UpdateTicketRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// SeatAvailabilityResponse returns the stored seat collections
type SeatAvailabilityResponse struct {
	FlightID       string   `json:"flight_id"`
	AvailableSeats []string `json:"available_seats"`
	OccupiedSeats  []string `json:"occupied_seats"`
}
