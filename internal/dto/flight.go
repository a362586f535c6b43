package dto

import "github.com/Winan03/AeroFlash-app/internal/domain"

// SearchFlightsRequest is the public flight search form
type SearchFlightsRequest struct {
	Origen  string `json:"origen" binding:"required"`
	Destino string `json:"destino" binding:"required"`
	Fecha   string `json:"fecha" binding:"required,flightdate"`
}

// CreateFlightRequest creates a scheduled flight. Precio accepts a number or
// a numeric string.
type CreateFlightRequest struct {
	NumeroVuelo         string      `json:"numero_vuelo"`
	Origen              string      `json:"origen" binding:"required"`
	Destino             string      `json:"destino" binding:"required"`
	Fecha               string      `json:"fecha" binding:"required,flightdate"`
	HoraPartida         string      `json:"hora_partida" binding:"required,hhmm"`
	Duracion            string      `json:"duracion" binding:"required,duration"`
	Aerolinea           string      `json:"aerolinea"`
	Clase               string      `json:"clase" binding:"omitempty,seatclass"`
	TipoAvion           string      `json:"tipo_avion"`
	Puerta              string      `json:"puerta"`
	Precio              interface{} `json:"precio"`
	Activo              *bool       `json:"activo"`
	AsientosDisponibles []string    `json:"asientos_disponibles"`
}

// FlightResponse wraps a single flight
type FlightResponse struct {
	Message string         `json:"message,omitempty"`
	Flight  *domain.Flight `json:"flight"`
}

// FlightListResponse is returned by search and listing
type FlightListResponse struct {
	Flights []*domain.Flight `json:"flights"`
	Count   int              `json:"count"`
}

// MessageResponse carries a confirmation text only
type MessageResponse struct {
	Message string `json:"message"`
}

// NewFlightList never returns a nil slice so clients always get an array
func NewFlightList(flights []*domain.Flight) *FlightListResponse {
	if flights == nil {
		flights = []*domain.Flight{}
	}
	return &FlightListResponse{Flights: flights, Count: len(flights)}
}
