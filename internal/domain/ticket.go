package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Ticket statuses as written by this service
const (
	StatusConfirmado = "Confirmado"
	StatusCancelada  = "Cancelada"
)

// Status categories used by statistics
const (
	CategoryConfirmed = "confirmed"
	CategoryCancelled = "cancelled"
	CategoryPending   = "pending"
)

// Ticket code bounds accepted by the public lookup form
const (
	MinTicketCodeLength = 6
	MaxTicketCodeLength = 10
)

// Passenger is the passenger part of a ticket snapshot
type Passenger struct {
	NombreCompleto  string `json:"nombre_completo"`
	DNI             string `json:"dni"`
	Correo          string `json:"correo"`
	FechaNacimiento string `json:"fecha_nacimiento,omitempty"`
	Genero          string `json:"genero,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
}

// FlightSnapshot is the flight as it was when the ticket was bought
type FlightSnapshot struct {
	NumeroVuelo string `json:"numero_vuelo"`
	Origen      string `json:"origen"`
	Destino     string `json:"destino"`
	Fecha       string `json:"fecha"`
	HoraPartida string `json:"hora_partida"`
	HoraLlegada string `json:"hora_llegada"`
	Clase       string `json:"clase"`
	Aerolinea   string `json:"aerolinea"`
	Puerta      string `json:"puerta"`
	Asiento     string `json:"asiento"`
}

// Ticket is stored under tickets/{codigo_ticket}. FlightID is empty on
// tickets written before it was recorded.
type Ticket struct {
	CodigoTicket string         `json:"codigo_ticket"`
	FlightID     string         `json:"flight_id,omitempty"`
	Pasajero     Passenger      `json:"pasajero"`
	Vuelo        FlightSnapshot `json:"vuelo"`
	FechaReserva string         `json:"fecha_reserva"`
	Estado       string         `json:"estado"`
	Precio       Amount         `json:"precio"`
}

// NewTicket snapshots flight and passenger for seat
func NewTicket(code string, flight *Flight, seat string, passenger Passenger, now time.Time) *Ticket {
	airline := flight.Aerolinea
	if airline == "" {
		airline = DefaultAirline
	}
	gate := flight.Puerta
	if gate == "" {
		gate = DefaultGate
	}
	return &Ticket{
		CodigoTicket: code,
		FlightID:     flight.ID,
		Pasajero:     passenger,
		Vuelo: FlightSnapshot{
			NumeroVuelo: flight.NumeroVuelo,
			Origen:      flight.Origen,
			Destino:     flight.Destino,
			Fecha:       flight.Fecha,
			HoraPartida: flight.HoraPartida,
			HoraLlegada: flight.HoraLlegada,
			Clase:       flight.Clase,
			Aerolinea:   airline,
			Puerta:      gate,
			Asiento:     seat,
		},
		FechaReserva: now.Format(time.RFC3339),
		Estado:       StatusConfirmado,
		Precio:       flight.Precio,
	}
}

// StatusCategory maps a free text status to a statistics bucket
func StatusCategory(estado string) string {
	switch strings.ToLower(strings.TrimSpace(estado)) {
	case "confirmado":
		return CategoryConfirmed
	case "cancelado", "cancelada":
		return CategoryCancelled
	default:
		return CategoryPending
	}
}

// IsCancelStatus reports whether an admin status update means cancel
func IsCancelStatus(estado string) bool {
	return StatusCategory(estado) == CategoryCancelled
}

// IsCancelled reports whether the ticket has been cancelled
func (t *Ticket) IsCancelled() bool {
	return StatusCategory(t.Estado) == CategoryCancelled
}

// GenerateTicketCode returns AF + 4 digits + 2 uppercase letters
func GenerateTicketCode() string {
	return fmt.Sprintf("AF%04d%c%c", rand.IntN(10000), 'A'+rand.IntN(26), 'A'+rand.IntN(26))
}

// NormalizeTicketCode trims and upper-cases a code typed by a user
func NormalizeTicketCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateLookupCode applies the public lookup length rule to a normalized code
func ValidateLookupCode(code string) error {
	if n := len(code); n < MinTicketCodeLength || n > MaxTicketCodeLength {
		return fmt.Errorf("%w: must be %d to %d characters", ErrInvalidTicketCode, MinTicketCodeLength, MaxTicketCodeLength)
	}
	return nil
}
