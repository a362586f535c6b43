package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical layouts for stored dates and times
const (
	DateLayout       = "2006-01-02"
	LegacyDateLayout = "02/01/2006"
	TimeLayout       = "15:04"
)

// Flight defaults
const (
	DefaultAirline      = "AeroFlash"
	DefaultAircraft     = "Boeing 737"
	DefaultGate         = "TBD"
	DefaultSeatCapacity = 120
)

// SeatClass is the cabin class of a flight
type SeatClass string

const (
	ClassEconomica SeatClass = "Económica"
	ClassEjecutiva SeatClass = "Ejecutiva"
	ClassPrimera   SeatClass = "Primera"
)

type seatLayout struct {
	rows    int
	letters string
}

var seatLayouts = map[SeatClass]seatLayout{
	ClassPrimera:   {rows: 4, letters: "ABCD"},
	ClassEjecutiva: {rows: 8, letters: "ABCD"},
	ClassEconomica: {rows: 20, letters: "ABCDEF"},
}

// ParseSeatClass accepts any casing and the unaccented "Economica"
func ParseSeatClass(s string) (SeatClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "económica", "economica":
		return ClassEconomica, nil
	case "ejecutiva":
		return ClassEjecutiva, nil
	case "primera":
		return ClassPrimera, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClass, s)
}

// Capacity is the number of seats of the class, 120 when unknown
func (c SeatClass) Capacity() int {
	if l, ok := seatLayouts[c]; ok {
		return l.rows * len(l.letters)
	}
	return DefaultSeatCapacity
}

// SeatMap lists every seat label of the class, row by row
func (c SeatClass) SeatMap() []string {
	l, ok := seatLayouts[c]
	if !ok {
		l = seatLayouts[ClassEconomica]
	}
	seats := make([]string, 0, l.rows*len(l.letters))
	for row := 1; row <= l.rows; row++ {
		for _, letter := range l.letters {
			seats = append(seats, strconv.Itoa(row)+string(letter))
		}
	}
	return seats
}

// CapacityForClass resolves capacity from a stored class name
func CapacityForClass(class string) int {
	c, err := ParseSeatClass(class)
	if err != nil {
		return DefaultSeatCapacity
	}
	return c.Capacity()
}

// Flight is a scheduled flight as stored under vuelos_programados/{id}
type Flight struct {
	ID                  string   `json:"id,omitempty"`
	NumeroVuelo         string   `json:"numero_vuelo"`
	Origen              string   `json:"origen"`
	Destino             string   `json:"destino"`
	Fecha               string   `json:"fecha"`
	HoraPartida         string   `json:"hora_partida"`
	HoraLlegada         string   `json:"hora_llegada"`
	Duracion            string   `json:"duracion,omitempty"`
	Aerolinea           string   `json:"aerolinea"`
	Clase               string   `json:"clase"`
	TipoAvion           string   `json:"tipo_avion"`
	Puerta              string   `json:"puerta"`
	Precio              Amount   `json:"precio"`
	Activo              *bool    `json:"activo,omitempty"`
	AsientosDisponibles []string `json:"asientos_disponibles,omitempty"`
	AsientosOcupados    []string `json:"asientos_ocupados,omitempty"`
}

// IsActive treats a missing flag as active
func (f *Flight) IsActive() bool {
	return f.Activo == nil || *f.Activo
}

// ApplyDefaults fills optional attributes the way flight creation does
func (f *Flight) ApplyDefaults() {
	if f.Aerolinea == "" {
		f.Aerolinea = DefaultAirline
	}
	if f.Clase == "" {
		f.Clase = string(ClassEconomica)
	}
	if f.TipoAvion == "" {
		f.TipoAvion = DefaultAircraft
	}
	if f.Puerta == "" {
		f.Puerta = DefaultGate
	}
	if f.Activo == nil {
		active := true
		f.Activo = &active
	}
	if len(f.AsientosDisponibles) == 0 {
		class, err := ParseSeatClass(f.Clase)
		if err != nil {
			class = ClassEconomica
		}
		f.AsientosDisponibles = class.SeatMap()
	}
}

// Capacity returns the seat capacity implied by the class
func (f *Flight) Capacity() int {
	return CapacityForClass(f.Clase)
}

// HasAvailableSeat reports whether seat is in the available set
func (f *Flight) HasAvailableSeat(seat string) bool {
	return indexOf(f.AsientosDisponibles, seat) >= 0
}

// OccupySeat moves seat from available to occupied
func (f *Flight) OccupySeat(seat string) error {
	i := indexOf(f.AsientosDisponibles, seat)
	if i < 0 {
		return ErrSeatUnavailable
	}
	f.AsientosDisponibles = append(f.AsientosDisponibles[:i:i], f.AsientosDisponibles[i+1:]...)
	if indexOf(f.AsientosOcupados, seat) < 0 {
		f.AsientosOcupados = append(f.AsientosOcupados, seat)
	}
	return nil
}

// ReleaseSeat moves seat back to available. It reports whether anything changed.
func (f *Flight) ReleaseSeat(seat string) bool {
	i := indexOf(f.AsientosOcupados, seat)
	if i < 0 {
		return false
	}
	f.AsientosOcupados = append(f.AsientosOcupados[:i:i], f.AsientosOcupados[i+1:]...)
	if indexOf(f.AsientosDisponibles, seat) < 0 {
		f.AsientosDisponibles = append(f.AsientosDisponibles, seat)
	}
	return true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

var durationPattern = regexp.MustCompile(`^(\d+)\s*h(?:\s*(\d+)\s*m)?$`)

// MaxFlightHours bounds the hour part of a duration
const MaxFlightHours = 48

// ParseDuration parses "<hours>h <minutes>m" where minutes are optional
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours >= MaxFlightHours {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	minutes := 0
	if m[2] != "" {
		if minutes, err = strconv.Atoi(m[2]); err != nil || minutes >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// NormalizeTime returns t as zero padded HH:MM
func NormalizeTime(t string) (string, error) {
	parsed, err := time.Parse(TimeLayout, strings.TrimSpace(t))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	return parsed.Format(TimeLayout), nil
}

// ArrivalTime adds d to departure, wrapping past midnight
func ArrivalTime(departure string, d time.Duration) (string, error) {
	dep, err := time.Parse(TimeLayout, strings.TrimSpace(departure))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, departure)
	}
	return dep.Add(d).Format(TimeLayout), nil
}

// NormalizeDate converts YYYY-MM-DD or DD/MM/YYYY to YYYY-MM-DD
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseDate reads either accepted date form as midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, LegacyDateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// GenerateFlightNumber builds AF + HHMM + (count+1)
func GenerateFlightNumber(now time.Time, existing int) string {
	return "AF" + now.Format("1504") + strconv.Itoa(existing+1)
}
