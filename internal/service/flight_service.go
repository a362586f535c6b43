package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// FlightService defines the interface for flight inventory management
type FlightService interface {
	// CreateFlight validates, fills defaults and stores a new flight
	CreateFlight(ctx context.Context, req *dto.CreateFlightRequest) (*dto.FlightResponse, error)

	// UpdateFlight applies a partial update. Tickets are not touched.
	UpdateFlight(ctx context.Context, id string, fields map[string]interface{}) (*dto.FlightResponse, error)

	// DeleteFlight removes a flight. Tickets are not touched.
	DeleteFlight(ctx context.Context, id string) error

	// SearchFlights finds flights by date, origin and destination
	SearchFlights(ctx context.Context, req *dto.SearchFlightsRequest) (*dto.FlightListResponse, error)

	// ListFlights returns all flights
	ListFlights(ctx context.Context) (*dto.FlightListResponse, error)

	// GetFlight returns one flight
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
}

type flightService struct {
	flightRepo repository.FlightRepository
	inventory  repository.SeatInventory
	now        func() time.Time
}

// NewFlightService creates a new flight service. inventory may be nil.
func NewFlightService(flightRepo repository.FlightRepository, inventory repository.SeatInventory) FlightService {
	return &flightService{
		flightRepo: flightRepo,
		inventory:  inventory,
		now:        time.Now,
	}
}

// CreateFlight validates, fills defaults and stores a new flight
func (s *flightService) CreateFlight(ctx context.Context, req *dto.CreateFlightRequest) (*dto.FlightResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.flight.create")
	defer span.End()

	flight, err := s.buildFlight(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.flightRepo.Create(ctx, flight); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("flight_id", flight.ID))

	s.seed(ctx, flight)
	span.SetStatus(codes.Ok, "")
	return &dto.FlightResponse{Message: "Vuelo creado exitosamente", Flight: flight}, nil
}

func (s *flightService) buildFlight(ctx context.Context, req *dto.CreateFlightRequest) (*domain.Flight, error) {
	if req == nil {
		return nil, domain.ErrMissingField
	}
	required := map[string]string{
		"origen":       req.Origen,
		"destino":      req.Destino,
		"fecha":        req.Fecha,
		"hora_partida": req.HoraPartida,
		"duracion":     req.Duracion,
	}
	for _, field := range []string{"origen", "destino", "fecha", "hora_partida", "duracion"} {
		if strings.TrimSpace(required[field]) == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingField, field)
		}
	}

	fecha, err := domain.NormalizeDate(req.Fecha)
	if err != nil {
		return nil, err
	}
	departure, err := domain.NormalizeTime(req.HoraPartida)
	if err != nil {
		return nil, err
	}
	duration, err := domain.ParseDuration(req.Duracion)
	if err != nil {
		return nil, err
	}
	arrival, err := domain.ArrivalTime(departure, duration)
	if err != nil {
		return nil, err
	}

	var price float64
	if req.Precio != nil {
		if price, err = domain.ParsePrice(req.Precio); err != nil {
			return nil, err
		}
	}

	class := ""
	if req.Clase != "" {
		c, err := domain.ParseSeatClass(req.Clase)
		if err != nil {
			return nil, err
		}
		class = string(c)
	}

	flight := &domain.Flight{
		NumeroVuelo:         strings.TrimSpace(req.NumeroVuelo),
		Origen:              strings.TrimSpace(req.Origen),
		Destino:             strings.TrimSpace(req.Destino),
		Fecha:               fecha,
		HoraPartida:         departure,
		HoraLlegada:         arrival,
		Duracion:            strings.TrimSpace(req.Duracion),
		Aerolinea:           strings.TrimSpace(req.Aerolinea),
		Clase:               class,
		TipoAvion:           strings.TrimSpace(req.TipoAvion),
		Puerta:              strings.TrimSpace(req.Puerta),
		Precio:              domain.Amount(price),
		Activo:              req.Activo,
		AsientosDisponibles: req.AsientosDisponibles,
	}
	flight.ApplyDefaults()

	if flight.NumeroVuelo == "" {
		existing, err := s.flightRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		flight.NumeroVuelo = domain.GenerateFlightNumber(s.now(), len(existing))
	}
	return flight, nil
}

// UpdateFlight applies a partial update. Tickets are not touched.
func (s *flightService) UpdateFlight(ctx context.Context, id string, fields map[string]interface{}) (*dto.FlightResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.flight.update")
	defer span.End()
	span.SetAttributes(attribute.String("flight_id", id))

	clean, err := domain.ValidateFlightUpdate(fields)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrMissingField)
	}

	current, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, depChanged := clean["hora_partida"]
	_, durChanged := clean["duracion"]
	if depChanged || durChanged {
		if arrival, ok := recomputeArrival(current, clean); ok {
			clean["hora_llegada"] = arrival
		}
	}

	if err := s.flightRepo.Update(ctx, id, clean); err != nil {
		span.RecordError(err)
		return nil, err
	}

	updated, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, availChanged := clean["asientos_disponibles"]
	_, occChanged := clean["asientos_ocupados"]
	if availChanged || occChanged {
		s.seed(ctx, updated)
	}

	span.SetStatus(codes.Ok, "")
	return &dto.FlightResponse{Message: "Vuelo actualizado exitosamente", Flight: updated}, nil
}

// recomputeArrival derives hora_llegada from the merged departure and
// duration. Legacy flights without a parsable duration keep their arrival.
func recomputeArrival(current *domain.Flight, clean map[string]interface{}) (string, bool) {
	departure := current.HoraPartida
	if v, ok := clean["hora_partida"].(string); ok {
		departure = v
	}
	durationText := current.Duracion
	if v, ok := clean["duracion"].(string); ok {
		durationText = v
	}
	duration, err := domain.ParseDuration(durationText)
	if err != nil {
		return "", false
	}
	arrival, err := domain.ArrivalTime(departure, duration)
	if err != nil {
		return "", false
	}
	return arrival, true
}

// DeleteFlight removes a flight. Tickets are not touched.
func (s *flightService) DeleteFlight(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.flight.delete")
	defer span.End()
	span.SetAttributes(attribute.String("flight_id", id))

	if err := s.flightRepo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if s.inventory != nil {
		if err := s.inventory.Drop(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("failed to drop seat inventory",
				zap.String("flight_id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SearchFlights finds flights by date, origin and destination. Both date
// forms are queried so flights stored before normalization are found.
func (s *flightService) SearchFlights(ctx context.Context, req *dto.SearchFlightsRequest) (*dto.FlightListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.flight.search")
	defer span.End()

	origin := strings.ToLower(strings.TrimSpace(req.Origen))
	destination := strings.ToLower(strings.TrimSpace(req.Destino))
	if origin == "" || destination == "" || strings.TrimSpace(req.Fecha) == "" {
		return nil, domain.ErrMissingField
	}

	day, err := domain.ParseDate(req.Fecha, time.UTC)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("origen", origin),
		attribute.String("destino", destination),
		attribute.String("fecha", day.Format(domain.DateLayout)),
	)

	var matches []*domain.Flight
	seen := make(map[string]bool)
	for _, fecha := range []string{day.Format(domain.DateLayout), day.Format(domain.LegacyDateLayout)} {
		flights, err := s.flightRepo.SearchByDate(ctx, fecha)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, f := range flights {
			if seen[f.ID] {
				continue
			}
			if strings.ToLower(strings.TrimSpace(f.Origen)) == origin &&
				strings.ToLower(strings.TrimSpace(f.Destino)) == destination {
				seen[f.ID] = true
				matches = append(matches, f)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].HoraPartida < matches[j].HoraPartida
	})
	return dto.NewFlightList(matches), nil
}

// ListFlights returns all flights
func (s *flightService) ListFlights(ctx context.Context) (*dto.FlightListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.flight.list")
	defer span.End()

	flights, err := s.flightRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewFlightList(flights), nil
}

// GetFlight returns one flight
func (s *flightService) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	return s.flightRepo.GetByID(ctx, id)
}

// seed replaces the fast-path inventory with the stored seat collections
func (s *flightService) seed(ctx context.Context, flight *domain.Flight) {
	if s.inventory == nil {
		return
	}
	if err := s.inventory.Seed(ctx, flight.ID, flight.AsientosDisponibles, flight.AsientosOcupados, true); err != nil {
		// bookings seed lazily when the inventory is missing
		logger.FromContext(ctx).Warn("failed to seed seat inventory",
			zap.String("flight_id", flight.ID),
			zap.Error(err),
		)
	}
}
