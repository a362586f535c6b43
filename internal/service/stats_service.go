package service

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

const (
	dashboardFlightLimit = 5
	upcomingWindowDays   = 7
	highOccupancyRate    = 80.0
	lowOccupancyRate     = 50.0
)

// StatsService computes dashboard statistics from the full collections
type StatsService interface {
	// Dashboard returns the aggregate stats and the first flights
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)

	// FlightStats details the seats and reservations of one flight
	FlightStats(ctx context.Context, flightID string) (*dto.FlightStatsResponse, error)
}

type statsService struct {
	flightRepo repository.FlightRepository
	ticketRepo repository.TicketRepository
	loc        *time.Location
	now        func() time.Time
}

// NewStatsService creates a new stats service. Calendar days are taken in loc.
func NewStatsService(flightRepo repository.FlightRepository, ticketRepo repository.TicketRepository, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{
		flightRepo: flightRepo,
		ticketRepo: ticketRepo,
		loc:        loc,
		now:        time.Now,
	}
}

// load reads both collections concurrently
func (s *statsService) load(ctx context.Context) ([]*domain.Flight, map[string]*domain.Ticket, error) {
	var (
		flights []*domain.Flight
		tickets map[string]*domain.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flights, err = s.flightRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = s.ticketRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return flights, tickets, nil
}

// Dashboard returns the aggregate stats and the first flights
func (s *statsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.stats.dashboard")
	defer span.End()

	flights, tickets, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	stats := &dto.DashboardStats{TotalFlights: len(flights)}
	today := s.today()
	for _, f := range flights {
		if f.IsActive() {
			stats.ActiveFlights++
		}
		day, err := domain.ParseDate(f.Fecha, s.loc)
		if err != nil {
			continue
		}
		days := int(math.Round(day.Sub(today).Hours() / 24))
		if days == 0 {
			stats.FlightsToday++
		}
		if days >= 0 && days <= upcomingWindowDays {
			stats.UpcomingFlights++
		}
	}

	var revenue float64
	for _, t := range tickets {
		stats.TotalReservations++
		switch domain.StatusCategory(t.Estado) {
		case domain.CategoryConfirmed:
			stats.ConfirmedReservations++
			revenue += float64(t.Precio)
		case domain.CategoryCancelled:
			stats.CancelledReservations++
		default:
			stats.PendingReservations++
		}
	}
	stats.TotalRevenue = domain.Round2(revenue)
	if stats.ConfirmedReservations > 0 {
		stats.AveragePrice = domain.Round2(revenue / float64(stats.ConfirmedReservations))
	}
	stats.Occupancy = occupancy(flights, tickets)

	first := flights
	if len(first) > dashboardFlightLimit {
		first = first[:dashboardFlightLimit]
	}
	if first == nil {
		first = []*domain.Flight{}
	}
	return &dto.DashboardResponse{Stats: stats, Flights: first}, nil
}

func (s *statsService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// belongsTo matches a ticket to a flight by id, or by flight number for
// tickets written without one
func belongsTo(t *domain.Ticket, f *domain.Flight) bool {
	if t.FlightID != "" {
		return t.FlightID == f.ID
	}
	return f.NumeroVuelo != "" && t.Vuelo.NumeroVuelo == f.NumeroVuelo
}

// occupancy counts confirmed tickets against class capacity over active flights
func occupancy(flights []*domain.Flight, tickets map[string]*domain.Ticket) dto.OccupancyStats {
	out := dto.OccupancyStats{ByFlight: []dto.FlightOccupancy{}}
	var totalSeats, occupied int
	for _, f := range flights {
		if !f.IsActive() {
			continue
		}
		capacity := f.Capacity()
		confirmed := 0
		for _, t := range tickets {
			if domain.StatusCategory(t.Estado) == domain.CategoryConfirmed && belongsTo(t, f) {
				confirmed++
			}
		}
		totalSeats += capacity
		occupied += confirmed

		rate := percent(confirmed, capacity)
		out.ByFlight = append(out.ByFlight, dto.FlightOccupancy{
			FlightID:      f.ID,
			NumeroVuelo:   f.NumeroVuelo,
			Route:         f.Origen + " → " + f.Destino,
			TotalSeats:    capacity,
			OccupiedSeats: confirmed,
			OccupancyRate: rate,
		})
		switch {
		case rate >= highOccupancyRate:
			out.HighOccupancyFlights++
		case rate < lowOccupancyRate:
			out.LowOccupancyFlights++
		}
	}
	out.OccupancyRate = percent(occupied, max(totalSeats, 1))
	return out
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return domain.Round2(float64(part) / float64(whole) * 100)
}

// FlightStats details the seats and reservations of one flight
func (s *statsService) FlightStats(ctx context.Context, flightID string) (*dto.FlightStatsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.stats.flight")
	defer span.End()

	flight, err := s.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.ticketRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &dto.FlightStatsResponse{
		Flight:       flight,
		TotalSeats:   flight.Capacity(),
		Reservations: []*domain.Ticket{},
	}
	var revenue float64
	for _, t := range tickets {
		if !belongsTo(t, flight) {
			continue
		}
		resp.Reservations = append(resp.Reservations, t)
		switch domain.StatusCategory(t.Estado) {
		case domain.CategoryConfirmed:
			resp.ConfirmedReservations++
			revenue += float64(t.Precio)
		case domain.CategoryCancelled:
			resp.CancelledReservations++
		default:
			resp.PendingReservations++
		}
	}
	sort.Slice(resp.Reservations, func(i, j int) bool {
		return resp.Reservations[i].FechaReserva < resp.Reservations[j].FechaReserva
	})
	resp.TotalReservations = len(resp.Reservations)
	resp.OccupiedSeats = resp.ConfirmedReservations
	resp.AvailableSeats = resp.TotalSeats - resp.OccupiedSeats
	resp.OccupancyRate = percent(resp.OccupiedSeats, resp.TotalSeats)
	resp.Revenue = domain.Round2(revenue)
	resp.AveragePrice = domain.Round2(revenue / float64(max(resp.OccupiedSeats, 1)))
	return resp, nil
}
