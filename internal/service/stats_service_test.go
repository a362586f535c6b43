package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

func statsFixture() ([]*domain.Flight, map[string]*domain.Ticket) {
	inactive := false
	flights := []*domain.Flight{
		{ID: "f1", NumeroVuelo: "AF1", Origen: "Lima", Destino: "Cusco", Fecha: "2026-10-18", Clase: "Primera"},
		{ID: "f2", NumeroVuelo: "AF2", Origen: "Lima", Destino: "Piura", Fecha: "25/10/2026", Clase: "Económica"},
		{ID: "f3", NumeroVuelo: "AF3", Origen: "Cusco", Destino: "Lima", Fecha: "2026-10-26", Clase: "Ejecutiva"},
		{ID: "f4", NumeroVuelo: "AF4", Origen: "Lima", Destino: "Tacna", Fecha: "2026-10-17", Activo: &inactive},
		{ID: "f5", NumeroVuelo: "AF5", Origen: "Lima", Destino: "Iquitos", Fecha: "sin fecha"},
		{ID: "f6", NumeroVuelo: "AF6", Origen: "Lima", Destino: "Tumbes", Fecha: "2026-10-19"},
	}
	tickets := map[string]*domain.Ticket{}
	// 13 confirmed on the 16 seat flight
	for i := 0; i < 13; i++ {
		code := fmt.Sprintf("AF%04dAA", i)
		tickets[code] = &domain.Ticket{CodigoTicket: code, FlightID: "f1", Estado: "Confirmado", Precio: 100}
	}
	tickets["AF1000CC"] = &domain.Ticket{CodigoTicket: "AF1000CC", FlightID: "f1", Estado: "Cancelada", Precio: 100}
	tickets["AF1001CC"] = &domain.Ticket{CodigoTicket: "AF1001CC", FlightID: "f2", Estado: "cancelado", Precio: 80}
	tickets["AF1002PP"] = &domain.Ticket{CodigoTicket: "AF1002PP", FlightID: "f2", Estado: "Pendiente", Precio: 80}
	// legacy ticket without flight_id, matched by flight number
	tickets["AF1003LL"] = &domain.Ticket{CodigoTicket: "AF1003LL", Vuelo: domain.FlightSnapshot{NumeroVuelo: "AF2"}, Estado: "CONFIRMADO", Precio: 50.55}
	return flights, tickets
}

func newTestStatsService(flights []*domain.Flight, tickets map[string]*domain.Ticket) *statsService {
	fr := &MockFlightRepository{
		ListFunc: func(ctx context.Context) ([]*domain.Flight, error) { return flights, nil },
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Flight, error) {
			for _, f := range flights {
				if f.ID == id {
					return f, nil
				}
			}
			return nil, domain.ErrFlightNotFound
		},
	}
	tr := &MockTicketRepository{
		ListFunc: func(ctx context.Context) (map[string]*domain.Ticket, error) { return tickets, nil },
	}
	loc := time.FixedZone("PET", -5*3600)
	svc := NewStatsService(fr, tr, loc).(*statsService)
	// 2026-10-18 23:30 in Lima, already the 19th in UTC
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 4, 30, 0, 0, time.UTC) }
	return svc
}

func TestStatsService_Dashboard(t *testing.T) {
	flights, tickets := statsFixture()
	svc := newTestStatsService(flights, tickets)

	resp, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	s := resp.Stats

	assert.Equal(t, 6, s.TotalFlights)
	assert.Equal(t, 5, s.ActiveFlights)
	assert.Equal(t, 17, s.TotalReservations)
	assert.Equal(t, 14, s.ConfirmedReservations)
	assert.Equal(t, 2, s.CancelledReservations)
	assert.Equal(t, 1, s.PendingReservations)
	assert.Equal(t, 1350.55, s.TotalRevenue)
	assert.Equal(t, 96.47, s.AveragePrice)
	assert.Equal(t, 1, s.FlightsToday)
	// 18th, 19th and 25th are inside the window, the 26th is not
	assert.Equal(t, 3, s.UpcomingFlights)

	assert.Len(t, resp.Flights, 5)
}

func TestStatsService_Dashboard_Occupancy(t *testing.T) {
	flights, tickets := statsFixture()
	svc := newTestStatsService(flights, tickets)

	resp, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	occ := resp.Stats.Occupancy

	// inactive AF4 is excluded
	require.Len(t, occ.ByFlight, 5)
	byNumber := map[string]float64{}
	for _, f := range occ.ByFlight {
		byNumber[f.NumeroVuelo] = f.OccupancyRate
	}
	assert.Equal(t, 81.25, byNumber["AF1"])
	assert.Equal(t, 0.83, byNumber["AF2"])
	assert.Equal(t, 0.0, byNumber["AF3"])
	assert.Equal(t, 1, occ.HighOccupancyFlights)
	assert.Equal(t, 4, occ.LowOccupancyFlights)

	// 14 confirmed over 16+120+32+120+120 seats
	assert.Equal(t, 3.43, occ.OccupancyRate)
}

func TestStatsService_Occupancy_SharedFlightNumber(t *testing.T) {
	flights := []*domain.Flight{
		{ID: "morning", NumeroVuelo: "AF10301", Origen: "Lima", Destino: "Cusco", Fecha: "2026-10-20", Clase: "Primera"},
		{ID: "evening", NumeroVuelo: "AF10301", Origen: "Lima", Destino: "Cusco", Fecha: "2026-10-21", Clase: "Primera"},
	}
	tickets := map[string]*domain.Ticket{
		"AF0001AA": {CodigoTicket: "AF0001AA", FlightID: "morning", Vuelo: domain.FlightSnapshot{NumeroVuelo: "AF10301"}, Estado: "Confirmado"},
		"AF0002AA": {CodigoTicket: "AF0002AA", FlightID: "morning", Vuelo: domain.FlightSnapshot{NumeroVuelo: "AF10301"}, Estado: "Confirmado"},
		// written before flight ids were recorded: matched by number
		"AF0003AA": {CodigoTicket: "AF0003AA", Vuelo: domain.FlightSnapshot{NumeroVuelo: "AF10301"}, Estado: "Confirmado"},
	}
	svc := newTestStatsService(flights, tickets)

	resp, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	occupied := map[string]int{}
	for _, f := range resp.Stats.Occupancy.ByFlight {
		occupied[f.FlightID] = f.OccupiedSeats
	}
	assert.Equal(t, 3, occupied["morning"])
	assert.Equal(t, 1, occupied["evening"])
}

func TestStatsService_Dashboard_Empty(t *testing.T) {
	svc := newTestStatsService(nil, nil)

	resp, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Stats.TotalFlights)
	assert.Equal(t, 0.0, resp.Stats.AveragePrice)
	assert.Equal(t, 0.0, resp.Stats.Occupancy.OccupancyRate)
	assert.NotNil(t, resp.Flights)
}

func TestStatsService_Dashboard_RepositoryError(t *testing.T) {
	fr := &MockFlightRepository{
		ListFunc: func(ctx context.Context) ([]*domain.Flight, error) { return nil, errors.New("store down") },
	}
	svc := NewStatsService(fr, &MockTicketRepository{}, nil)

	_, err := svc.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestStatsService_FlightStats(t *testing.T) {
	flights, tickets := statsFixture()
	svc := newTestStatsService(flights, tickets)

	resp, err := svc.FlightStats(context.Background(), "f2")
	require.NoError(t, err)
	assert.Equal(t, 120, resp.TotalSeats)
	assert.Equal(t, 3, resp.TotalReservations)
	assert.Equal(t, 1, resp.ConfirmedReservations)
	assert.Equal(t, 1, resp.CancelledReservations)
	assert.Equal(t, 1, resp.PendingReservations)
	assert.Equal(t, 1, resp.OccupiedSeats)
	assert.Equal(t, 119, resp.AvailableSeats)
	assert.Equal(t, 50.55, resp.Revenue)
	assert.Equal(t, 50.55, resp.AveragePrice)
	assert.Equal(t, 0.83, resp.OccupancyRate)

	empty, err := svc.FlightStats(context.Background(), "f3")
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.AveragePrice)
	assert.NotNil(t, empty.Reservations)

	_, err = svc.FlightStats(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}
