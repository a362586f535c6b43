package handler

import (
	"context"
	"errors"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
)

// MockFlightService is a mock implementation of FlightService for testing
type MockFlightService struct {
	CreateFlightFunc  func(ctx context.Context, req *dto.CreateFlightRequest) (*dto.FlightResponse, error)
	UpdateFlightFunc  func(ctx context.Context, id string, fields map[string]interface{}) (*dto.FlightResponse, error)
	DeleteFlightFunc  func(ctx context.Context, id string) error
	SearchFlightsFunc func(ctx context.Context, req *dto.SearchFlightsRequest) (*dto.FlightListResponse, error)
	ListFlightsFunc   func(ctx context.Context) (*dto.FlightListResponse, error)
	GetFlightFunc     func(ctx context.Context, id string) (*domain.Flight, error)
}

func (m *MockFlightService) CreateFlight(ctx context.Context, req *dto.CreateFlightRequest) (*dto.FlightResponse, error) {
	if m.CreateFlightFunc != nil {
		return m.CreateFlightFunc(ctx, req)
	}
	return &dto.FlightResponse{Flight: &domain.Flight{ID: "flight-1"}}, nil
}

func (m *MockFlightService) UpdateFlight(ctx context.Context, id string, fields map[string]interface{}) (*dto.FlightResponse, error) {
	if m.UpdateFlightFunc != nil {
		return m.UpdateFlightFunc(ctx, id, fields)
	}
	return &dto.FlightResponse{Flight: &domain.Flight{ID: id}}, nil
}

func (m *MockFlightService) DeleteFlight(ctx context.Context, id string) error {
	if m.DeleteFlightFunc != nil {
		return m.DeleteFlightFunc(ctx, id)
	}
	return nil
}

func (m *MockFlightService) SearchFlights(ctx context.Context, req *dto.SearchFlightsRequest) (*dto.FlightListResponse, error) {
	if m.SearchFlightsFunc != nil {
		return m.SearchFlightsFunc(ctx, req)
	}
	return dto.NewFlightList(nil), nil
}

func (m *MockFlightService) ListFlights(ctx context.Context) (*dto.FlightListResponse, error) {
	if m.ListFlightsFunc != nil {
		return m.ListFlightsFunc(ctx)
	}
	return dto.NewFlightList(nil), nil
}

func (m *MockFlightService) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	if m.GetFlightFunc != nil {
		return m.GetFlightFunc(ctx, id)
	}
	return nil, domain.ErrFlightNotFound
}

// MockReservationService is a mock implementation of ReservationService for testing
type MockReservationService struct {
	BookSeatFunc         func(ctx context.Context, req *dto.BookFlightRequest) (*dto.BookFlightResponse, error)
	CancelFunc           func(ctx context.Context, code string) (*domain.Ticket, error)
	GetByCodeFunc        func(ctx context.Context, code string) (*domain.Ticket, error)
	SeatAvailabilityFunc func(ctx context.Context, flightID string) (*dto.SeatAvailabilityResponse, error)
	UpdateStatusFunc     func(ctx context.Context, code, estado string) (*domain.Ticket, error)
	ListTicketsFunc      func(ctx context.Context) (*dto.TicketListResponse, error)
}

func (m *MockReservationService) BookSeat(ctx context.Context, req *dto.BookFlightRequest) (*dto.BookFlightResponse, error) {
	if m.BookSeatFunc != nil {
		return m.BookSeatFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *MockReservationService) Cancel(ctx context.Context, code string) (*domain.Ticket, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, code)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockReservationService) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockReservationService) SeatAvailability(ctx context.Context, flightID string) (*dto.SeatAvailabilityResponse, error) {
	if m.SeatAvailabilityFunc != nil {
		return m.SeatAvailabilityFunc(ctx, flightID)
	}
	return nil, domain.ErrFlightNotFound
}

func (m *MockReservationService) UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, code, estado)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockReservationService) ListTickets(ctx context.Context) (*dto.TicketListResponse, error) {
	if m.ListTicketsFunc != nil {
		return m.ListTicketsFunc(ctx)
	}
	return &dto.TicketListResponse{Tickets: map[string]*domain.Ticket{}}, nil
}

// MockStatsService is a mock implementation of StatsService for testing
type MockStatsService struct {
	DashboardFunc   func(ctx context.Context) (*dto.DashboardResponse, error)
	FlightStatsFunc func(ctx context.Context, flightID string) (*dto.FlightStatsResponse, error)
}

func (m *MockStatsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx)
	}
	return &dto.DashboardResponse{Stats: &dto.DashboardStats{}, Flights: []*domain.Flight{}}, nil
}

func (m *MockStatsService) FlightStats(ctx context.Context, flightID string) (*dto.FlightStatsResponse, error) {
	if m.FlightStatsFunc != nil {
		return m.FlightStatsFunc(ctx, flightID)
	}
	return nil, domain.ErrFlightNotFound
}

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	LogoutFunc        func(ctx context.Context, sessionID string) error
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.AdminSession, error)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AdminSession, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	if token == "admin-token" {
		return &domain.AdminSession{ID: "session-1", Username: "admin", Role: domain.RoleAdmin}, nil
	}
	return nil, domain.ErrInvalidToken
}
