package service

import (
	"context"
	"sync"
	"time"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/repository"
)

// MockFlightRepository is a mock implementation of FlightRepository
type MockFlightRepository struct {
	CreateFunc       func(ctx context.Context, flight *domain.Flight) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Flight, error)
	ListFunc         func(ctx context.Context) ([]*domain.Flight, error)
	SearchByDateFunc func(ctx context.Context, fecha string) ([]*domain.Flight, error)
	UpdateFunc       func(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteFunc       func(ctx context.Context, id string) error
	OccupySeatFunc   func(ctx context.Context, id, seat string) (*domain.Flight, error)
	ReleaseSeatFunc  func(ctx context.Context, id, seat string) error
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, flight)
	}
	flight.ID = "flight-1"
	return nil
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrFlightNotFound
}

func (m *MockFlightRepository) List(ctx context.Context) ([]*domain.Flight, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.Flight{}, nil
}

func (m *MockFlightRepository) SearchByDate(ctx context.Context, fecha string) ([]*domain.Flight, error) {
	if m.SearchByDateFunc != nil {
		return m.SearchByDateFunc(ctx, fecha)
	}
	return []*domain.Flight{}, nil
}

func (m *MockFlightRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	return nil
}

func (m *MockFlightRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockFlightRepository) OccupySeat(ctx context.Context, id, seat string) (*domain.Flight, error) {
	if m.OccupySeatFunc != nil {
		return m.OccupySeatFunc(ctx, id, seat)
	}
	return nil, domain.ErrSeatUnavailable
}

func (m *MockFlightRepository) ReleaseSeat(ctx context.Context, id, seat string) error {
	if m.ReleaseSeatFunc != nil {
		return m.ReleaseSeatFunc(ctx, id, seat)
	}
	return nil
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	CreateFunc       func(ctx context.Context, ticket *domain.Ticket) error
	ExistsFunc       func(ctx context.Context, code string) (bool, error)
	GetByCodeFunc    func(ctx context.Context, code string) (*domain.Ticket, error)
	ListFunc         func(ctx context.Context) (map[string]*domain.Ticket, error)
	UpdateStatusFunc func(ctx context.Context, code, estado string) (*domain.Ticket, error)
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ticket)
	}
	return nil
}

func (m *MockTicketRepository) Exists(ctx context.Context, code string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, code)
	}
	return false, nil
}

func (m *MockTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, domain.ErrTicketNotFound
}

func (m *MockTicketRepository) List(ctx context.Context) (map[string]*domain.Ticket, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return map[string]*domain.Ticket{}, nil
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, code, estado)
	}
	return nil, domain.ErrTicketNotFound
}

// MockSeatInventory records calls and delegates to the Func fields
type MockSeatInventory struct {
	SeedFunc    func(ctx context.Context, flightID string, available, occupied []string, replace bool) error
	ClaimFunc   func(ctx context.Context, flightID, seat, code string) (*repository.ClaimResult, error)
	ReleaseFunc func(ctx context.Context, flightID, seat, code string) error
	DropFunc    func(ctx context.Context, flightID string) error

	mu       sync.Mutex
	Seeds    int
	Releases int
	Drops    int
}

func (m *MockSeatInventory) Seed(ctx context.Context, flightID string, available, occupied []string, replace bool) error {
	m.mu.Lock()
	m.Seeds++
	m.mu.Unlock()
	if m.SeedFunc != nil {
		return m.SeedFunc(ctx, flightID, available, occupied, replace)
	}
	return nil
}

func (m *MockSeatInventory) Claim(ctx context.Context, flightID, seat, code string) (*repository.ClaimResult, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, flightID, seat, code)
	}
	return &repository.ClaimResult{Success: true}, nil
}

func (m *MockSeatInventory) Release(ctx context.Context, flightID, seat, code string) error {
	m.mu.Lock()
	m.Releases++
	m.mu.Unlock()
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, flightID, seat, code)
	}
	return nil
}

func (m *MockSeatInventory) Drop(ctx context.Context, flightID string) error {
	m.mu.Lock()
	m.Drops++
	m.mu.Unlock()
	if m.DropFunc != nil {
		return m.DropFunc(ctx, flightID)
	}
	return nil
}

// MockEventPublisher collects published tickets
type MockEventPublisher struct {
	Err       error
	mu        sync.Mutex
	Confirmed []*domain.Ticket
	Cancelled []*domain.Ticket
}

func (m *MockEventPublisher) PublishTicketConfirmed(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmed = append(m.Confirmed, ticket)
	return m.Err
}

func (m *MockEventPublisher) PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled = append(m.Cancelled, ticket)
	return m.Err
}

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	CreateFunc func(ctx context.Context, msg *domain.OutboxMessage) error
}

func (m *MockOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	return nil
}

func (m *MockOutboxRepository) ProcessPending(ctx context.Context, limit int, publish repository.PublishFunc) (*repository.OutboxResult, error) {
	return &repository.OutboxResult{}, nil
}

func (m *MockOutboxRepository) RequeueFailed(ctx context.Context, limit int) (int64, error) {
	return 0, nil
}

func (m *MockOutboxRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// MockSessionRepository keeps sessions in a map
type MockSessionRepository struct {
	SaveErr  error
	mu       sync.Mutex
	sessions map[string]*domain.AdminSession
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.AdminSession)}
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.AdminSession) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*domain.AdminSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionRevoked
	}
	return s, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// testFlight returns an active Económica flight with seats 1A, 1B and 1C
func testFlight() *domain.Flight {
	active := true
	return &domain.Flight{
		ID:                  "flight-1",
		NumeroVuelo:         "AF10301",
		Origen:              "Lima",
		Destino:             "Cusco",
		Fecha:               "2026-10-20",
		HoraPartida:         "10:30",
		HoraLlegada:         "11:45",
		Duracion:            "1h 15m",
		Aerolinea:           "AeroFlash",
		Clase:               "Económica",
		TipoAvion:           "Boeing 737",
		Puerta:              "TBD",
		Precio:              250.5,
		Activo:              &active,
		AsientosDisponibles: []string{"1A", "1B", "1C"},
	}
}
