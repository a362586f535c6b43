package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/dto"
	"github.com/Winan03/AeroFlash-app/internal/metrics"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	"github.com/Winan03/AeroFlash-app/pkg/telemetry"
)

// ReservationService defines the interface for seat booking and tickets
type ReservationService interface {
	// BookSeat reserves one seat and issues a ticket
	BookSeat(ctx context.Context, req *dto.BookFlightRequest) (*dto.BookFlightResponse, error)

	// Cancel marks a ticket as cancelled. The seat stays occupied.
	Cancel(ctx context.Context, code string) (*domain.Ticket, error)

	// GetByCode looks a ticket up by its code
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)

	// SeatAvailability returns the stored seat collections of a flight
	SeatAvailability(ctx context.Context, flightID string) (*dto.SeatAvailabilityResponse, error)

	// UpdateStatus stores a new status, routing cancel statuses to Cancel
	UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error)

	// ListTickets returns every ticket keyed by code
	ListTickets(ctx context.Context) (*dto.TicketListResponse, error)
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	// MaxCodeAttempts bounds ticket code generation when codes collide
	MaxCodeAttempts int
}

type reservationService struct {
	flightRepo      repository.FlightRepository
	ticketRepo      repository.TicketRepository
	inventory       repository.SeatInventory
	eventPublisher  EventPublisher
	maxCodeAttempts int
	newCode         func() string
	now             func() time.Time
}

// NewReservationService creates a new reservation service. inventory may be
// nil, in which case the document store transaction is the only seat claim.
func NewReservationService(
	flightRepo repository.FlightRepository,
	ticketRepo repository.TicketRepository,
	inventory repository.SeatInventory,
	eventPublisher EventPublisher,
	cfg *ReservationServiceConfig,
) ReservationService {
	attempts := 5
	if cfg != nil && cfg.MaxCodeAttempts > 0 {
		attempts = cfg.MaxCodeAttempts
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &reservationService{
		flightRepo:      flightRepo,
		ticketRepo:      ticketRepo,
		inventory:       inventory,
		eventPublisher:  eventPublisher,
		maxCodeAttempts: attempts,
		newCode:         domain.GenerateTicketCode,
		now:             time.Now,
	}
}

// BookSeat reserves one seat and issues a ticket
func (s *reservationService) BookSeat(ctx context.Context, req *dto.BookFlightRequest) (*dto.BookFlightResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.book_seat")
	defer span.End()
	start := time.Now()

	if req == nil || req.FlightID == "" || req.Asiento == "" {
		span.SetStatus(codes.Error, "missing field")
		return nil, domain.ErrMissingField
	}
	span.SetAttributes(
		attribute.String("flight_id", req.FlightID),
		attribute.String("seat", req.Asiento),
	)

	flight, err := s.flightRepo.GetByID(ctx, req.FlightID)
	if err != nil {
		metrics.RecordBooking(outcomeFor(err), time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !flight.HasAvailableSeat(req.Asiento) {
		metrics.RecordBooking(metrics.OutcomeUnavailable, time.Since(start))
		span.SetStatus(codes.Error, "seat unavailable")
		return nil, domain.ErrSeatUnavailable
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		metrics.RecordBooking(metrics.OutcomeFailed, time.Since(start))
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("ticket_code", code))

	if err := s.claimFastPath(ctx, flight, req.Asiento, code); err != nil {
		metrics.RecordBooking(outcomeFor(err), time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booked, err := s.flightRepo.OccupySeat(ctx, flight.ID, req.Asiento)
	if err != nil {
		if domain.IsConflictError(err) {
			// the store holds the seat for another ticket, which also owns
			// the inventory entry from now on
			metrics.RecordSeatConflict("store")
		} else {
			s.releaseFastPath(ctx, flight.ID, req.Asiento, code)
		}
		metrics.RecordBooking(outcomeFor(err), time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ticket := domain.NewTicket(code, booked, req.Asiento, req.Passenger(), s.now())
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		s.compensate(ctx, flight.ID, req.Asiento, code, err)
		metrics.RecordBooking(metrics.OutcomeFailed, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store ticket %s: %w", code, err)
	}

	if err := s.eventPublisher.PublishTicketConfirmed(ctx, ticket); err != nil {
		logger.FromContext(ctx).Warn("ticket confirmed event not enqueued",
			zap.String("ticket_code", code),
			zap.Error(err),
		)
	}

	metrics.RecordBooking(metrics.OutcomeConfirmed, time.Since(start))
	span.SetStatus(codes.Ok, "")
	return &dto.BookFlightResponse{
		Message:     "Reserva exitosa",
		TicketCode:  code,
		RedirectURL: "/ticket/" + code,
	}, nil
}

// uniqueCode draws codes until one is unused
func (s *reservationService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < s.maxCodeAttempts; i++ {
		code := s.newCode()
		exists, err := s.ticketRepo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check ticket code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrTicketCodeUnavailable
}

// claimFastPath claims the seat in the inventory, seeding it from the flight
// on first use
func (s *reservationService) claimFastPath(ctx context.Context, flight *domain.Flight, seat, code string) error {
	if s.inventory == nil {
		return nil
	}

	result, err := s.inventory.Claim(ctx, flight.ID, seat, code)
	if err == nil && result.ErrorCode == repository.ClaimErrNotInitialized {
		if err = s.inventory.Seed(ctx, flight.ID, flight.AsientosDisponibles, flight.AsientosOcupados, false); err == nil {
			result, err = s.inventory.Claim(ctx, flight.ID, seat, code)
		}
	}
	if err != nil {
		// the store transaction still guards the seat
		logger.FromContext(ctx).Warn("seat inventory unavailable",
			zap.String("flight_id", flight.ID),
			zap.Error(err),
		)
		return nil
	}
	if result.Success {
		return nil
	}

	switch result.ErrorCode {
	case repository.ClaimErrSeatTaken:
		metrics.RecordSeatConflict("inventory")
		return domain.ErrSeatUnavailable
	case repository.ClaimErrSeatNotFound:
		// stale inventory, the store decides
		return nil
	default:
		return fmt.Errorf("seat claim failed: %s", result.ErrorMessage)
	}
}

func (s *reservationService) releaseFastPath(ctx context.Context, flightID, seat, code string) {
	if s.inventory == nil {
		return
	}
	if err := s.inventory.Release(ctx, flightID, seat, code); err != nil {
		logger.FromContext(ctx).Error("failed to release seat claim",
			zap.String("flight_id", flightID),
			zap.String("seat", seat),
			zap.String("ticket_code", code),
			zap.Error(err),
		)
	}
}

// compensate returns the seat after the ticket could not be written
func (s *reservationService) compensate(ctx context.Context, flightID, seat, code string, cause error) {
	metrics.Compensations.Inc()
	log := logger.FromContext(ctx)
	log.Error("ticket write failed, releasing seat",
		zap.String("flight_id", flightID),
		zap.String("seat", seat),
		zap.String("ticket_code", code),
		zap.Error(cause),
	)
	if err := s.flightRepo.ReleaseSeat(ctx, flightID, seat); err != nil {
		log.Error("failed to release seat in store",
			zap.String("flight_id", flightID),
			zap.String("seat", seat),
			zap.Error(err),
		)
	}
	s.releaseFastPath(ctx, flightID, seat, code)
}

// Cancel marks a ticket as cancelled. The seat stays occupied.
func (s *reservationService) Cancel(ctx context.Context, code string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("ticket_code", code))

	current, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if current.IsCancelled() {
		// already cancelled: no second write or event
		span.SetStatus(codes.Ok, "")
		return current, nil
	}

	ticket, err := s.ticketRepo.UpdateStatus(ctx, code, domain.StatusCancelada)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.Cancellations.Inc()

	if err := s.eventPublisher.PublishTicketCancelled(ctx, ticket); err != nil {
		logger.FromContext(ctx).Warn("ticket cancelled event not enqueued",
			zap.String("ticket_code", code),
			zap.Error(err),
		)
	}
	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetByCode looks a ticket up by its code
func (s *reservationService) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get_by_code")
	defer span.End()

	if code == "" {
		return nil, domain.ErrInvalidTicketCode
	}
	return s.ticketRepo.GetByCode(ctx, code)
}

// SeatAvailability returns the stored seat collections of a flight
func (s *reservationService) SeatAvailability(ctx context.Context, flightID string) (*dto.SeatAvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.seat_availability")
	defer span.End()

	flight, err := s.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	resp := &dto.SeatAvailabilityResponse{
		FlightID:       flight.ID,
		AvailableSeats: flight.AsientosDisponibles,
		OccupiedSeats:  flight.AsientosOcupados,
	}
	if resp.AvailableSeats == nil {
		resp.AvailableSeats = []string{}
	}
	if resp.OccupiedSeats == nil {
		resp.OccupiedSeats = []string{}
	}
	return resp, nil
}

// UpdateStatus stores a new status, routing cancel statuses to Cancel
func (s *reservationService) UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error) {
	if estado == "" {
		return nil, fmt.Errorf("%w: estado", domain.ErrMissingField)
	}
	if domain.IsCancelStatus(estado) {
		return s.Cancel(ctx, code)
	}

	ctx, span := telemetry.StartSpan(ctx, "service.reservation.update_status")
	defer span.End()
	return s.ticketRepo.UpdateStatus(ctx, code, estado)
}

// ListTickets returns every ticket keyed by code
func (s *reservationService) ListTickets(ctx context.Context) (*dto.TicketListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list_tickets")
	defer span.End()

	tickets, err := s.ticketRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = map[string]*domain.Ticket{}
	}
	return &dto.TicketListResponse{Tickets: tickets, Count: len(tickets)}, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrSeatUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, domain.ErrFlightNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeFailed
	}
}
