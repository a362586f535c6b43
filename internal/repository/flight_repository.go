package repository

import (
	"context"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

// FlightRepository defines data access for scheduled flights
type FlightRepository interface {
	// Create stores a new flight and sets its ID
	Create(ctx context.Context, flight *domain.Flight) error

	// GetByID returns domain.ErrFlightNotFound when absent
	GetByID(ctx context.Context, id string) (*domain.Flight, error)

	// List returns all flights in creation order
	List(ctx context.Context) ([]*domain.Flight, error)

	// SearchByDate returns the flights of one canonical date
	SearchByDate(ctx context.Context, fecha string) ([]*domain.Flight, error)

	// Update merges validated fields into an existing flight
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// Delete removes a flight
	Delete(ctx context.Context, id string) error

	// OccupySeat atomically moves seat from available to occupied and
	// returns the flight after the change. Fails with
	// domain.ErrSeatUnavailable when the seat is not available.
	OccupySeat(ctx context.Context, id, seat string) (*domain.Flight, error)

	// ReleaseSeat atomically returns an occupied seat to the available set
	ReleaseSeat(ctx context.Context, id, seat string) error
}
