package repository

import (
	"context"
	"errors"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

// ErrTicketCodeTaken is returned by Create when the code is already stored
var ErrTicketCodeTaken = errors.New("ticket code already exists")

// TicketRepository defines data access for tickets
type TicketRepository interface {
	// Create stores a ticket under its code, never overwriting an existing one
	Create(ctx context.Context, ticket *domain.Ticket) error

	// Exists reports whether a ticket is stored under code
	Exists(ctx context.Context, code string) (bool, error)

	// GetByCode returns domain.ErrTicketNotFound when absent
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)

	// List returns every ticket keyed by code
	List(ctx context.Context) (map[string]*domain.Ticket, error)

	// UpdateStatus sets estado on an existing ticket and returns it
	UpdateStatus(ctx context.Context, code, estado string) (*domain.Ticket, error)
}
