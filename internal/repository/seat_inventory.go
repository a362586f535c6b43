package repository

import "context"

// Seat states in the fast-path inventory besides a holder's ticket code
const (
	SeatStateAvailable = "available"
	SeatStateOccupied  = "occupied"
)

// ClaimResult is the outcome of a fast-path seat claim
type ClaimResult struct {
	Success      bool
	ErrorCode    string
	ErrorMessage string
}

// Claim error codes returned by the inventory
const (
	ClaimErrNotInitialized = "NOT_INITIALIZED"
	ClaimErrSeatNotFound   = "SEAT_NOT_FOUND"
	ClaimErrSeatTaken      = "SEAT_TAKEN"
	ClaimErrNotHolder      = "NOT_HOLDER"
)

// SeatInventory is the per-seat claim index kept in front of the document
// store. It rejects most conflicting bookings before they reach the store
// transaction.
type SeatInventory interface {
	// Seed loads the seat states of a flight. With replace=false an existing
	// inventory is kept.
	Seed(ctx context.Context, flightID string, available, occupied []string, replace bool) error

	// Claim marks an available seat as held by code
	Claim(ctx context.Context, flightID, seat, code string) (*ClaimResult, error)

	// Release returns a seat held by code to available
	Release(ctx context.Context, flightID, seat, code string) error

	// Drop removes the inventory of a flight
	Drop(ctx context.Context, flightID string) error
}
