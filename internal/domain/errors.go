package domain

import "errors"

// Domain errors
var (
	// Flight errors
	ErrFlightNotFound   = errors.New("flight not found")
	ErrInvalidDuration  = errors.New("invalid duration, expected format like \"2h 30m\"")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD or DD/MM/YYYY")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrInvalidPrice     = errors.New("price must be a number greater than or equal to zero")
	ErrInvalidClass     = errors.New("invalid class, expected Económica, Ejecutiva or Primera")
	ErrUnknownField     = errors.New("unknown flight field")
	ErrInvalidFieldType = errors.New("invalid field type")

	// Ticket errors
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrInvalidTicketCode     = errors.New("invalid ticket code")
	ErrSeatUnavailable       = errors.New("seat is not available")
	ErrTicketCodeUnavailable = errors.New("could not generate an unused ticket code")

	// Request errors
	ErrMissingField = errors.New("missing required field")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidDNI   = errors.New("invalid national id")

	// Admin session errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrSessionRevoked     = errors.New("session has been revoked")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFlightNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

// IsValidationError checks if the error is caused by caller input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidClass) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrInvalidFieldType) ||
		errors.Is(err, ErrInvalidTicketCode) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidDNI)
}

// IsConflictError checks if the error is a seat conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSeatUnavailable)
}

// IsUnauthorizedError checks if the error is an authentication failure
func IsUnauthorizedError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionRevoked)
}
