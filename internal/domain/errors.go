package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotAuthenticated    = errors.New("not logged in")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidUser         = errors.New("invalid user data")
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidSearch       = errors.New("invalid search query")
	ErrItineraryNotFound   = errors.New("no such itinerary")
	ErrFlightNotFound      = errors.New("flight not found")
	ErrCapacityExceeded    = errors.New("flight is full")
	ErrScheduleConflict    = errors.New("reservation already exists on that day")
	ErrReservationNotFound = errors.New("reservation not found")
)

// InsufficientFundsError is returned when a balance cannot cover a payment.
type InsufficientFundsError struct {
	Balance decimal.Decimal
	Cost    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, cost %s", e.Balance.StringFixed(2), e.Cost.String())
}
