package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// Every method below runs inside the transaction carried by ctx when there is
// one, and as a standalone statement otherwise.

type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// SearchDirect returns at most limit flights ordered by duration, then id.
	SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error)
	// SearchOneStop returns at most limit connecting pairs on the same day,
	// ordered by summed duration, then first id, then second id.
	SearchOneStop(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error)
}

type ReservationRepository interface {
	// CountByFlight counts reservations that use the flight as either leg.
	CountByFlight(ctx context.Context, flightID int64) (int, error)
	// CountOnDay counts the user's reservations whose flights fall on the day of month.
	CountOnDay(ctx context.Context, username string, dayOfMonth int) (int, error)
	ListByUser(ctx context.Context, username string) ([]domain.Reservation, error)
	// GetForUser returns ErrReservationNotFound when the id does not exist or
	// belongs to somebody else.
	GetForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error)
	// NextID increments the reservation counter and returns the new value.
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, r *domain.Reservation) error
	MarkPaid(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	// Create returns ErrUserExists when the username is taken.
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// AdjustBalance adds delta to the balance and returns the new balance.
	AdjustBalance(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error)
}

// Maintenance resets mutable tables. The flights table is left untouched.
type Maintenance interface {
	ClearTables(ctx context.Context) error
}

// LoadItinerary resolves the flights a reservation refers to.
func LoadItinerary(ctx context.Context, flights FlightRepository, r domain.Reservation) (domain.Itinerary, error) {
	first, err := flights.GetByID(ctx, r.FirstFlightID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	if r.SecondFlightID == nil {
		return domain.Direct(*first), nil
	}
	second, err := flights.GetByID(ctx, *r.SecondFlightID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	return domain.OneStop(*first, *second), nil
}
