package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type PaymentUseCase interface {
	Pay(ctx context.Context, username string, reservationID int64) (decimal.Decimal, error)
	Cancel(ctx context.Context, username string, reservationID int64) error
}

type PaymentService struct {
	flights      repository.FlightRepository
	reservations repository.ReservationRepository
	users        repository.UserRepository
	txc          *tx.Controller
	events       *events.Emitter
}

type PaymentServiceOption func(*PaymentService)

func WithEvents(e *events.Emitter) PaymentServiceOption {
	return func(s *PaymentService) {
		s.events = e
	}
}

func NewPaymentService(
	flights repository.FlightRepository,
	reservations repository.ReservationRepository,
	users repository.UserRepository,
	txc *tx.Controller,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		flights:      flights,
		reservations: reservations,
		users:        users,
		txc:          txc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pay charges the full itinerary price to the owner's balance and marks the
// reservation paid. It returns the remaining balance.
//
// A missing, foreign or already paid reservation is ErrReservationNotFound.
// A balance below the cost is *domain.InsufficientFundsError and nothing changes.
func (s *PaymentService) Pay(ctx context.Context, username string, reservationID int64) (decimal.Decimal, error) {
	var (
		remaining   decimal.Decimal
		cost        decimal.Decimal
		reservation *domain.Reservation
	)

	err := s.txc.Do(ctx, "pay", func(ctx context.Context) error {
		var err error
		reservation, err = s.reservations.GetForUser(ctx, reservationID, username)
		if err != nil {
			return err
		}
		if reservation.Paid {
			return domain.ErrReservationNotFound
		}

		it, err := repository.LoadItinerary(ctx, s.flights, *reservation)
		if err != nil {
			return err
		}
		cost = it.Cost()

		user, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(cost) {
			return &domain.InsufficientFundsError{Balance: user.Balance, Cost: cost}
		}

		remaining, err = s.users.AdjustBalance(ctx, username, cost.Neg())
		if err != nil {
			return err
		}
		return s.reservations.MarkPaid(ctx, reservationID)
	})
	if err != nil {
		return decimal.Zero, err
	}

	logger.Info(ctx, "reservation paid", "username", username, "reservation_id", reservationID, "cost", cost.String())
	reservation.Paid = true
	s.events.Emit(ctx, domain.EventReservationPaid, *reservation, cost)
	return remaining, nil
}

// Cancel deletes the user's reservation, refunding it first when it was paid.
// The reservation id is never handed out again.
func (s *PaymentService) Cancel(ctx context.Context, username string, reservationID int64) error {
	var (
		refund      decimal.Decimal
		reservation *domain.Reservation
	)

	err := s.txc.Do(ctx, "cancel", func(ctx context.Context) error {
		refund = decimal.Zero

		var err error
		reservation, err = s.reservations.GetForUser(ctx, reservationID, username)
		if err != nil {
			return err
		}

		if reservation.Paid {
			it, err := repository.LoadItinerary(ctx, s.flights, *reservation)
			if err != nil {
				return err
			}
			refund = it.Cost()
			if _, err := s.users.AdjustBalance(ctx, username, refund); err != nil {
				return err
			}
		}
		return s.reservations.Delete(ctx, reservationID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "reservation cancelled", "username", username, "reservation_id", reservationID, "refund", refund.String())
	s.events.Emit(ctx, domain.EventReservationCancelled, *reservation, refund)
	return nil
}

var _ PaymentUseCase = (*PaymentService)(nil)
