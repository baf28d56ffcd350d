package booking

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type BookingUseCase interface {
	Book(ctx context.Context, username string, itinerary domain.Itinerary) (int64, error)
	Reservations(ctx context.Context, username string) ([]domain.ReservationDetails, error)
}

type BookingService struct {
	flights      repository.FlightRepository
	reservations repository.ReservationRepository
	txc          *tx.Controller
	events       *events.Emitter
}

type BookingServiceOption func(*BookingService)

func WithEvents(e *events.Emitter) BookingServiceOption {
	return func(s *BookingService) {
		s.events = e
	}
}

func NewBookingService(
	flights repository.FlightRepository,
	reservations repository.ReservationRepository,
	txc *tx.Controller,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		flights:      flights,
		reservations: reservations,
		txc:          txc,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves every leg of the itinerary for the user and returns the new
// reservation id. Capacity and same-day checks, the id allocation and the
// insert share one transaction, which is replayed from the first read when
// it conflicts with a concurrent booking.
func (s *BookingService) Book(ctx context.Context, username string, itinerary domain.Itinerary) (int64, error) {
	var reservation domain.Reservation

	err := s.txc.Do(ctx, "book", func(ctx context.Context) error {
		for _, leg := range itinerary.Legs() {
			flight, err := s.flights.GetByID(ctx, leg.ID)
			if err != nil {
				return err
			}
			booked, err := s.reservations.CountByFlight(ctx, leg.ID)
			if err != nil {
				return err
			}
			if flight.Capacity-booked < 1 {
				return domain.ErrCapacityExceeded
			}
		}

		sameDay, err := s.reservations.CountOnDay(ctx, username, itinerary.Day())
		if err != nil {
			return err
		}
		if sameDay > 0 {
			return domain.ErrScheduleConflict
		}

		id, err := s.reservations.NextID(ctx)
		if err != nil {
			return err
		}
		reservation = domain.NewReservation(id, username, itinerary)
		return s.reservations.Create(ctx, &reservation)
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "reservation booked", "username", username, "reservation_id", reservation.ID)
	s.events.Emit(ctx, domain.EventReservationBooked, reservation, decimal.Zero)
	return reservation.ID, nil
}

// Reservations lists the user's reservations by id with their flights
// resolved, read from one consistent snapshot.
func (s *BookingService) Reservations(ctx context.Context, username string) ([]domain.ReservationDetails, error) {
	var details []domain.ReservationDetails

	err := s.txc.Do(ctx, "reservations", func(ctx context.Context) error {
		list, err := s.reservations.ListByUser(ctx, username)
		if err != nil {
			return err
		}

		details = make([]domain.ReservationDetails, 0, len(list))
		for _, r := range list {
			it, err := repository.LoadItinerary(ctx, s.flights, r)
			if err != nil {
				return err
			}
			details = append(details, domain.ReservationDetails{Reservation: r, Itinerary: it})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

var _ BookingUseCase = (*BookingService)(nil)
