// Package session holds the per-connection state of a client: who is logged
// in and the itineraries of the latest search. Every operation returns the
// exact text shown to the client and never an error.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/monitoring"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/payment"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type Services struct {
	Users   users.UserUseCase
	Flights flights.FlightUseCase
	Booking booking.BookingUseCase
	Payment payment.PaymentUseCase
}

// Session is owned by a single connection and is not safe for concurrent use.
type Session struct {
	svc Services

	username string
	loggedIn bool
	// searchedLoggedIn records whether the latest search ran after login.
	searchedLoggedIn bool
	itineraries      []domain.Itinerary
}

func New(svc Services) *Session {
	return &Session{svc: svc}
}

func (s *Session) Username() string {
	return s.username
}

func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

func (s *Session) reply(command, result, text string) string {
	monitoring.TrackCommand(command, result)
	return text
}

func (s *Session) Login(ctx context.Context, username, password string) string {
	if s.loggedIn {
		return s.reply("login", resultRejected, "User already logged in\n")
	}

	user, err := s.svc.Users.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			logger.Error(ctx, "login failed", "username", username, "error", err)
			return s.reply("login", resultFailed, "Login failed\n")
		}
		return s.reply("login", resultRejected, "Login failed\n")
	}

	s.username = user.Username
	s.loggedIn = true
	return s.reply("login", resultOK, fmt.Sprintf("Logged in as %s\n", s.username))
}

func (s *Session) CreateCustomer(ctx context.Context, username, password string, balance decimal.Decimal) string {
	err := s.svc.Users.CreateCustomer(ctx, username, password, balance)
	switch {
	case err == nil:
		return s.reply("create", resultOK, fmt.Sprintf("Created user %s\n", username))
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrUserExists):
		return s.reply("create", resultRejected, "Failed to create user\n")
	default:
		logger.Error(ctx, "create customer failed", "username", username, "error", err)
		return s.reply("create", resultFailed, "Failed to create user\n")
	}
}

// Search replaces the itinerary cache with the results, numbered from 0.
func (s *Session) Search(ctx context.Context, q domain.SearchQuery) string {
	s.itineraries = nil
	s.searchedLoggedIn = s.loggedIn

	found, err := s.svc.Flights.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidSearch) {
			logger.Error(ctx, "search failed", "username", s.username, "error", err)
		}
		return s.reply("search", resultFailed, "Failed to search\n")
	}
	if len(found) == 0 {
		return s.reply("search", resultOK, "No flights match your selection\n")
	}

	s.itineraries = found
	var sb strings.Builder
	for i, it := range found {
		fmt.Fprintf(&sb, "Itinerary %d: %d flight(s), %d minutes\n", i, len(it.Legs()), it.Duration())
		writeLegs(&sb, it)
	}
	return s.reply("search", resultOK, sb.String())
}

func (s *Session) Book(ctx context.Context, index int) string {
	if !s.loggedIn {
		return s.reply("book", resultRejected, "Cannot book reservations, not logged in\n")
	}
	if !s.searchedLoggedIn {
		return s.reply("book", resultRejected, "Booking failed\n")
	}
	if index < 0 || index >= len(s.itineraries) {
		return s.reply("book", resultRejected, fmt.Sprintf("No such itinerary %d\n", index))
	}

	id, err := s.svc.Booking.Book(ctx, s.username, s.itineraries[index])
	switch {
	case err == nil:
		return s.reply("book", resultOK, fmt.Sprintf("Booked flight(s), reservation ID: %d\n", id))
	case errors.Is(err, domain.ErrScheduleConflict):
		return s.reply("book", resultRejected, "You cannot book two flights in the same day\n")
	case errors.Is(err, domain.ErrCapacityExceeded):
		return s.reply("book", resultRejected, "Booking failed\n")
	default:
		logger.Error(ctx, "booking failed", "username", s.username, "itinerary", index, "error", err)
		return s.reply("book", resultFailed, "Booking failed\n")
	}
}

func (s *Session) Reservations(ctx context.Context) string {
	if !s.loggedIn {
		return s.reply("reservations", resultRejected, "Cannot view reservations, not logged in\n")
	}

	list, err := s.svc.Booking.Reservations(ctx, s.username)
	if err != nil {
		logger.Error(ctx, "listing reservations failed", "username", s.username, "error", err)
		return s.reply("reservations", resultFailed, "Failed to retrieve reservations\n")
	}
	if len(list) == 0 {
		return s.reply("reservations", resultOK, "No reservations found\n")
	}

	var sb strings.Builder
	for _, r := range list {
		fmt.Fprintf(&sb, "Reservation %d paid: %t:\n", r.ID, r.Paid)
		writeLegs(&sb, r.Itinerary)
	}
	return s.reply("reservations", resultOK, sb.String())
}

func (s *Session) Pay(ctx context.Context, reservationID int64) string {
	if !s.loggedIn {
		return s.reply("pay", resultRejected, "Cannot pay, not logged in\n")
	}

	remaining, err := s.svc.Payment.Pay(ctx, s.username, reservationID)
	if err == nil {
		return s.reply("pay", resultOK,
			fmt.Sprintf("Paid reservation: %d remaining balance: %s\n", reservationID, remaining.StringFixed(2)))
	}

	var funds *domain.InsufficientFundsError
	switch {
	case errors.Is(err, domain.ErrReservationNotFound):
		return s.reply("pay", resultRejected,
			fmt.Sprintf("Cannot find unpaid reservation %d under user: %s\n", reservationID, s.username))
	case errors.As(err, &funds):
		return s.reply("pay", resultRejected,
			fmt.Sprintf("User has only %s in account but itinerary costs %s\n", funds.Balance.StringFixed(2), funds.Cost.String()))
	default:
		logger.Error(ctx, "payment failed", "username", s.username, "reservation_id", reservationID, "error", err)
		return s.reply("pay", resultFailed, fmt.Sprintf("Failed to pay for reservation %d\n", reservationID))
	}
}

func (s *Session) Cancel(ctx context.Context, reservationID int64) string {
	if !s.loggedIn {
		return s.reply("cancel", resultRejected, "Cannot cancel reservations, not logged in\n")
	}

	err := s.svc.Payment.Cancel(ctx, s.username, reservationID)
	switch {
	case err == nil:
		return s.reply("cancel", resultOK, fmt.Sprintf("Canceled reservation %d\n", reservationID))
	case errors.Is(err, domain.ErrReservationNotFound):
		return s.reply("cancel", resultRejected, fmt.Sprintf("Failed to cancel reservation %d\n", reservationID))
	default:
		logger.Error(ctx, "cancel failed", "username", s.username, "reservation_id", reservationID, "error", err)
		return s.reply("cancel", resultFailed, fmt.Sprintf("Failed to cancel reservation %d\n", reservationID))
	}
}

func writeLegs(sb *strings.Builder, it domain.Itinerary) {
	for _, f := range it.Legs() {
		sb.WriteString(FormatFlight(f))
		sb.WriteByte('\n')
	}
}

// FormatFlight renders one flight on a single line without a newline.
func FormatFlight(f domain.Flight) string {
	return fmt.Sprintf("ID: %d Date: %d-%d-%d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %s",
		f.ID, f.Year, f.Month, f.DayOfMonth, f.CarrierID, f.FlightNum, f.OriginCity, f.DestCity, f.Duration, f.Capacity, f.Price.String())
}
