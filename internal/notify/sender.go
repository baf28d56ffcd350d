// Package notify turns reservation events into customer notifications.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type Notification struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a rendered notification.
type Transport interface {
	Deliver(ctx context.Context, n Notification) error
}

type Sender struct {
	transport Transport
}

// NewSender returns a sender using transport, or a log-only transport when nil.
func NewSender(transport Transport) *Sender {
	if transport == nil {
		transport = LogTransport{}
	}
	return &Sender{transport: transport}
}

func (s *Sender) Send(ctx context.Context, event domain.ReservationEvent) error {
	n, ok := Render(event)
	if !ok {
		logger.Debug(ctx, "no notification for event", "type", event.Type, "id", event.ID)
		return nil
	}
	if err := s.transport.Deliver(ctx, n); err != nil {
		return fmt.Errorf("deliver %s notification for reservation %d: %w", event.Type, event.ReservationID, err)
	}
	return nil
}

// Render builds the notification for an event. Unknown event types yield false.
func Render(event domain.ReservationEvent) (Notification, bool) {
	flights := make([]string, 0, len(event.FlightIDs))
	for _, id := range event.FlightIDs {
		flights = append(flights, fmt.Sprint(id))
	}
	legs := strings.Join(flights, ", ")

	n := Notification{To: event.Username}
	switch event.Type {
	case domain.EventReservationBooked:
		n.Subject = fmt.Sprintf("Reservation %d booked", event.ReservationID)
		n.Body = fmt.Sprintf("Reservation %d for flight(s) %s is booked and awaiting payment.", event.ReservationID, legs)
	case domain.EventReservationPaid:
		n.Subject = fmt.Sprintf("Reservation %d paid", event.ReservationID)
		n.Body = fmt.Sprintf("We received %s for reservation %d, flight(s) %s.", event.Amount.StringFixed(2), event.ReservationID, legs)
	case domain.EventReservationCancelled:
		n.Subject = fmt.Sprintf("Reservation %d cancelled", event.ReservationID)
		n.Body = fmt.Sprintf("Reservation %d for flight(s) %s was cancelled.", event.ReservationID, legs)
		if event.Amount.IsPositive() {
			n.Body += fmt.Sprintf(" %s was refunded to your balance.", event.Amount.StringFixed(2))
		}
	default:
		return Notification{}, false
	}
	return n, true
}

// LogTransport writes notifications to the structured log.
type LogTransport struct{}

func (LogTransport) Deliver(ctx context.Context, n Notification) error {
	logger.Info(ctx, "notification", "to", n.To, "subject", n.Subject, "body", n.Body)
	return nil
}
