package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventReservationBooked    EventType = "reservation_booked"
	EventReservationPaid      EventType = "reservation_paid"
	EventReservationCancelled EventType = "reservation_cancelled"
)

// ReservationEvent is published after a reservation change has committed.
// Amount is the charge for a payment and the refund for a cancellation.
type ReservationEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	ReservationID int64           `json:"reservation_id"`
	Username      string          `json:"username"`
	FlightIDs     []int64         `json:"flight_ids"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
