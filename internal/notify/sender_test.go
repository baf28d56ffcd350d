package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Deliver(ctx context.Context, n Notification) error {
	return m.Called(ctx, n).Error(0)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		event   domain.ReservationEvent
		subject string
		body    string
	}{
		{
			name:    "booked",
			event:   domain.ReservationEvent{Type: domain.EventReservationBooked, ReservationID: 4, Username: "alice", FlightIDs: []int64{1, 2}},
			subject: "Reservation 4 booked",
			body:    "Reservation 4 for flight(s) 1, 2 is booked and awaiting payment.",
		},
		{
			name:    "paid",
			event:   domain.ReservationEvent{Type: domain.EventReservationPaid, ReservationID: 4, Username: "alice", FlightIDs: []int64{1}, Amount: decimal.RequireFromString("99.5")},
			subject: "Reservation 4 paid",
			body:    "We received 99.50 for reservation 4, flight(s) 1.",
		},
		{
			name:    "cancelled with refund",
			event:   domain.ReservationEvent{Type: domain.EventReservationCancelled, ReservationID: 4, Username: "alice", FlightIDs: []int64{1}, Amount: decimal.NewFromInt(10)},
			subject: "Reservation 4 cancelled",
			body:    "Reservation 4 for flight(s) 1 was cancelled. 10.00 was refunded to your balance.",
		},
		{
			name:    "cancelled unpaid",
			event:   domain.ReservationEvent{Type: domain.EventReservationCancelled, ReservationID: 4, Username: "alice", FlightIDs: []int64{1}},
			subject: "Reservation 4 cancelled",
			body:    "Reservation 4 for flight(s) 1 was cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Render(tt.event)
			assert.True(t, ok)
			assert.Equal(t, "alice", n.To)
			assert.Equal(t, tt.subject, n.Subject)
			assert.Equal(t, tt.body, n.Body)
		})
	}

	_, ok := Render(domain.ReservationEvent{Type: "seat_upgraded"})
	assert.False(t, ok)
}

func TestSender_Send(t *testing.T) {
	transport := &MockTransport{}
	sender := NewSender(transport)
	ctx := context.Background()

	transport.On("Deliver", ctx, mock.MatchedBy(func(n Notification) bool { return n.To == "bob" })).Return(nil).Once()

	err := sender.Send(ctx, domain.ReservationEvent{Type: domain.EventReservationBooked, ReservationID: 1, Username: "bob"})
	assert.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestSender_SendFailure(t *testing.T) {
	transport := &MockTransport{}
	sender := NewSender(transport)
	ctx := context.Background()

	transport.On("Deliver", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

	err := sender.Send(ctx, domain.ReservationEvent{Type: domain.EventReservationPaid, ReservationID: 1, Username: "bob"})
	assert.ErrorContains(t, err, "smtp down")
}

func TestSender_SkipsUnknownEvents(t *testing.T) {
	transport := &MockTransport{}
	sender := NewSender(transport)

	assert.NoError(t, sender.Send(context.Background(), domain.ReservationEvent{Type: "other"}))
	transport.AssertNotCalled(t, "Deliver")
}
