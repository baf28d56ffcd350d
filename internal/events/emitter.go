// Package events publishes reservation changes to a message broker once the
// transaction that made them has committed.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

// Producer is implemented by the Kafka and RabbitMQ publishers.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Emitter struct {
	producer           Producer
	reservationTopic   string
	notificationsTopic string
	now                func() time.Time
}

type EmitterOption func(*Emitter)

func WithNotificationsTopic(topic string) EmitterOption {
	return func(e *Emitter) {
		e.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) {
		e.now = now
	}
}

// NewEmitter returns an emitter publishing to reservationTopic. A nil producer
// or an empty topic disables publishing.
func NewEmitter(producer Producer, reservationTopic string, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		producer:         producer,
		reservationTopic: reservationTopic,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit publishes the event. Broker failures are logged and never undo the
// committed change.
func (e *Emitter) Emit(ctx context.Context, typ domain.EventType, r domain.Reservation, amount decimal.Decimal) {
	if e == nil || e.producer == nil || e.reservationTopic == "" {
		return
	}

	event := domain.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		ReservationID: r.ID,
		Username:      r.Username,
		FlightIDs:     r.FlightIDs(),
		Amount:        amount,
		OccurredAt:    e.now().UTC(),
	}
	key := strconv.FormatInt(r.ID, 10)

	if err := e.producer.Publish(ctx, e.reservationTopic, key, event); err != nil {
		logger.Warn(ctx, "failed to publish reservation event", "type", typ, "reservation_id", r.ID, "error", err)
		return
	}
	if e.notificationsTopic != "" {
		if err := e.producer.Publish(ctx, e.notificationsTopic, key, event); err != nil {
			logger.Warn(ctx, "failed to publish notification event", "type", typ, "reservation_id", r.ID, "error", err)
		}
	}
}
