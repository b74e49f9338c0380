package events

import (
	"context"
	"time"

	"tablebook/pkg/kafka"
	"tablebook/pkg/logger"
	"tablebook/pkg/middleware"
	"tablebook/pkg/model"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingCompleted     = "booking.completed"

	schemaVersion = "1"
	source        = "bookings"
)

type BookingEvent struct {
	Type              string              `json:"type"`
	BookingID         string              `json:"booking_id"`
	TableID           string              `json:"table_id"`
	UserID            string              `json:"user_id"`
	PartySize         int                 `json:"party_size"`
	BookingType       model.BookingType   `json:"booking_type"`
	Status            model.BookingStatus `json:"status"`
	PreviousStatus    model.BookingStatus `json:"previous_status,omitempty"`
	BookingTime       time.Time           `json:"booking_time"`
	EstimatedDuration int                 `json:"estimated_duration"`
	ActualStartTime   *time.Time          `json:"actual_start_time,omitempty"`
	ActualEndTime     *time.Time          `json:"actual_end_time,omitempty"`
	OccurredAt        time.Time           `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, previous model.BookingStatus, now time.Time) BookingEvent {
	return BookingEvent{
		Type:              eventType,
		BookingID:         b.ID,
		TableID:           b.TableID,
		UserID:            b.UserID,
		PartySize:         b.PartySize,
		BookingType:       b.Type,
		Status:            b.Status,
		PreviousStatus:    previous,
		BookingTime:       b.StartTime,
		EstimatedDuration: b.EstimatedDuration,
		ActualStartTime:   b.ActualStartTime,
		ActualEndTime:     b.ActualEndTime,
		OccurredAt:        now,
	}
}

// Publisher emits booking lifecycle events. Publishing is best effort and
// never fails the request that triggered it.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent)
}

// MessageProducer is the part of kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessageProducer
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessageProducer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) {
	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithCorrelationID(middleware.RequestID(ctx)).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, BookingEvent) {}
