package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/contactdesk/leadgate/internal/core/ports"
)

// leadEvent is the JSON payload published for every lead lifecycle change.
type leadEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	LeadID         string    `json:"lead_id"`
	RequestType    string    `json:"request_type"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Email          string    `json:"email"`
}

// messageWriter is the subset of *kafka.Writer used by EventPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes lead events to a Kafka topic keyed by lead id, so
// one lead's events land on one partition in order.
type EventPublisher struct {
	w messageWriter
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	return &EventPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *EventPublisher) Send(ctx context.Context, n ports.Notification) error {
	if n.Kind != ports.NotifyEvent {
		return fmt.Errorf("event publisher: unsupported notification kind %q", n.Kind)
	}

	data, err := json.Marshal(leadEvent{
		ID:             n.ID,
		Type:           n.Event,
		OccurredAt:     n.OccurredAt.UTC(),
		LeadID:         n.Lead.ID,
		RequestType:    string(n.Lead.RequestType),
		Status:         string(n.Lead.Status),
		PreviousStatus: string(n.PrevStatus),
		Email:          n.Lead.Email,
	})
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", n.Event, err)
	}

	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(n.Lead.ID), Value: data}); err != nil {
		return fmt.Errorf("kafka: write %s: %w", n.Event, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.w.Close()
}
