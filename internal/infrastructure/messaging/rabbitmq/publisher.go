package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

const (
	EventsExchange = "marketplace.events"
	producerName   = "marketplace-api"
	publishTimeout = 3 * time.Second
)

// Envelope is the wire format of every event published to EventsExchange.
// The routing key is the event type.
type Envelope struct {
	EventID      string          `json:"eventId"`
	EventName    string          `json:"eventName"`
	Producer     string          `json:"producer"`
	PartitionKey string          `json:"partitionKey"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Payload      json.RawMessage `json:"payload"`
}

// Publisher sends domain events to a durable topic exchange. A channel is
// not safe for concurrent publishing, so Publish is serialised.
type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher opens a channel on conn and declares the events exchange.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) Publish(ctx context.Context, ev ports.DomainEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		ev.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			AppId:        producerName,
			Body:         body,
		},
	)
}

func encodeEvent(ev ports.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	body, err := json.Marshal(Envelope{
		EventID:      ev.ID,
		EventName:    ev.Type,
		Producer:     producerName,
		PartitionKey: ev.Key,
		OccurredAt:   ev.OccurredAt.UTC(),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", ev.Type, err)
	}
	return body, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
