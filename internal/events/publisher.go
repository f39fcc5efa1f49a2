package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	OrdersTopic     = "order-events"
	EventTypeHeader = "event_type"
	OrderPlaced     = "order.placed"
)

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  OrdersTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w)
}

func NewPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := domain.OrderPlacedEvent{
		EventID:  uuid.NewString(),
		OrderID:  order.ID.Hex(),
		UserID:   order.User.Hex(),
		Price:    order.Price,
		PlacedAt: p.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		// keyed by user so a user's events stay ordered
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(OrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }
func (NoopPublisher) Close() error                                             { return nil }
