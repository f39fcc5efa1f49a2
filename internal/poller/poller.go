// Package poller consumes order events and repairs users whose checkout
// persisted the order but failed to record it on the user document.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	r "github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const consumerGroup = "orders-reconciler"

// MessageReader is the subset of *kafka.Reader used by the poller.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Poller struct {
	users  r.UserRepository
	orders r.OrderRepository
	reader MessageReader
}

func NewPoller(users r.UserRepository, orders r.OrderRepository, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    events.OrdersTopic,
		GroupID:  consumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return NewPollerWithReader(users, orders, reader)
}

func NewPollerWithReader(users r.UserRepository, orders r.OrderRepository, reader MessageReader) *Poller {
	return &Poller{users: users, orders: orders, reader: reader}
}

// Run consumes until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			if ctx.Err() == nil {
				slog.Error("error reading message", logger.Err(err))
			}
			continue
		}
		if err := p.process(ctx, m); err != nil {
			slog.Error("failed to reconcile order event",
				slog.String("key", string(m.Key)), logger.Err(err))
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		slog.Error("error closing reader", logger.Err(err))
	}
}

func (p *Poller) process(ctx context.Context, m kafka.Message) error {
	if eventType(m) != events.OrderPlaced {
		return nil
	}

	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("error parsing message: %w", err)
	}
	userID, err := primitive.ObjectIDFromHex(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid user_id %q: %w", event.UserID, err)
	}
	orderID, err := primitive.ObjectIDFromHex(event.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order_id %q: %w", event.OrderID, err)
	}

	// Only orders that actually exist are recorded.
	order, err := p.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, r.ErrNotFound) {
			return fmt.Errorf("order %s does not exist", event.OrderID)
		}
		return err
	}

	// A cart edited after the order was placed is left alone.
	wrote, err := p.users.RecordOrder(ctx, userID, orderID, order.CreatedAt)
	if err != nil {
		return err
	}
	if wrote {
		slog.Warn("recorded order missing from user",
			slog.String(logger.UserID, event.UserID),
			slog.String(logger.OrderID, event.OrderID))
	}
	return nil
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == events.EventTypeHeader {
			return string(h.Value)
		}
	}
	return ""
}
