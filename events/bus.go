// Package events carries order lifecycle events from the order workflow to
// whoever wants them: the delivery notifier, the admin websocket feed and
// the optional Kafka forwarder.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topic is the bus topic every order event is published on.
const Topic = "orders"

// Event types.
const (
	OrderPlaced        = "order.placed"
	OrderCanceled      = "order.canceled"
	OrderStatusUpdated = "order.status_updated"
)

// OrderEvent describes a change to one order.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	TotalPrice     float64   `json:"total_price"`
	PaymentStatus  string    `json:"payment_status"`
	DeliveryStatus string    `json:"delivery_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Handler consumes one event. A returned error is logged; the event is
// not redelivered.
type Handler func(ctx context.Context, ev OrderEvent) error

// Bus is an in-process pub/sub for order events.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish sends ev to every current subscriber. It does not wait for them.
func (b *Bus) Publish(ctx context.Context, ev OrderEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("type", ev.Type)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

// Subscribe registers h under name and consumes events until ctx is done
// or the bus is closed. Events published before Subscribe returns are not
// delivered to h.
func (b *Bus) Subscribe(ctx context.Context, name string, h Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}
	go func() {
		for msg := range messages {
			var ev OrderEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("Dropping malformed order event", "subscriber", name, "message_id", msg.UUID, "err", err)
				msg.Ack()
				continue
			}
			if err := h(msg.Context(), ev); err != nil {
				b.logger.Warn("Order event handler failed", "subscriber", name, "type", ev.Type, "order_id", ev.OrderID, "err", err)
			}
			msg.Ack()
		}
		b.logger.Debug("Order event subscriber stopped", "subscriber", name)
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
