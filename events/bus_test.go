package events

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan OrderEvent, 1)
	second := make(chan OrderEvent, 1)
	require.NoError(t, bus.Subscribe(ctx, "first", func(_ context.Context, ev OrderEvent) error {
		first <- ev
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx, "second", func(_ context.Context, ev OrderEvent) error {
		second <- ev
		return errors.New("handler errors are only logged")
	}))

	require.NoError(t, bus.Publish(ctx, OrderEvent{Type: OrderPlaced, OrderID: "abc", Quantity: 3, TotalPrice: 150}))

	for _, ch := range []chan OrderEvent{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, OrderPlaced, ev.Type)
			assert.Equal(t, "abc", ev.OrderID)
			assert.Equal(t, 3, ev.Quantity)
			assert.False(t, ev.OccurredAt.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := newTestBus(t)
	assert.NoError(t, bus.Publish(context.Background(), OrderEvent{Type: OrderCanceled}))
}

type fakeWriter struct {
	msgs   []kafkaGo.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaForwarder(t *testing.T) {
	w := &fakeWriter{}
	f := &KafkaForwarder{writer: w}

	require.NoError(t, f.Forward(context.Background(), OrderEvent{Type: OrderStatusUpdated, OrderID: "o1", DeliveryStatus: "Delivered"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "o1", string(w.msgs[0].Key))
	assert.Contains(t, string(w.msgs[0].Value), `"delivery_status":"Delivered"`)
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, OrderStatusUpdated, string(w.msgs[0].Headers[0].Value))

	w.err = errors.New("broker down")
	assert.ErrorContains(t, f.Forward(context.Background(), OrderEvent{OrderID: "o2"}), "broker down")

	require.NoError(t, f.Close())
	assert.True(t, w.closed)
}
