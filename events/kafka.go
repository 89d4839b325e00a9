package events

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaForwarder copies order events onto a Kafka topic, keyed by order id.
type KafkaForwarder struct {
	writer messageWriter
}

func NewKafkaForwarder(brokers []string, topic string) *KafkaForwarder {
	return &KafkaForwarder{writer: &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

// Forward is a Handler; subscribe it to a Bus.
func (f *KafkaForwarder) Forward(ctx context.Context, ev OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = f.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(ev.OrderID),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write order event to kafka: %w", err)
	}
	return nil
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
