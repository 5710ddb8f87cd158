package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/segmentio/kafka-go"
)

// TrackingPublisher streams tracking.updated events.
type TrackingPublisher interface {
	PublishTrackingUpdated(ctx context.Context, event models.TrackingUpdatedEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTrackingPublisher keys messages by order id so every update for one
// order lands on the same partition.
type KafkaTrackingPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaTrackingPublisher(brokers []string, topic string) *KafkaTrackingPublisher {
	return &KafkaTrackingPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (p *KafkaTrackingPublisher) PublishTrackingUpdated(ctx context.Context, event models.TrackingUpdatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s failed: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaTrackingPublisher) Close() error {
	return p.writer.Close()
}
