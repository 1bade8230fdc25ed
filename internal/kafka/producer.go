package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer writes to topic, keyed by order id so the events of one order
// stay on one partition and in order.
func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{Writer: writer, log: log}
}

// PublishNotification streams one notification event to Kafka.
func (p *Producer) PublishNotification(ctx context.Context, event models.NotificationEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: msgBytes,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s for order %s: %w", event.Type, event.OrderNumber, err)
	}

	p.log.LogKafka("PUBLISHED", p.Writer.Topic, fmt.Sprintf("%s to %s for order %s", event.Type, event.Recipient, event.OrderNumber))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
