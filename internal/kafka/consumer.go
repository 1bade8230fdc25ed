package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

// Handler processes one event. Returning an error triggers a retry.
type Handler func(ctx context.Context, event models.NotificationEvent) error

type Consumer struct {
	reader  *kafka.Reader
	log     *logger.Logger
	retries int
	backoff time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit by hand after handling
	})
	return &Consumer{reader: reader, log: log, retries: 3, backoff: time.Second}
}

// Start consumes until ctx is cancelled. A message is committed once handled,
// or once it has failed every retry, so one bad message cannot stall the
// partition.
func (c *Consumer) Start(ctx context.Context, handle Handler) error {
	c.log.LogKafka("CONSUMER", c.reader.Config().Topic, "Kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var event models.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("Dropping malformed message at offset %d: %v", msg.Offset, err))
		} else {
			c.handleWithRetry(ctx, handle, event)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Error("KAFKA", fmt.Sprintf("Failed to commit offset %d: %v", msg.Offset, err))
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handle Handler, event models.NotificationEvent) {
	for attempt := 1; attempt <= c.retries; attempt++ {
		err := handle(ctx, event)
		if err == nil {
			return
		}
		c.log.Warn("KAFKA", fmt.Sprintf("Handling %s for order %s failed (attempt %d/%d): %v",
			event.Type, event.OrderNumber, attempt, c.retries, err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	c.log.Error("KAFKA", fmt.Sprintf("Giving up on %s %s for order %s", event.Type, event.ID, event.OrderNumber))
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
