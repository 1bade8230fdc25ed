package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
)

// Publisher delivers an event somewhere durable: Kafka in production, or the
// mail sender directly when Kafka is disabled.
type Publisher interface {
	PublishNotification(ctx context.Context, event models.NotificationEvent) error
}

// Dispatcher is the outbound queue between committed state changes and the
// publisher. Dispatch never blocks the request path; when the queue is full
// the event is dropped and logged.
type Dispatcher struct {
	pub     Publisher
	queue   chan models.NotificationEvent
	log     *logger.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(pub Publisher, size int, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		pub:     pub,
		queue:   make(chan models.NotificationEvent, size),
		log:     log,
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
}

// Start drains the queue in one goroutine until Close.
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for event := range d.queue {
			d.publish(event)
		}
	}()
}

func (d *Dispatcher) Dispatch(event models.NotificationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("NOTIFY", fmt.Sprintf("Dispatcher closed, dropping %s for order %s", event.Type, event.OrderNumber))
		return
	}
	select {
	case d.queue <- event:
	default:
		d.log.Warn("NOTIFY", fmt.Sprintf("Queue full, dropping %s for order %s", event.Type, event.OrderNumber))
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to
// end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

func (d *Dispatcher) publish(event models.NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.pub.PublishNotification(ctx, event); err != nil {
		d.log.Error("NOTIFY", fmt.Sprintf("Failed to publish %s for order %s: %v", event.Type, event.OrderNumber, err))
	}
}
